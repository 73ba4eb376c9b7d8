package reader

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tranvictor/nftstake/common"
)

var DEFAULT_ADDRESS string = "0x0000000000000000000000000000000000000000"

// Reader is what the rest of the module needs from the chain. EthReader
// is the production implementation, tests provide fakes.
type Reader interface {
	EstimateExactGas(from, to string, priceGwei float64, value *big.Int, data []byte) (uint64, error)
	GetBalance(address string) (*big.Int, error)
	GetPendingNonce(address string) (uint64, error)
	TxInfoFromHash(tx string) (common.TxInfo, error)
	HeaderByNumber(number int64) (*types.Header, error)
	SuggestedGasSettings() (maxGasPriceGwei, maxTipGwei float64, err error)
	CheckDynamicFeeTxAvailable() (bool, error)
	ReadContractWithABI(result interface{}, caddr string, abi *abi.ABI, method string, args ...interface{}) error
	ReadContractToValues(caddr string, abi *abi.ABI, method string, args ...interface{}) ([]interface{}, error)
	ERC20Balance(caddr string, user string) (*big.Int, error)
	ERC20Decimal(caddr string) (uint64, error)
	ERC20Symbol(caddr string) (string, error)
}

var _ Reader = (*EthReader)(nil)

type EthReader struct {
	nodes map[string]EthereumNode
}

func NewEthReaderGeneric(nodes map[string]string) *EthReader {
	ns := make([]EthereumNode, 0, len(nodes))
	for name, c := range nodes {
		ns = append(ns, NewOneNodeReader(name, c))
	}
	return NewEthReaderWithNodes(ns...)
}

func NewEthReaderWithNodes(nodes ...EthereumNode) *EthReader {
	ns := map[string]EthereumNode{}
	for _, n := range nodes {
		ns[n.NodeName()] = n
	}
	return &EthReader{nodes: ns}
}

func wrapError(e error, name string) error {
	if e == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", name, e)
}

type nodeResult[T any] struct {
	value T
	err   error
}

// firstOf queries every node concurrently and returns the first
// successful answer. When all nodes fail their errors are joined.
func firstOf[T any](er *EthReader, call func(n EthereumNode) (T, error)) (T, error) {
	var zero T
	if len(er.nodes) == 0 {
		return zero, fmt.Errorf("no nodes configured")
	}
	resCh := make(chan nodeResult[T], len(er.nodes))
	for i := range er.nodes {
		n := er.nodes[i]
		go func() {
			v, err := call(n)
			resCh <- nodeResult[T]{value: v, err: wrapError(err, n.NodeName())}
		}()
	}
	errs := []error{}
	for i := 0; i < len(er.nodes); i++ {
		result := <-resCh
		if result.err == nil {
			return result.value, nil
		}
		errs = append(errs, result.err)
	}
	return zero, fmt.Errorf("couldn't read from any nodes: %w", errors.Join(errs...))
}

func (er *EthReader) EstimateExactGas(from, to string, priceGwei float64, value *big.Int, data []byte) (uint64, error) {
	return firstOf(er, func(n EthereumNode) (uint64, error) {
		return n.EstimateGas(from, to, priceGwei, value, data)
	})
}

func (er *EthReader) GetBalance(address string) (*big.Int, error) {
	return firstOf(er, func(n EthereumNode) (*big.Int, error) {
		return n.GetBalance(address)
	})
}

func (er *EthReader) GetPendingNonce(address string) (uint64, error) {
	return firstOf(er, func(n EthereumNode) (uint64, error) {
		return n.GetPendingNonce(address)
	})
}

func (er *EthReader) TransactionReceipt(txHash string) (*types.Receipt, error) {
	return firstOf(er, func(n EthereumNode) (*types.Receipt, error) {
		return n.TransactionReceipt(txHash)
	})
}

type txByHash struct {
	tx        *common.Transaction
	isPending bool
}

func (er *EthReader) TransactionByHash(txHash string) (*common.Transaction, bool, error) {
	res, err := firstOf(er, func(n EthereumNode) (txByHash, error) {
		tx, isPending, err := n.TransactionByHash(txHash)
		return txByHash{tx, isPending}, err
	})
	return res.tx, res.isPending, err
}

func (er *EthReader) HeaderByNumber(number int64) (*types.Header, error) {
	return firstOf(er, func(n EthereumNode) (*types.Header, error) {
		return n.HeaderByNumber(number)
	})
}

// TxInfoFromHash classifies tx as notfound, pending, reverted or done.
// An error is only returned together with the "error" status.
func (er *EthReader) TxInfoFromHash(tx string) (common.TxInfo, error) {
	txObj, isPending, err := er.TransactionByHash(tx)
	if errors.Is(err, ethereum.NotFound) {
		return common.TxInfo{Status: common.TxStatusNotFound}, nil
	}
	if err != nil {
		return common.TxInfo{Status: common.TxStatusError}, err
	}
	if txObj == nil {
		return common.TxInfo{Status: common.TxStatusNotFound}, nil
	}
	if isPending {
		return common.TxInfo{Status: common.TxStatusPending, Tx: txObj}, nil
	}
	receipt, err := er.TransactionReceipt(tx)
	if receipt == nil {
		return common.TxInfo{Status: common.TxStatusPending, Tx: txObj}, err
	}
	// pre-byzantium receipts carry a state root instead of a status
	if len(receipt.PostState) == len(gethcommon.Hash{}) || receipt.Status == types.ReceiptStatusSuccessful {
		return common.TxInfo{Status: common.TxStatusDone, Tx: txObj, Receipt: receipt}, nil
	}
	return common.TxInfo{Status: common.TxStatusReverted, Tx: txObj, Receipt: receipt}, nil
}

// CheckDynamicFeeTxAvailable reports whether the latest block carries a
// non zero base fee.
func (er *EthReader) CheckDynamicFeeTxAvailable() (bool, error) {
	header, err := er.HeaderByNumber(-1)
	if err != nil {
		return false, err
	}
	return header.BaseFee != nil && header.BaseFee.Sign() > 0, nil
}

// add 20% tip to miners compared to what returned from the node
func (er *EthReader) GetSuggestedGasTipCap() (float64, error) {
	tip, err := firstOf(er, func(n EthereumNode) (*big.Int, error) {
		return n.SuggestedGasTipCap()
	})
	if err != nil {
		return 0, err
	}
	return common.BigToFloat(tip, 9) * 1.2, nil
}

// add 50% to max gas price because the base fee of the next blocks can
// increase
func (er *EthReader) RecommendedGasPrice() (float64, error) {
	price, err := firstOf(er, func(n EthereumNode) (*big.Int, error) {
		return n.SuggestedGasPrice()
	})
	if err != nil {
		return 0, err
	}
	return common.BigToFloat(price, 9) * 1.5, nil
}

func (er *EthReader) SuggestedGasSettings() (maxGasPriceGwei, maxTipGwei float64, err error) {
	isDynamicFeeAvailable, err := er.CheckDynamicFeeTxAvailable()
	if err != nil {
		return 0, 0, err
	}
	maxGasPriceGwei, err = er.RecommendedGasPrice()
	if err != nil {
		return 0, 0, err
	}
	if isDynamicFeeAvailable {
		maxTipGwei, err = er.GetSuggestedGasTipCap()
		if err != nil {
			return 0, 0, err
		}
	}
	return maxGasPriceGwei, maxTipGwei, nil
}

func (er *EthReader) ReadContractToBytes(
	atBlock int64,
	from string,
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) ([]byte, error) {
	return firstOf(er, func(n EthereumNode) ([]byte, error) {
		return n.ReadContractToBytes(atBlock, from, caddr, abi, method, args...)
	})
}

func (er *EthReader) ReadContractWithABI(
	result interface{},
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) error {
	responseBytes, err := er.ReadContractToBytes(-1, DEFAULT_ADDRESS, caddr, abi, method, args...)
	if err != nil {
		return err
	}
	return abi.UnpackIntoInterface(result, method, responseBytes)
}

// ReadContractToValues returns the unpacked outputs of method as a
// sequence, leaving shape checks to the caller.
func (er *EthReader) ReadContractToValues(
	caddr string,
	abi *abi.ABI,
	method string,
	args ...interface{},
) ([]interface{}, error) {
	responseBytes, err := er.ReadContractToBytes(-1, DEFAULT_ADDRESS, caddr, abi, method, args...)
	if err != nil {
		return nil, err
	}
	return abi.Unpack(method, responseBytes)
}

func (er *EthReader) ERC20Symbol(caddr string) (string, error) {
	var result string
	err := er.ReadContractWithABI(&result, caddr, common.GetERC20ABI(), "symbol")
	return result, err
}

func (er *EthReader) ERC20Balance(caddr string, user string) (*big.Int, error) {
	result := big.NewInt(0)
	err := er.ReadContractWithABI(&result, caddr, common.GetERC20ABI(), "balanceOf", common.HexToAddress(user))
	return result, err
}

func (er *EthReader) ERC20Decimal(caddr string) (uint64, error) {
	var result uint8
	err := er.ReadContractWithABI(&result, caddr, common.GetERC20ABI(), "decimals")
	return uint64(result), err
}
