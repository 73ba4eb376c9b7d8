package reader_test

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/util/reader"
)

// fakeNode answers contract reads with pre-packed outputs and fails every
// other call unless configured.
type fakeNode struct {
	name    string
	err     error
	outputs map[string][]byte
	header  *types.Header
	tx      *common.Transaction
	pending bool
	receipt *types.Receipt
}

func (f *fakeNode) NodeName() string { return f.name }
func (f *fakeNode) NodeURL() string  { return "http://" + f.name }

func (f *fakeNode) EstimateGas(string, string, float64, *big.Int, []byte) (uint64, error) {
	return 21000, f.err
}

func (f *fakeNode) GetBalance(string) (*big.Int, error) {
	if f.err != nil {
		return nil, f.err
	}
	return big.NewInt(7), nil
}

func (f *fakeNode) GetPendingNonce(string) (uint64, error) { return 3, f.err }

func (f *fakeNode) TransactionReceipt(string) (*types.Receipt, error) {
	if f.receipt == nil {
		return nil, ethereum.NotFound
	}
	return f.receipt, nil
}

func (f *fakeNode) TransactionByHash(string) (*common.Transaction, bool, error) {
	if f.tx == nil {
		return nil, false, ethereum.NotFound
	}
	return f.tx, f.pending, nil
}

func (f *fakeNode) SuggestedGasPrice() (*big.Int, error)  { return common.GweiToWei(20), f.err }
func (f *fakeNode) SuggestedGasTipCap() (*big.Int, error) { return common.GweiToWei(1), f.err }

func (f *fakeNode) ReadContractToBytes(_ int64, _ string, _ string, _ *abi.ABI, method string, _ ...interface{}) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	out, ok := f.outputs[method]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return out, nil
}

func (f *fakeNode) HeaderByNumber(int64) (*types.Header, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.header, nil
}

func pack(t *testing.T, a *abi.ABI, method string, values ...interface{}) []byte {
	t.Helper()
	out, err := a.Methods[method].Outputs.Pack(values...)
	require.NoError(t, err)
	return out
}

func TestFirstSuccessfulNodeWins(t *testing.T) {
	r := reader.NewEthReaderWithNodes(
		&fakeNode{name: "down", err: errors.New("connection refused")},
		&fakeNode{name: "up"},
	)
	balance, err := r.GetBalance("0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, int64(7), balance.Int64())
}

func TestAllNodesFailJoinsErrors(t *testing.T) {
	r := reader.NewEthReaderWithNodes(
		&fakeNode{name: "a", err: errors.New("boom-a")},
		&fakeNode{name: "b", err: errors.New("boom-b")},
	)
	_, err := r.GetPendingNonce("0x0000000000000000000000000000000000000001")
	require.Error(t, err)
	assert.ErrorContains(t, err, "couldn't read from any nodes")
	assert.ErrorContains(t, err, "a: boom-a")
	assert.ErrorContains(t, err, "b: boom-b")
}

func TestNoNodes(t *testing.T) {
	_, err := reader.NewEthReaderWithNodes().GetBalance("0x0000000000000000000000000000000000000001")
	assert.Error(t, err)
}

func TestReadContractToValues(t *testing.T) {
	erc721 := common.GetERC721ABI()
	r := reader.NewEthReaderWithNodes(&fakeNode{
		name:    "n",
		outputs: map[string][]byte{"tokenURI": pack(t, erc721, "tokenURI", "ipfs://cid/1.json")},
	})
	values, err := r.ReadContractToValues("0x0A337Be2EA71E3aeA9C82D45b036aC6a6123B6D0", erc721, "tokenURI", big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"ipfs://cid/1.json"}, values)
}

func TestERC20Reads(t *testing.T) {
	erc20 := common.GetERC20ABI()
	r := reader.NewEthReaderWithNodes(&fakeNode{
		name: "n",
		outputs: map[string][]byte{
			"balanceOf": pack(t, erc20, "balanceOf", big.NewInt(1234)),
			"decimals":  pack(t, erc20, "decimals", uint8(18)),
			"symbol":    pack(t, erc20, "symbol", "AURA"),
		},
	})
	token := "0xa346D51362E2cF7c09cf38Ccf5E2b208B071e71b"

	balance, err := r.ERC20Balance(token, "0x0000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Equal(t, int64(1234), balance.Int64())

	decimals, err := r.ERC20Decimal(token)
	require.NoError(t, err)
	assert.Equal(t, uint64(18), decimals)

	symbol, err := r.ERC20Symbol(token)
	require.NoError(t, err)
	assert.Equal(t, "AURA", symbol)
}

func TestCheckDynamicFeeTxAvailable(t *testing.T) {
	r := reader.NewEthReaderWithNodes(&fakeNode{name: "n", header: &types.Header{BaseFee: big.NewInt(25)}})
	ok, err := r.CheckDynamicFeeTxAvailable()
	require.NoError(t, err)
	assert.True(t, ok)

	r = reader.NewEthReaderWithNodes(&fakeNode{name: "n", header: &types.Header{}})
	ok, err = r.CheckDynamicFeeTxAvailable()
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSuggestedGasSettings(t *testing.T) {
	r := reader.NewEthReaderWithNodes(&fakeNode{name: "n", header: &types.Header{BaseFee: big.NewInt(25)}})
	price, tip, err := r.SuggestedGasSettings()
	require.NoError(t, err)
	assert.InDelta(t, 30, price, 1e-9)
	assert.InDelta(t, 1.2, tip, 1e-9)
}

func TestTxInfoFromHash(t *testing.T) {
	hash := "0x" + gethcommon.Bytes2Hex(make([]byte, 32))
	blockNumber := "0x10"
	mined := &common.Transaction{
		Transaction: types.NewTx(&types.LegacyTx{}),
		Extra:       common.TxExtraInfo{BlockNumber: &blockNumber},
	}

	r := reader.NewEthReaderWithNodes(&fakeNode{name: "n"})
	info, err := r.TxInfoFromHash(hash)
	require.NoError(t, err)
	assert.Equal(t, common.TxStatusNotFound, info.Status)

	r = reader.NewEthReaderWithNodes(&fakeNode{name: "n", tx: mined, pending: true})
	info, err = r.TxInfoFromHash(hash)
	require.NoError(t, err)
	assert.Equal(t, common.TxStatusPending, info.Status)

	r = reader.NewEthReaderWithNodes(&fakeNode{name: "n", tx: mined, receipt: &types.Receipt{Status: types.ReceiptStatusSuccessful}})
	info, err = r.TxInfoFromHash(hash)
	require.NoError(t, err)
	assert.Equal(t, common.TxStatusDone, info.Status)

	r = reader.NewEthReaderWithNodes(&fakeNode{name: "n", tx: mined, receipt: &types.Receipt{Status: types.ReceiptStatusFailed}})
	info, err = r.TxInfoFromHash(hash)
	require.NoError(t, err)
	assert.Equal(t, common.TxStatusReverted, info.Status)
}
