package common

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// RawTxToHash returns valid hex data of a transaction to
// transaction hash
func RawTxToHash(data string) string {
	return crypto.Keccak256Hash(hexutil.MustDecode(data)).Hex()
}

// BuildExactTx builds an unsigned contract call. For dynamic fee txs
// priceGwei is the fee cap and tipGwei the tip cap, legacy txs ignore
// tipGwei.
func BuildExactTx(
	txType uint8,
	nonce uint64,
	to string,
	value *big.Int,
	gasLimit uint64,
	priceGwei float64,
	tipGwei float64,
	data []byte,
	chainID uint64,
) *types.Transaction {
	toAddress := common.HexToAddress(to)
	if value == nil {
		value = big.NewInt(0)
	}
	if txType == types.DynamicFeeTxType {
		return types.NewTx(&types.DynamicFeeTx{
			ChainID:   new(big.Int).SetUint64(chainID),
			Nonce:     nonce,
			GasTipCap: GweiToWei(tipGwei),
			GasFeeCap: GweiToWei(priceGwei),
			Gas:       gasLimit,
			To:        &toAddress,
			Value:     value,
			Data:      data,
		})
	}
	return types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: GweiToWei(priceGwei),
		Gas:      gasLimit,
		To:       &toAddress,
		Value:    value,
		Data:     data,
	})
}
