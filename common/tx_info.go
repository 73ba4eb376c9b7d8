package common

import (
	"encoding/json"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

const (
	TxStatusError    = "error"
	TxStatusNotFound = "notfound"
	TxStatusPending  = "pending"
	TxStatusReverted = "reverted"
	TxStatusDone     = "done"
	TxStatusLost     = "lost"
)

type TxInfo struct {
	Status      string
	Tx          *Transaction
	Receipt     *types.Receipt
	BlockHeader *types.Header
}

func (ti *TxInfo) GasCost() *big.Int {
	if ti.Receipt == nil {
		return big.NewInt(0)
	}
	price := ti.Receipt.EffectiveGasPrice
	if price == nil && ti.Tx != nil {
		price = ti.Tx.GasPrice()
	}
	if price == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Mul(new(big.Int).SetUint64(ti.Receipt.GasUsed), price)
}

// Transaction is a transaction as returned by eth_getTransactionByHash,
// including the block it was mined in.
type Transaction struct {
	*types.Transaction
	Extra TxExtraInfo `json:"extra"`
}

type TxExtraInfo struct {
	BlockNumber *string         `json:"blockNumber,omitempty"`
	BlockHash   *common.Hash    `json:"blockHash,omitempty"`
	From        *common.Address `json:"from,omitempty"`
}

func (tx *Transaction) UnmarshalJSON(msg []byte) error {
	if err := json.Unmarshal(msg, &tx.Transaction); err != nil {
		return err
	}
	return json.Unmarshal(msg, &tx.Extra)
}
