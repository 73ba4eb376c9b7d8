package contracts

import (
	"math/big"
)

type ERC20 struct {
	address string
	reader  ContractReader
}

func NewERC20(address string, r ContractReader) *ERC20 {
	return &ERC20{address: address, reader: r}
}

func (t *ERC20) Address() string {
	return t.address
}

func (t *ERC20) Balance(owner string) (*big.Int, error) {
	return t.reader.ERC20Balance(t.address, owner)
}

func (t *ERC20) Decimals() (uint64, error) {
	return t.reader.ERC20Decimal(t.address)
}

func (t *ERC20) Symbol() (string, error) {
	return t.reader.ERC20Symbol(t.address)
}
