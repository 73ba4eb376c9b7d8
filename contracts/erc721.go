package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/metadata"
)

type ERC721 struct {
	address string
	reader  ContractReader
	abi     *abi.ABI
}

func NewERC721(address string, r ContractReader) *ERC721 {
	return &ERC721{
		address: address,
		reader:  r,
		abi:     common.GetERC721ABI(),
	}
}

func (c *ERC721) Address() string {
	return c.address
}

// TokenURI reads tokenURI(id). A result that isn't a single string fails
// with metadata.ErrMalformedURIShape.
func (c *ERC721) TokenURI(id *big.Int) (string, error) {
	values, err := c.reader.ReadContractToValues(c.address, c.abi, "tokenURI", id)
	if err != nil {
		return "", fmt.Errorf("couldn't read tokenURI(%s): %w", id, err)
	}
	return metadata.TokenURIFromResult(values)
}

func (c *ERC721) IsApprovedForAll(owner, operator string) (bool, error) {
	var approved bool
	err := c.reader.ReadContractWithABI(
		&approved, c.address, c.abi,
		"isApprovedForAll",
		common.HexToAddress(owner),
		common.HexToAddress(operator),
	)
	if err != nil {
		return false, fmt.Errorf("couldn't read isApprovedForAll: %w", err)
	}
	return approved, nil
}

func (c *ERC721) SetApprovalForAllData(operator string, approved bool) ([]byte, error) {
	return c.abi.Pack("setApprovalForAll", common.HexToAddress(operator), approved)
}
