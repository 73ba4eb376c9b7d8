package common

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

var (
	erc20ABI   = mustParseABI(erc20abi)
	erc721ABI  = mustParseABI(erc721abi)
	stakingABI = mustParseABI(stakingabi)
)

func mustParseABI(s string) *abi.ABI {
	result, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic(err)
	}
	return &result
}

func GetERC20ABI() *abi.ABI {
	return erc20ABI
}

func GetERC721ABI() *abi.ABI {
	return erc721ABI
}

func GetStakingABI() *abi.ABI {
	return stakingABI
}

func HexToAddress(hex string) common.Address {
	return common.HexToAddress(hex)
}

func IsHexAddress(s string) bool {
	return common.IsHexAddress(s)
}

// ChecksumAddress returns the EIP-55 form of hex, or an error when hex is
// not a 20 byte address.
func ChecksumAddress(hex string) (string, error) {
	hex = strings.TrimSpace(hex)
	if !common.IsHexAddress(hex) {
		return "", fmt.Errorf("'%s' is not a valid address", hex)
	}
	return common.HexToAddress(hex).Hex(), nil
}
