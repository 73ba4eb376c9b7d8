// Package contracts wraps the three contracts the staking dApp talks to:
// the ERC721 collection, the ERC721 staking contract and the ERC20 reward
// token. Reads go through a ContractReader, writes are returned as
// calldata for the tx package to sign and send.
package contracts

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// ContractReader is satisfied by *reader.EthReader.
type ContractReader interface {
	ReadContractWithABI(result interface{}, caddr string, abi *abi.ABI, method string, args ...interface{}) error
	ReadContractToValues(caddr string, abi *abi.ABI, method string, args ...interface{}) ([]interface{}, error)
	ERC20Balance(caddr string, user string) (*big.Int, error)
	ERC20Decimal(caddr string) (uint64, error)
	ERC20Symbol(caddr string) (string, error)
}

type Collection interface {
	Address() string
	TokenURI(id *big.Int) (string, error)
	IsApprovedForAll(owner, operator string) (bool, error)
	SetApprovalForAllData(operator string, approved bool) ([]byte, error)
}

type Staking interface {
	Address() string
	GetStakeInfo(staker string) (StakeInfo, error)
	RewardToken() (string, error)
	RewardsPerUnitTime() (*big.Int, error)
	TimeUnit() (*big.Int, error)
	StakeData(ids []*big.Int) ([]byte, error)
	WithdrawData(ids []*big.Int) ([]byte, error)
	ClaimRewardsData() ([]byte, error)
}

type RewardToken interface {
	Address() string
	Balance(owner string) (*big.Int, error)
	Decimals() (uint64, error)
	Symbol() (string, error)
}

// StakeInfo is the getStakeInfo tuple: the ids staked by an address and
// its unclaimed rewards.
type StakeInfo struct {
	Staked  []*big.Int
	Rewards *big.Int
}
