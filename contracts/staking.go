package contracts

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/nftstake/common"
)

// StakingContract talks to a thirdweb style ERC721 staking contract.
type StakingContract struct {
	address string
	reader  ContractReader
	abi     *abi.ABI
}

func NewStakingContract(address string, r ContractReader) *StakingContract {
	return &StakingContract{
		address: address,
		reader:  r,
		abi:     common.GetStakingABI(),
	}
}

func (s *StakingContract) Address() string {
	return s.address
}

func (s *StakingContract) GetStakeInfo(staker string) (StakeInfo, error) {
	values, err := s.reader.ReadContractToValues(s.address, s.abi, "getStakeInfo", common.HexToAddress(staker))
	if err != nil {
		return StakeInfo{}, fmt.Errorf("couldn't read getStakeInfo(%s): %w", staker, err)
	}
	if len(values) != 2 {
		return StakeInfo{}, fmt.Errorf("getStakeInfo returned %d values, expected 2", len(values))
	}
	staked, ok := values[0].([]*big.Int)
	if !ok {
		return StakeInfo{}, fmt.Errorf("getStakeInfo returned %T for staked tokens", values[0])
	}
	rewards, ok := values[1].(*big.Int)
	if !ok {
		return StakeInfo{}, fmt.Errorf("getStakeInfo returned %T for rewards", values[1])
	}
	return StakeInfo{Staked: staked, Rewards: rewards}, nil
}

func (s *StakingContract) RewardToken() (string, error) {
	var result gethcommon.Address
	if err := s.reader.ReadContractWithABI(&result, s.address, s.abi, "rewardToken"); err != nil {
		return "", fmt.Errorf("couldn't read rewardToken: %w", err)
	}
	return result.Hex(), nil
}

func (s *StakingContract) readUint(method string) (*big.Int, error) {
	result := big.NewInt(0)
	if err := s.reader.ReadContractWithABI(&result, s.address, s.abi, method); err != nil {
		return nil, fmt.Errorf("couldn't read %s: %w", method, err)
	}
	return result, nil
}

// RewardsPerUnitTime is the reward paid per staked token per TimeUnit.
func (s *StakingContract) RewardsPerUnitTime() (*big.Int, error) {
	return s.readUint("getRewardsPerUnitTime")
}

// TimeUnit is the reward period in seconds.
func (s *StakingContract) TimeUnit() (*big.Int, error) {
	return s.readUint("getTimeUnit")
}

func (s *StakingContract) StakeData(ids []*big.Int) ([]byte, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no token ids to stake")
	}
	return s.abi.Pack("stake", ids)
}

func (s *StakingContract) WithdrawData(ids []*big.Int) ([]byte, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("no token ids to withdraw")
	}
	return s.abi.Pack("withdraw", ids)
}

func (s *StakingContract) ClaimRewardsData() ([]byte, error) {
	return s.abi.Pack("claimRewards")
}
