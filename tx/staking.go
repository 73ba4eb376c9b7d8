package tx

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"go.uber.org/zap"

	"github.com/tranvictor/nftstake/contracts"
)

const (
	LabelApprove  = "approve"
	LabelStake    = "stake"
	LabelWithdraw = "withdraw"
	LabelClaim    = "claim"
)

var (
	ErrNothingToClaim = errors.New("no rewards to claim")
	ErrNoTokens       = errors.New("no token ids given")
	ErrNotStaked      = errors.New("token is not staked by this wallet")
)

// StakingActions are the three write flows of the dApp.
type StakingActions struct {
	sender     *Sender
	collection contracts.Collection
	staking    contracts.Staking
	logger     *zap.Logger
}

func NewStakingActions(sender *Sender, collection contracts.Collection, staking contracts.Staking, logger *zap.Logger) *StakingActions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StakingActions{
		sender:     sender,
		collection: collection,
		staking:    staking,
		logger:     logger,
	}
}

// Stake approves the staking contract as operator of the sender's tokens
// when it isn't yet, then stakes ids. The approval is always waited for,
// since the stake tx reverts until it is mined. A dry run that needs the
// approval only signs the approval.
func (a *StakingActions) Stake(ctx context.Context, ids []*big.Int) ([]Result, error) {
	if len(ids) == 0 {
		return nil, ErrNoTokens
	}
	results := []Result{}

	approved, err := a.collection.IsApprovedForAll(a.sender.From(), a.staking.Address())
	if err != nil {
		return nil, fmt.Errorf("couldn't check approval: %w", err)
	}
	if !approved {
		a.logger.Info("staking contract not approved yet", zap.String("owner", a.sender.From()))
		data, err := a.collection.SetApprovalForAllData(a.staking.Address(), true)
		if err != nil {
			return nil, err
		}
		result, err := a.sender.SendAndWait(ctx, LabelApprove, a.collection.Address(), data)
		results = append(results, result)
		if err != nil {
			return results, err
		}
	}

	data, err := a.staking.StakeData(ids)
	if err != nil {
		return results, err
	}
	if !approved && a.sender.DryRun() {
		// stake can't be estimated until the approval is on chain
		a.logger.Info("dry run stops after approval")
		return results, nil
	}
	result, err := a.sender.Send(ctx, LabelStake, a.staking.Address(), data)
	results = append(results, result)
	return results, err
}

// Withdraw unstakes ids. Every id must currently be staked by the sender.
func (a *StakingActions) Withdraw(ctx context.Context, ids []*big.Int) (Result, error) {
	if len(ids) == 0 {
		return Result{Label: LabelWithdraw}, ErrNoTokens
	}
	info, err := a.staking.GetStakeInfo(a.sender.From())
	if err != nil {
		return Result{Label: LabelWithdraw}, err
	}
	staked := map[string]bool{}
	for _, id := range info.Staked {
		staked[id.String()] = true
	}
	for _, id := range ids {
		if !staked[id.String()] {
			return Result{Label: LabelWithdraw}, fmt.Errorf("%w: %s", ErrNotStaked, id)
		}
	}
	data, err := a.staking.WithdrawData(ids)
	if err != nil {
		return Result{Label: LabelWithdraw}, err
	}
	return a.sender.Send(ctx, LabelWithdraw, a.staking.Address(), data)
}

// Claim collects the sender's rewards. It refuses when nothing accrued.
func (a *StakingActions) Claim(ctx context.Context) (Result, error) {
	info, err := a.staking.GetStakeInfo(a.sender.From())
	if err != nil {
		return Result{Label: LabelClaim}, err
	}
	if info.Rewards == nil || info.Rewards.Sign() <= 0 {
		return Result{Label: LabelClaim}, ErrNothingToClaim
	}
	data, err := a.staking.ClaimRewardsData()
	if err != nil {
		return Result{Label: LabelClaim}, err
	}
	return a.sender.Send(ctx, LabelClaim, a.staking.Address(), data)
}
