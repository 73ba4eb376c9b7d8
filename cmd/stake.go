package cmd

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/config"
	"github.com/tranvictor/nftstake/tx"
	"github.com/tranvictor/nftstake/ui"
	"github.com/tranvictor/nftstake/util"
)

type stakingFlow func(cmd *cobra.Command, actions StakingActions, ids []*big.Int) ([]tx.Result, error)

// runStakingFlow unlocks the wallet, runs flow and reports every tx it
// signed, including when the flow fails halfway.
func runStakingFlow(u ui.UI, cmd *cobra.Command, args []string, flow stakingFlow) error {
	app, err := AppContextFrom(cmd)
	if err != nil {
		return err
	}
	ids, err := common.ParseTokenIDs(args)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		u.Interpret(describeIDs(ids))
	}
	acc, err := loadAccount(u, config.From)
	if err != nil {
		return err
	}
	u.Info("Wallet: %s", acc.AddressHex())
	actions, err := newStakingActions(app, acc)
	if err != nil {
		return err
	}

	results, err := flow(cmd, actions, ids)
	signed := []tx.Result{}
	for _, r := range results {
		if r.Hash != "" {
			signed = append(signed, r)
		}
	}
	if len(signed) > 0 {
		if config.JSONOutput {
			if jerr := writeJSON(u, util.TxResultDisplays(signed, app.Network)); jerr != nil {
				return jerr
			}
		} else {
			util.DisplayTxResults(u, signed, app.Network)
		}
	}
	if errors.Is(err, tx.ErrAborted) {
		u.Warn("Aborted.")
		return nil
	}
	return err
}

// describeIDs reads like "2 tokens: 12, 40".
func describeIDs(ids []*big.Int) string {
	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = id.String()
	}
	noun := "tokens"
	if len(ids) == 1 {
		noun = "token"
	}
	return fmt.Sprintf("%d %s: %s", len(ids), noun, strings.Join(strs, ", "))
}

func single(r tx.Result, err error) ([]tx.Result, error) {
	return []tx.Result{r}, err
}

func newStakeCmd(u ui.UI) *cobra.Command {
	c := &cobra.Command{
		Use:   "stake <token-id>...",
		Short: "Stake tokens, approving the staking contract first when needed",
		Long: `Stakes the given token ids. When the staking contract is not yet an
approved operator of the wallet's tokens, a setApprovalForAll tx is sent and
waited for before the stake tx.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStakingFlow(u, cmd, args, func(cmd *cobra.Command, a StakingActions, ids []*big.Int) ([]tx.Result, error) {
				return a.Stake(cmd.Context(), ids)
			})
		},
	}
	AddCommonFlagsToTransactionalCmds(c)
	return c
}

func newWithdrawCmd(u ui.UI) *cobra.Command {
	c := &cobra.Command{
		Use:     "withdraw <token-id>...",
		Aliases: []string{"unstake"},
		Short:   "Withdraw staked tokens back to the wallet",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStakingFlow(u, cmd, args, func(cmd *cobra.Command, a StakingActions, ids []*big.Int) ([]tx.Result, error) {
				return single(a.Withdraw(cmd.Context(), ids))
			})
		},
	}
	AddCommonFlagsToTransactionalCmds(c)
	return c
}

func newClaimCmd(u ui.UI) *cobra.Command {
	c := &cobra.Command{
		Use:   "claim",
		Short: "Claim the accrued staking rewards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStakingFlow(u, cmd, args, func(cmd *cobra.Command, a StakingActions, _ []*big.Int) ([]tx.Result, error) {
				return single(a.Claim(cmd.Context()))
			})
		},
	}
	AddCommonFlagsToTransactionalCmds(c)
	return c
}
