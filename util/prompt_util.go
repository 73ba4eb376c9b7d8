package util

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/networks"
	"github.com/tranvictor/nftstake/tx"
	"github.com/tranvictor/nftstake/ui"
)

func txFeeRows(t *types.Transaction) [][2]string {
	if t.Type() == types.LegacyTxType {
		return [][2]string{
			{"Gas price", fmt.Sprintf("%s gwei", common.BigToFloatString(t.GasPrice(), 9))},
		}
	}
	return [][2]string{
		{"Max fee", fmt.Sprintf("%s gwei", common.BigToFloatString(t.GasFeeCap(), 9))},
		{"Max tip", fmt.Sprintf("%s gwei", common.BigToFloatString(t.GasTipCap(), 9))},
	}
}

// showTxInfoToConfirm writes everything the user signs off on for t.
func showTxInfoToConfirm(u ui.UI, label string, from string, t *types.Transaction, network networks.Network) {
	to := "contract creation"
	if t.To() != nil {
		to = t.To().Hex()
	}
	u.Section(fmt.Sprintf("Confirm %s before signing", label))
	rows := [][2]string{
		{"Network", fmt.Sprintf("%s (%d)", network.GetName(), network.GetChainID())},
		{"From", from},
		{"To", to},
		{"Value", fmt.Sprintf("%s %s",
			common.BigToFloatString(t.Value(), network.GetNativeTokenDecimal()),
			network.GetNativeTokenSymbol(),
		)},
		{"Nonce", fmt.Sprintf("%d", t.Nonce())},
		{"Gas limit", fmt.Sprintf("%d", t.Gas())},
	}
	rows = append(rows, txFeeRows(t)...)
	rows = append(rows, [2]string{"Data", fmt.Sprintf("0x%x", t.Data())})
	u.KeyValue(rows)
	u.Critical("Max gas cost: %s %s",
		common.BigToFloatString(t.Cost(), network.GetNativeTokenDecimal()),
		network.GetNativeTokenSymbol(),
	)
}

// PromptTxConfirmation shows t and asks the user to sign it. Declining
// returns an error matching tx.ErrAborted.
func PromptTxConfirmation(u ui.UI, label string, from string, t *types.Transaction, network networks.Network) error {
	showTxInfoToConfirm(u, label, from, t, network)
	if !u.Confirm("Confirm?", true) {
		return fmt.Errorf("%s: %w", label, tx.ErrAborted)
	}
	return nil
}

// TxConfirmer returns the tx.ConfirmFunc the staking commands hand to
// their sender. With skip set every tx is shown but signed without asking.
func TxConfirmer(u ui.UI, from string, network networks.Network, skip bool) tx.ConfirmFunc {
	return func(label string, t *types.Transaction) error {
		if skip {
			showTxInfoToConfirm(u, label, from, t, network)
			return nil
		}
		return PromptTxConfirmation(u, label, from, t, network)
	}
}

// PromptPassword reads a secret from envVar, asking the user when it is
// not set.
func PromptPassword(u ui.UI, prompt string, envVar string) string {
	if envVar != "" {
		if v, ok := os.LookupEnv(envVar); ok {
			return v
		}
	}
	return strings.TrimRight(u.Password(prompt), "\r\n")
}
