package util

import (
	"fmt"
	"time"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/networks"
	"github.com/tranvictor/nftstake/portfolio"
	"github.com/tranvictor/nftstake/tx"
	"github.com/tranvictor/nftstake/ui"
)

const statusSigned = "signed, not broadcasted"

// ── Build phase (pure: no UI side-effects) ──────────────────────────────────

func styledStaked(staked bool) ui.StyledText {
	if staked {
		return ui.StyledText{Text: "yes", Severity: ui.SeveritySuccess}
	}
	return ui.StyledText{Text: "no", Severity: ui.SeverityInfo}
}

func styledStatus(status string) ui.StyledText {
	switch status {
	case common.TxStatusDone:
		return ui.StyledText{Text: status, Severity: ui.SeveritySuccess}
	case common.TxStatusReverted, common.TxStatusLost, common.TxStatusError:
		return ui.StyledText{Text: status, Severity: ui.SeverityError}
	}
	return ui.StyledText{Text: status, Severity: ui.SeverityWarn}
}

func buildCardDisplay(c portfolio.Card) CardDisplay {
	return CardDisplay{
		ID:          c.TokenID.String(),
		Name:        c.Name(),
		Image:       c.Metadata.Image(),
		URI:         c.TokenURI,
		Description: c.Metadata.Description(),
		Staked:      styledStaked(c.Staked),
		Attributes:  c.Metadata.Attributes(),
	}
}

func buildRewardsDisplay(r portfolio.Rewards) RewardsDisplay {
	d := RewardsDisplay{
		Claimable: ui.StyledText{Text: r.ClaimableString(), Severity: ui.SeverityInfo},
		Balance:   r.BalanceString(),
		Symbol:    r.Symbol,
	}
	if r.Claimable != nil && r.Claimable.Sign() > 0 {
		d.Claimable.Severity = ui.SeveritySuccess
	}
	if r.RewardsPerUnitTime != nil && r.TimeUnit != nil && r.TimeUnit.Sign() > 0 {
		d.Rate = fmt.Sprintf("%s %s per %s",
			common.BigToFloatString(r.RewardsPerUnitTime, r.Decimals),
			r.Symbol,
			time.Duration(r.TimeUnit.Int64())*time.Second,
		)
	}
	if r.NativeBalance != nil {
		d.Native = fmt.Sprintf("%s %s", r.NativeBalanceString(), r.NativeSymbol)
	}
	return d
}

func buildTxResultDisplay(r tx.Result, network networks.Network) TxResultDisplay {
	d := TxResultDisplay{Label: r.Label, Hash: r.Hash}
	switch {
	case r.BroadcastErr != nil:
		d.Status = styledStatus(common.TxStatusError)
		d.Error = r.BroadcastErr.Error()
	case !r.Broadcasted:
		d.Status = ui.StyledText{Text: statusSigned, Severity: ui.SeverityWarn}
	case r.Info == nil:
		d.Status = styledStatus(common.TxStatusPending)
		d.URL = TxURL(network, r.Hash)
	default:
		d.Status = styledStatus(r.Info.Status)
		d.URL = TxURL(network, r.Hash)
		if r.Info.Receipt != nil {
			d.GasUsed = fmt.Sprintf("%d", r.Info.Receipt.GasUsed)
			d.GasCost = fmt.Sprintf("%s %s",
				common.BigToFloatString(r.Info.GasCost(), network.GetNativeTokenDecimal()),
				network.GetNativeTokenSymbol(),
			)
		}
	}
	return d
}

// ── Print phase (reads only from the display struct, colours via u.Style) ────

var cardHeaders = []string{"ID", "Name", "Staked", "Image"}

func cardRows(u ui.UI, cards []CardDisplay) [][]string {
	rows := make([][]string, len(cards))
	for i, c := range cards {
		rows[i] = []string{c.ID, c.Name, u.Style(c.Staked), c.Image}
	}
	return rows
}

func printCards(u ui.UI, title string, cards []CardDisplay) {
	u.Section(title)
	if len(cards) == 0 {
		u.Info("No tokens.")
		return
	}
	u.Table(cardHeaders, cardRows(u, cards))
}

// printCardGroups writes owned and staked cards as one table, a divider
// between the two. Empty groups are left out.
func printCardGroups(u ui.UI, owned, staked []CardDisplay) {
	u.Section("Tokens")
	groups := [][][]string{}
	for _, cards := range [][]CardDisplay{owned, staked} {
		if len(cards) > 0 {
			groups = append(groups, cardRows(u, cards))
		}
	}
	if len(groups) == 0 {
		u.Info("No tokens.")
		return
	}
	u.TableWithGroups(cardHeaders, groups)
}

func printCard(u ui.UI, c CardDisplay) {
	u.Section(fmt.Sprintf("Token #%s", c.ID))
	rows := [][2]string{{"Name", c.Name}}
	if c.Description != "" {
		rows = append(rows, [2]string{"Description", c.Description})
	}
	if c.Image != "" {
		rows = append(rows, [2]string{"Image", c.Image})
	}
	rows = append(rows, [2]string{"URI", c.URI})
	u.KeyValue(rows)
	if len(c.Attributes) == 0 {
		return
	}
	attrs := make([][]string, len(c.Attributes))
	for i, a := range c.Attributes {
		attrs[i] = []string{a[0], a[1]}
	}
	u.Table([]string{"Trait", "Value"}, attrs)
}

func printRewards(u ui.UI, d RewardsDisplay) {
	u.Section("Rewards")
	rows := [][2]string{
		{"Claimable", fmt.Sprintf("%s %s", u.Style(d.Claimable), d.Symbol)},
		{"Balance", fmt.Sprintf("%s %s", d.Balance, d.Symbol)},
	}
	if d.Rate != "" {
		rows = append(rows, [2]string{"Rate", d.Rate})
	}
	if d.Native != "" {
		rows = append(rows, [2]string{"Gas balance", d.Native})
	}
	u.KeyValue(rows)
}

func printTxResults(u ui.UI, results []TxResultDisplay) {
	u.Section("Transactions")
	rows := make([][]string, len(results))
	for i, r := range results {
		rows[i] = []string{r.Label, r.Hash, u.Style(r.Status)}
	}
	u.Table([]string{"Action", "Hash", "Status"}, rows)
	for _, r := range results {
		if r.Error != "" {
			u.Error("%s: %s", r.Label, r.Error)
		}
		if r.URL != "" && r.URL != r.Hash {
			u.Info("%s: %s", r.Label, r.URL)
		}
		if r.GasCost != "" {
			u.Indent().Info("gas used %s, cost %s", r.GasUsed, r.GasCost)
		}
	}
}

// ── Public API ───────────────────────────────────────────────────────────────

// DisplayCards writes cards as one table under title and returns their
// view-models, which serialize cleanly to JSON.
func DisplayCards(u ui.UI, title string, cards []portfolio.Card) []CardDisplay {
	result := buildCardDisplays(cards)
	printCards(u, title, result)
	return result
}

func buildCardDisplays(cards []portfolio.Card) []CardDisplay {
	result := make([]CardDisplay, len(cards))
	for i, c := range cards {
		result[i] = buildCardDisplay(c)
	}
	return result
}

// DisplayCard writes the full detail of a single token, attributes included.
func DisplayCard(u ui.UI, card portfolio.Card) CardDisplay {
	d := buildCardDisplay(card)
	printCard(u, d)
	return d
}

func DisplayRewards(u ui.UI, r portfolio.Rewards) RewardsDisplay {
	d := buildRewardsDisplay(r)
	printRewards(u, d)
	return d
}

// DisplayTxResults writes the outcome of every tx a staking command
// signed, in the order they were sent.
func DisplayTxResults(u ui.UI, results []tx.Result, network networks.Network) []TxResultDisplay {
	result := TxResultDisplays(results, network)
	printTxResults(u, result)
	return result
}

// TxResultDisplays builds the view-models of results without printing
// them, for --json output.
func TxResultDisplays(results []tx.Result, network networks.Network) []TxResultDisplay {
	result := make([]TxResultDisplay, len(results))
	for i, r := range results {
		result[i] = buildTxResultDisplay(r, network)
	}
	return result
}

// DisplayDashboard writes everything the dashboard shows for one wallet.
func DisplayDashboard(u ui.UI, snap portfolio.Snapshot, network networks.Network) DashboardDisplay {
	d := DashboardDisplay{
		Owner:   snap.Owner,
		Network: network.GetName(),
	}
	if !snap.UpdatedAt.IsZero() {
		d.UpdatedAt = snap.UpdatedAt.Format(time.RFC3339)
	}
	header := [][2]string{
		{"Wallet", snap.Owner},
		{"Network", network.GetName()},
	}
	if d.UpdatedAt != "" {
		header = append(header, [2]string{"Updated", d.UpdatedAt})
	}
	u.KeyValue(header)

	d.Owned = buildCardDisplays(snap.Owned)
	d.Staked = buildCardDisplays(snap.Staked)
	printCardGroups(u, d.Owned, d.Staked)
	if snap.Rewards != nil {
		r := DisplayRewards(u, *snap.Rewards)
		d.Rewards = &r
	}
	return d
}
