package util

import "github.com/tranvictor/nftstake/ui"

// CardDisplay is the human-readable view-model of one token card. Staked
// is a StyledText so the terminal can colour it while JSON gets plain text.
type CardDisplay struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Image       string        `json:"image,omitempty"`
	URI         string        `json:"uri"`
	Description string        `json:"description,omitempty"`
	Staked      ui.StyledText `json:"staked"` // serializes as string
	Attributes  [][2]string   `json:"attributes,omitempty"`
}

type RewardsDisplay struct {
	Claimable ui.StyledText `json:"claimable"`
	Balance   string        `json:"balance"`
	Symbol    string        `json:"symbol"`
	Rate      string        `json:"rate,omitempty"`
	Native    string        `json:"native,omitempty"`
}

// TxResultDisplay describes one tx a staking command signed.
type TxResultDisplay struct {
	Label  string        `json:"label"`
	Hash   string        `json:"hash"`
	URL    string        `json:"url,omitempty"`
	Status ui.StyledText `json:"status"`
	Error  string        `json:"error,omitempty"`

	GasUsed string `json:"gas_used,omitempty"`
	GasCost string `json:"gas_cost,omitempty"`
}

type DashboardDisplay struct {
	Owner     string          `json:"owner"`
	Network   string          `json:"network"`
	Owned     []CardDisplay   `json:"owned"`
	Staked    []CardDisplay   `json:"staked"`
	Rewards   *RewardsDisplay `json:"rewards,omitempty"`
	UpdatedAt string          `json:"updated_at,omitempty"`
}
