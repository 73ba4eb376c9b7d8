package networks

import (
	"time"
)

type Network interface {
	GetName() string
	GetChainID() uint64
	GetAlternativeNames() []string
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint64
	GetBlockTime() time.Duration

	GetNodeVariableName() string
	GetDefaultNodes() map[string]string

	// GetIndexerURL is the Glacier compatible data API serving the chain,
	// empty when there is none.
	GetIndexerURL() string
	GetBlockExplorerURL() string

	MarshalJSON() ([]byte, error)
}
