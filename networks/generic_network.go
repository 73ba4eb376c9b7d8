package networks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type GenericNetworkConfig struct {
	Name               string            `json:"name"`
	AlternativeNames   []string          `json:"alternative_names"`
	ChainID            uint64            `json:"chain_id"`
	NativeTokenSymbol  string            `json:"native_token_symbol"`
	NativeTokenDecimal uint64            `json:"native_token_decimal"`
	BlockTime          uint64            `json:"block_time"`
	NodeVariableName   string            `json:"node_variable_name"`
	DefaultNodes       map[string]string `json:"default_nodes"`
	IndexerURL         string            `json:"indexer_url"`
	BlockExplorerURL   string            `json:"block_explorer_url"`
}

func (c GenericNetworkConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("network name is required")
	}
	if c.ChainID == 0 {
		return fmt.Errorf("network %s: chain id is required", c.Name)
	}
	if len(c.DefaultNodes) == 0 && c.NodeVariableName == "" {
		return fmt.Errorf("network %s: needs default nodes or a node variable", c.Name)
	}
	return nil
}

// GenericNetwork is an EVM chain described entirely by its config.
type GenericNetwork struct {
	config GenericNetworkConfig
}

func NewGenericNetwork(config GenericNetworkConfig) *GenericNetwork {
	if config.NativeTokenDecimal == 0 {
		config.NativeTokenDecimal = 18
	}
	return &GenericNetwork{config: config}
}

func (gn *GenericNetwork) GetName() string {
	return gn.config.Name
}

func (gn *GenericNetwork) GetChainID() uint64 {
	return gn.config.ChainID
}

func (gn *GenericNetwork) GetAlternativeNames() []string {
	return gn.config.AlternativeNames
}

func (gn *GenericNetwork) GetNativeTokenSymbol() string {
	return gn.config.NativeTokenSymbol
}

func (gn *GenericNetwork) GetNativeTokenDecimal() uint64 {
	return gn.config.NativeTokenDecimal
}

func (gn *GenericNetwork) GetBlockTime() time.Duration {
	return time.Duration(gn.config.BlockTime) * time.Second
}

func (gn *GenericNetwork) GetNodeVariableName() string {
	return gn.config.NodeVariableName
}

func (gn *GenericNetwork) GetDefaultNodes() map[string]string {
	return gn.config.DefaultNodes
}

func (gn *GenericNetwork) GetIndexerURL() string {
	return gn.config.IndexerURL
}

func (gn *GenericNetwork) GetBlockExplorerURL() string {
	return gn.config.BlockExplorerURL
}

func (gn *GenericNetwork) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(gn.config, "", "  ")
}

func NewNetworkFromJSON(content []byte) (Network, error) {
	networkConfig := GenericNetworkConfig{}
	err := json.Unmarshal(content, &networkConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal network config: %w", err)
	}
	if err := networkConfig.Validate(); err != nil {
		return nil, err
	}
	return NewGenericNetwork(networkConfig), nil
}
