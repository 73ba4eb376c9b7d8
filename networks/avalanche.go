package networks

var Avalanche Network = NewAvalanche()

var AvalancheFuji Network = NewAvalancheFuji()

func NewAvalanche() *GenericNetwork {
	return NewGenericNetwork(GenericNetworkConfig{
		Name:               "avalanche",
		AlternativeNames:   []string{"avax", "snowtrace"},
		ChainID:            43114,
		NativeTokenSymbol:  "AVAX",
		NativeTokenDecimal: 18,
		BlockTime:          2,
		NodeVariableName:   "AVALANCHE_MAINNET_NODE",
		DefaultNodes: map[string]string{
			"avalanche": "https://api.avax.network/ext/bc/C/rpc",
		},
		IndexerURL:       "https://glacier-api.avax.network",
		BlockExplorerURL: "https://snowtrace.io",
	})
}

func NewAvalancheFuji() *GenericNetwork {
	return NewGenericNetwork(GenericNetworkConfig{
		Name:               "fuji",
		AlternativeNames:   []string{"avalanche-fuji"},
		ChainID:            43113,
		NativeTokenSymbol:  "AVAX",
		NativeTokenDecimal: 18,
		BlockTime:          2,
		NodeVariableName:   "AVALANCHE_FUJI_NODE",
		DefaultNodes: map[string]string{
			"fuji": "https://api.avax-test.network/ext/bc/C/rpc",
		},
		IndexerURL:       "https://glacier-api.avax.network",
		BlockExplorerURL: "https://testnet.snowtrace.io",
	})
}
