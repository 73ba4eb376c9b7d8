package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tranvictor/nftstake/config"
)

func addFromFlag(c *cobra.Command) {
	c.PersistentFlags().
		StringVarP(&config.From, "from", "f", "", "Wallet to use. A keystore file or a file holding a hex private key. Read commands also accept a bare address")
}

func AddCommonFlagsToTransactionalCmds(c *cobra.Command) {
	addFromFlag(c)
	c.PersistentFlags().
		Float64VarP(&config.GasPrice, "gasprice", "p", 0, "Gas price (max fee for dynamic fee txs) in gwei. If default value is used, the node's suggestion is used. The gas price to be used in the tx is gas price + extra gas price")
	c.PersistentFlags().
		Float64VarP(&config.TipGas, "tipgas", "s", 0, "tip in gwei, will be use in dynamic fee tx, default value get from node.")
	c.PersistentFlags().
		Float64VarP(&config.ExtraGasPrice, "extraprice", "P", 0, "Extra gas price in gwei. The gas price to be used in the tx is gas price + extra gas price")
	c.PersistentFlags().
		Float64VarP(&config.ExtraTipGas, "extratip", "Q", 0, "Extra tip gas in gwei. The tip gas to be used in the tx is tip_gas_from_node + extra_tip_gas. This param will be ignored if dynamic tx is not possible.")
	c.PersistentFlags().
		Uint64VarP(&config.GasLimit, "gas", "g", 0, "Base gas limit for the tx. If default value is used, we will use the nodes to estimate the gas limit. The gas limit to be used in the tx is gas limit + extra gas limit")
	c.PersistentFlags().
		Uint64VarP(&config.ExtraGasLimit, "extragas", "G", 50000, "Extra gas limit for the tx. The gas limit to be used in the tx is gas limit + extra gas limit")
	c.PersistentFlags().
		Uint64VarP(&config.Nonce, "nonce", "n", 0, "Nonce of the from account. If default value is used, we will use the next available nonce of from account")
	c.PersistentFlags().
		BoolVarP(&config.DontBroadcast, "dry", "d", false, "Will not broadcast the tx, only show signed tx.")
	c.PersistentFlags().
		BoolVarP(&config.DontWaitToBeMined, "no-wait", "F", false, "Will not wait the tx to be mined. An approval a stake depends on is still waited for.")
	c.PersistentFlags().
		BoolVarP(&config.ForceLegacy, "legacy-tx", "L", false, "Force using legacy transaction")
	c.PersistentFlags().
		BoolVarP(&config.Yes, "yes", "y", false, "Sign without asking for confirmation. The tx is still shown.")
}
