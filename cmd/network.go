package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tranvictor/nftstake/networks"
	"github.com/tranvictor/nftstake/ui"
	"github.com/tranvictor/nftstake/util"
)

var NetworkForce bool

const networkJSONFormat = `{
	"name": "network_name",
	"alternative_names": ["alternative_name_1"],
	"chain_id": 43114,
	"native_token_symbol": "AVAX",
	"native_token_decimal": 18,
	"block_time": 2,
	"node_variable_name": "MY_NETWORK_NODE",
	"default_nodes": {
		"node_name_1": "node_url_1"
	},
	"indexer_url": "https://glacier-api.avax.network",
	"block_explorer_url": "https://snowtrace.io"
}`

// readNetworkConfig accepts either the json itself or a path to a json
// file.
func readNetworkConfig(arg string) (networks.Network, error) {
	arg = strings.TrimSpace(arg)
	if strings.HasPrefix(arg, "{") && strings.HasSuffix(arg, "}") {
		n, err := networks.NewNetworkFromJSON([]byte(arg))
		if err != nil {
			return nil, fmt.Errorf("the provided json is not valid: %w", err)
		}
		return n, nil
	}
	content, err := os.ReadFile(arg)
	if err != nil {
		return nil, fmt.Errorf("couldn't read the provided json file: %w", err)
	}
	n, err := networks.NewNetworkFromJSON(content)
	if err != nil {
		return nil, fmt.Errorf("the provided json is not a valid network config: %w", err)
	}
	return n, nil
}

// checkNetworkConflicts refuses, unless force is set, a network that would
// replace an existing one by name or by chain id.
func checkNetworkConflicts(u ui.UI, n networks.Network, force bool) error {
	allNames := append([]string{n.GetName()}, n.GetAlternativeNames()...)
	for _, name := range allNames {
		if _, err := networks.GetNetwork(name); err != nil {
			continue
		}
		if !force {
			return fmt.Errorf("network with name %s already exists, use --force to replace it", name)
		}
		u.Warn("Network with name %s already exists. It will be replaced.", name)
	}
	existing, err := networks.GetNetworkByID(n.GetChainID())
	if err != nil || existing.GetName() == n.GetName() {
		return nil
	}
	if !force {
		return fmt.Errorf("chain id %d already belongs to network %s, use --force to replace it",
			n.GetChainID(), existing.GetName())
	}
	u.Warn("Chain id %d already belongs to network %s. It will be replaced.", n.GetChainID(), existing.GetName())
	return nil
}

func newAddNetworkCmd(u ui.UI) *cobra.Command {
	c := &cobra.Command{
		Use:   "add <json-or-file>",
		Short: "Add a new network to the supported networks list locally",
		Long: fmt.Sprintf(`Takes a network config json, or a path to a json file, in the following format:
%s`, networkJSONFormat),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			newNetwork, err := readNetworkConfig(args[0])
			if err != nil {
				return err
			}

			if err := checkNetworkConflicts(u, newNetwork, NetworkForce); err != nil {
				return err
			}
			if err := networks.AddNetwork(newNetwork); err != nil {
				return fmt.Errorf("failed to add the new network: %w", err)
			}
			u.Success("Network %s with chain ID %d added and saved to %s.",
				newNetwork.GetName(), newNetwork.GetChainID(), networks.CustomNetworksDir())
			return nil
		},
	}
	c.Flags().BoolVar(&NetworkForce, "force", false, "Replace the network if it already exists")
	return c
}

func newListNetworkCmd(u ui.UI) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all of supported networks",
		Long:  ``,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := networks.GetSupportedNetworks()
			rows := make([][]string, 0, len(all))
			for _, n := range all {
				nodes, err := util.GetNodes(n)
				if err != nil {
					u.Warn("%s: %s", n.GetName(), err)
				}
				names := make([]string, 0, len(nodes))
				for key := range nodes {
					names = append(names, key)
				}
				sort.Strings(names)
				rows = append(rows, []string{
					n.GetName(),
					fmt.Sprintf("%d", n.GetChainID()),
					n.GetNativeTokenSymbol(),
					strings.Join(names, ", "),
				})
			}
			u.Table([]string{"Name", "Chain ID", "Symbol", "RPC nodes"}, rows)
			u.Info("To add a network: nftstake network add <json-or-file>")
			u.Info("To delete one, remove its json file from %s.", networks.CustomNetworksDir())
			return nil
		},
	}
}

func newNetworkCmd(u ui.UI) *cobra.Command {
	c := &cobra.Command{
		Use:   "network",
		Short: "Manage all networks that nftstake supports",
		Long:  ``,
	}
	c.AddCommand(newListNetworkCmd(u), newAddNetworkCmd(u))
	return c
}
