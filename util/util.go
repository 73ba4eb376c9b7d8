package util

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/tranvictor/nftstake/networks"
	"github.com/tranvictor/nftstake/util/broadcaster"
	"github.com/tranvictor/nftstake/util/monitor"
	"github.com/tranvictor/nftstake/util/reader"
)

const CUSTOM_NODE_NAME = "custom-node"

// GetNodes returns the rpc nodes of network. The node set in the
// network's env variable, if any, is added as "custom-node".
func GetNodes(network networks.Network) (map[string]string, error) {
	nodes := map[string]string{}
	for name, url := range network.GetDefaultNodes() {
		nodes[name] = url
	}
	if v := network.GetNodeVariableName(); v != "" {
		customNode := strings.Trim(os.Getenv(v), " ")
		if customNode != "" {
			nodes[CUSTOM_NODE_NAME] = customNode
		}
	}
	if len(nodes) == 0 {
		return nil, fmt.Errorf(
			"network %s has no rpc node, set %s or add one to the network config",
			network.GetName(), network.GetNodeVariableName(),
		)
	}
	return nodes, nil
}

func EthReader(network networks.Network) (*reader.EthReader, error) {
	nodes, err := GetNodes(network)
	if err != nil {
		return nil, err
	}
	return reader.NewEthReaderGeneric(nodes), nil
}

func EthBroadcaster(network networks.Network, logger *zap.Logger) (*broadcaster.Broadcaster, error) {
	nodes, err := GetNodes(network)
	if err != nil {
		return nil, err
	}
	return broadcaster.NewGenericBroadcaster(nodes, logger), nil
}

func EthTxMonitor(network networks.Network) (*monitor.TxMonitor, error) {
	r, err := EthReader(network)
	if err != nil {
		return nil, err
	}
	interval := network.GetBlockTime()
	if interval <= 0 {
		interval = monitor.DefaultInterval
	}
	return monitor.NewGenericTxMonitor(r).WithTimings(interval, monitor.DefaultLostTimeout), nil
}

// TxURL links hash on the network's block explorer, or returns the bare
// hash when the network has none.
func TxURL(network networks.Network, hash string) string {
	base := strings.TrimRight(network.GetBlockExplorerURL(), "/")
	if base == "" {
		return hash
	}
	return fmt.Sprintf("%s/tx/%s", base, hash)
}

var addressRe = regexp.MustCompile("0x[0-9a-fA-F]{40}([^0-9a-fA-F]|$)")

// ScanForAddresses finds every 0x prefixed address in para, in order.
func ScanForAddresses(para string) []string {
	result := addressRe.FindAllString(para, -1)
	if result == nil {
		return []string{}
	}
	for i := 0; i < len(result); i++ {
		result[i] = result[i][0:42]
	}
	return result
}
