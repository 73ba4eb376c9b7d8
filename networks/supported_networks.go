package networks

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"sync"
)

// Insert more Network implementation here to support
// more chains
var supportedNetworks = []Network{
	Avalanche,
	AvalancheFuji,
}

var (
	globalRegistry *Registry
	once           sync.Once
)

// CustomNetworksDir is ~/.nftstake/networks, empty if the home dir is
// unknown.
func CustomNetworksDir() string {
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	return filepath.Join(usr.HomeDir, ".nftstake", "networks")
}

func registry() *Registry {
	once.Do(func() {
		var warnings []error
		globalRegistry, warnings = NewRegistry(supportedNetworks, CustomNetworksDir())
		for _, w := range warnings {
			fmt.Fprintf(os.Stderr, "WARNING: %s. Ignore and continue with other networks.\n", w)
		}
	})
	return globalRegistry
}

func GetSupportedNetworks() []Network {
	return registry().Networks()
}

func GetNetwork(name string) (Network, error) {
	return registry().Get(name)
}

func GetNetworkByID(id uint64) (Network, error) {
	return registry().GetByID(id)
}

func GetSupportedNetworkNames() []string {
	return registry().Names()
}

func AddNetwork(network Network) error {
	return registry().Add(network)
}
