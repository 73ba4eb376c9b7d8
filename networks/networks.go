package networks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/sahilm/fuzzy"
)

var ErrNetworkNotFound = fmt.Errorf("network not found")

// Registry resolves networks by name, alternative name or chain id.
// Custom networks are json files in dir and take precedence over the
// built-in ones.
type Registry struct {
	mu           sync.RWMutex
	dir          string
	networks     map[string]Network
	networksByID map[uint64]Network
}

// NewRegistry registers builtins then every custom network found in dir.
// Custom files that can't be parsed are skipped and returned as warnings.
func NewRegistry(builtins []Network, dir string) (*Registry, []error) {
	r := &Registry{
		dir:          dir,
		networks:     map[string]Network{},
		networksByID: map[uint64]Network{},
	}
	for _, n := range builtins {
		if err := r.register(n); err != nil {
			panic(err)
		}
	}

	warnings := []error{}
	if dir == "" {
		return r, warnings
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return r, append(warnings, fmt.Errorf("failed to glob json files in %s: %w", dir, err))
	}
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("failed to read file %s: %w", file, err))
			continue
		}
		network, err := NewNetworkFromJSON(content)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("failed to parse network from file %s: %w", file, err))
			continue
		}
		r.replace(network)
	}
	return r, warnings
}

func (r *Registry) register(n Network) error {
	names := append([]string{n.GetName()}, n.GetAlternativeNames()...)
	for _, name := range names {
		if _, found := r.networks[name]; found {
			return fmt.Errorf("network with name or alternative name of '%s' already exists", name)
		}
	}
	for _, name := range names {
		r.networks[name] = n
	}
	r.networksByID[n.GetChainID()] = n
	return nil
}

// replace registers n, dropping any network it collides with by name or
// chain id.
func (r *Registry) replace(n Network) {
	names := append([]string{n.GetName()}, n.GetAlternativeNames()...)
	if old, found := r.networksByID[n.GetChainID()]; found {
		r.remove(old)
	}
	for _, name := range names {
		if old, found := r.networks[name]; found {
			r.remove(old)
		}
	}
	r.register(n)
}

func (r *Registry) remove(n Network) {
	for name, v := range r.networks {
		if v == n {
			delete(r.networks, name)
		}
	}
	for id, v := range r.networksByID {
		if v == n {
			delete(r.networksByID, id)
		}
	}
}

func (r *Registry) Get(name string) (Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, found := r.networks[strings.ToLower(strings.TrimSpace(name))]
	if !found {
		if suggestions := r.suggest(name); len(suggestions) > 0 {
			return nil, fmt.Errorf("network name '%s': %w, did you mean %s?", name, ErrNetworkNotFound, strings.Join(suggestions, ", "))
		}
		return nil, fmt.Errorf("network name '%s': %w", name, ErrNetworkNotFound)
	}
	return res, nil
}

func (r *Registry) GetByID(id uint64) (Network, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, found := r.networksByID[id]
	if !found {
		return nil, fmt.Errorf("network id %d: %w", id, ErrNetworkNotFound)
	}
	return res, nil
}

// suggest returns up to three registered names closest to name.
func (r *Registry) suggest(name string) []string {
	names := r.names()
	matches := fuzzy.Find(strings.ToLower(name), names)
	result := []string{}
	for i, m := range matches {
		if i == 3 {
			break
		}
		result = append(result, m.Str)
	}
	return result
}

func (r *Registry) names() []string {
	res := make([]string, 0, len(r.networks))
	for name := range r.networks {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names()
}

// Networks lists every distinct network ordered by chain id.
func (r *Registry) Networks() []Network {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make([]Network, 0, len(r.networksByID))
	for _, n := range r.networksByID {
		res = append(res, n)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].GetChainID() < res[j].GetChainID() })
	return res
}

// Add registers network and stores it in the registry dir so later runs
// pick it up.
func (r *Registry) Add(network Network) error {
	content, err := network.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal network: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.replace(network)

	if r.dir == "" {
		return nil
	}
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", r.dir, err)
	}
	err = os.WriteFile(filepath.Join(r.dir, fmt.Sprintf("%s.json", network.GetName())), content, 0644)
	if err != nil {
		return fmt.Errorf("failed to write the new network to file: %w", err)
	}
	return nil
}
