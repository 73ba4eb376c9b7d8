package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ethereum/go-ethereum/common"
	"gopkg.in/yaml.v3"

	"github.com/tranvictor/nftstake/metadata"
	"github.com/tranvictor/nftstake/util/explorers"
)

const (
	EnvGlacierAPIKey    = "NFTSTAKE_GLACIER_API_KEY"
	EnvKeystorePassword = "NFTSTAKE_KEYSTORE_PASSWORD"

	DefaultCollection  = "0x0A337Be2EA71E3aeA9C82D45b036aC6a6123B6D0"
	DefaultStaking     = "0x51697170F78136c8d143B0013Cf5B229aDe70757"
	DefaultRewardToken = "0xa346D51362E2cF7c09cf38Ccf5E2b208B071e71b"

	DefaultGatewayTimeout = 10 * time.Second
	DefaultListenAddr     = "127.0.0.1:8080"
)

// Duration reads "10s" style strings from yaml and toml.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	return d.UnmarshalText([]byte(node.Value))
}

type Contracts struct {
	Collection  string `yaml:"collection" toml:"collection" json:"collection"`
	Staking     string `yaml:"staking" toml:"staking" json:"staking"`
	RewardToken string `yaml:"reward_token" toml:"reward_token" json:"reward_token"`
}

type Metadata struct {
	Gateways []string `yaml:"gateways" toml:"gateways" json:"gateways"`
	// Timeout bounds each gateway GET. 0 leaves requests bound only by
	// the command's context.
	Timeout    Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
	DirectHTTP bool     `yaml:"direct_http" toml:"direct_http" json:"direct_http"`
}

type Indexer struct {
	URL       string   `yaml:"url" toml:"url" json:"url"`
	APIKey    string   `yaml:"api_key" toml:"api_key" json:"-"`
	PageSize  int      `yaml:"page_size" toml:"page_size" json:"page_size"`
	RateLimit float64  `yaml:"rate_limit" toml:"rate_limit" json:"rate_limit"`
	Timeout   Duration `yaml:"timeout" toml:"timeout" json:"timeout"`
}

type Server struct {
	Listen    string  `yaml:"listen" toml:"listen" json:"listen"`
	RateLimit float64 `yaml:"rate_limit" toml:"rate_limit" json:"rate_limit"`
	Burst     int     `yaml:"burst" toml:"burst" json:"burst"`
}

// Deployment describes which contracts and services a run talks to.
type Deployment struct {
	Network     string    `yaml:"network" toml:"network" json:"network"`
	Contracts   Contracts `yaml:"contracts" toml:"contracts" json:"contracts"`
	Metadata    Metadata  `yaml:"metadata" toml:"metadata" json:"metadata"`
	Indexer     Indexer   `yaml:"indexer" toml:"indexer" json:"indexer"`
	Server      Server    `yaml:"server" toml:"server" json:"server"`
	Concurrency int       `yaml:"concurrency" toml:"concurrency" json:"concurrency"`
}

func DefaultDeployment() Deployment {
	return Deployment{
		Network: "avalanche",
		Contracts: Contracts{
			Collection:  DefaultCollection,
			Staking:     DefaultStaking,
			RewardToken: DefaultRewardToken,
		},
		Metadata: Metadata{
			Gateways: append([]string{}, metadata.DefaultGateways...),
			Timeout:  Duration{DefaultGatewayTimeout},
		},
		Indexer: Indexer{
			PageSize:  explorers.DefaultGlacierPageSize,
			RateLimit: explorers.DefaultGlacierRate,
			Timeout:   Duration{explorers.DefaultGlacierTimeout},
		},
		Server: Server{
			Listen:    DefaultListenAddr,
			RateLimit: 5,
			Burst:     10,
		},
		Concurrency: 8,
	}
}

// Load reads a deployment file over the defaults. The format follows the
// extension: .yaml/.yml or .toml. An empty path returns the defaults.
// Environment variables override the file.
func Load(path string) (Deployment, error) {
	d := DefaultDeployment()
	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return d, fmt.Errorf("couldn't read config %s: %w", path, err)
		}
		switch ext := strings.ToLower(filepath.Ext(path)); ext {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(content, &d)
		case ".toml":
			_, err = toml.Decode(string(content), &d)
		default:
			return d, fmt.Errorf("unsupported config format %q, use .yaml or .toml", ext)
		}
		if err != nil {
			return d, fmt.Errorf("couldn't parse config %s: %w", path, err)
		}
	}
	if key := strings.TrimSpace(os.Getenv(EnvGlacierAPIKey)); key != "" {
		d.Indexer.APIKey = key
	}
	return d, d.Validate()
}

func (d Deployment) Validate() error {
	for name, addr := range map[string]string{
		"collection":   d.Contracts.Collection,
		"staking":      d.Contracts.Staking,
		"reward_token": d.Contracts.RewardToken,
	} {
		if !common.IsHexAddress(addr) {
			return fmt.Errorf("contracts.%s: %q is not an address", name, addr)
		}
	}
	for _, g := range d.Metadata.Gateways {
		if !strings.HasPrefix(g, "http://") && !strings.HasPrefix(g, "https://") {
			return fmt.Errorf("metadata.gateways: %q is not an http(s) url", g)
		}
	}
	if d.Metadata.Timeout.Duration < 0 {
		return fmt.Errorf("metadata.timeout can't be negative")
	}
	if d.Indexer.Timeout.Duration < 0 {
		return fmt.Errorf("indexer.timeout can't be negative")
	}
	if d.Concurrency < 0 {
		return fmt.Errorf("concurrency can't be negative")
	}
	return nil
}
