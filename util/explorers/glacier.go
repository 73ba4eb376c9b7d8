// Package explorers talks to chain indexers. The only indexer used is
// Avalanche's Glacier data API, which lists the ERC721 tokens an address
// holds without scanning transfer logs.
package explorers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultGlacierURL      = "https://glacier-api.avax.network"
	DefaultGlacierPageSize = 10
	DefaultGlacierTimeout  = 15 * time.Second
	DefaultGlacierRate     = 2

	glacierAPIKeyHeader = "x-glacier-api-key"
	maxGlacierPages     = 100
)

// OwnedToken is one entry of Glacier's erc721TokenBalances list.
type OwnedToken struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	ChainID  string `json:"chainId"`
	TokenID  string `json:"tokenId"`
	TokenURI string `json:"tokenUri"`
}

type listERC721Response struct {
	Balances      []OwnedToken `json:"erc721TokenBalances"`
	NextPageToken string       `json:"nextPageToken"`
}

// Indexer lists the tokens of one collection held by an owner.
type Indexer interface {
	ListERC721Balances(ctx context.Context, chainID uint64, owner string, contract string) ([]OwnedToken, error)
}

type GlacierOption func(*Glacier)

func WithGlacierURL(u string) GlacierOption {
	return func(g *Glacier) { g.baseURL = strings.TrimRight(u, "/") }
}

func WithGlacierAPIKey(key string) GlacierOption {
	return func(g *Glacier) { g.apiKey = key }
}

func WithGlacierHTTPClient(c *http.Client) GlacierOption {
	return func(g *Glacier) { g.client = c }
}

func WithGlacierPageSize(n int) GlacierOption {
	return func(g *Glacier) {
		if n > 0 {
			g.pageSize = n
		}
	}
}

// WithGlacierRateLimit caps outgoing requests per second. r <= 0 disables
// the limiter.
func WithGlacierRateLimit(r float64, burst int) GlacierOption {
	return func(g *Glacier) {
		if r <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(r), burst)
	}
}

func WithGlacierLogger(l *zap.Logger) GlacierOption {
	return func(g *Glacier) { g.logger = l }
}

type Glacier struct {
	baseURL  string
	apiKey   string
	pageSize int
	client   *http.Client
	limiter  *rate.Limiter
	logger   *zap.Logger
}

func NewGlacier(opts ...GlacierOption) *Glacier {
	g := &Glacier{
		baseURL:  DefaultGlacierURL,
		pageSize: DefaultGlacierPageSize,
		client:   &http.Client{Timeout: DefaultGlacierTimeout},
		limiter:  rate.NewLimiter(rate.Limit(DefaultGlacierRate), 1),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Glacier) listERC721URL(chainID uint64, owner string, contract string, pageToken string) string {
	q := url.Values{}
	q.Set("pageSize", strconv.Itoa(g.pageSize))
	if contract != "" {
		q.Set("contractAddress", contract)
	}
	if pageToken != "" {
		q.Set("pageToken", pageToken)
	}
	return fmt.Sprintf(
		"%s/v1/chains/%d/addresses/%s/balances:listErc721?%s",
		g.baseURL, chainID, owner, q.Encode(),
	)
}

// ListERC721Balances follows nextPageToken until the last page and
// returns every token in the order Glacier listed them.
func (g *Glacier) ListERC721Balances(ctx context.Context, chainID uint64, owner string, contract string) ([]OwnedToken, error) {
	result := []OwnedToken{}
	pageToken := ""
	for page := 0; page < maxGlacierPages; page++ {
		resp, err := g.get(ctx, g.listERC721URL(chainID, owner, contract, pageToken))
		if err != nil {
			return nil, err
		}
		result = append(result, resp.Balances...)
		g.logger.Debug("glacier page",
			zap.Int("page", page),
			zap.Int("tokens", len(resp.Balances)),
			zap.Bool("more", resp.NextPageToken != ""),
		)
		if resp.NextPageToken == "" {
			return result, nil
		}
		pageToken = resp.NextPageToken
	}
	return nil, fmt.Errorf("glacier returned more than %d pages for %s", maxGlacierPages, owner)
}

func (g *Glacier) get(ctx context.Context, u string) (*listERC721Response, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set(glacierAPIKeyHeader, g.apiKey)
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("glacier request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("couldn't read glacier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("glacier returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	result := &listERC721Response{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf(
			"couldn't unmarshal %s to erc721 balances, err: %w",
			string(body),
			err,
		)
	}
	return result, nil
}
