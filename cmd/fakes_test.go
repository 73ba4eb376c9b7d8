package cmd

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tranvictor/nftstake/config"
	"github.com/tranvictor/nftstake/contracts"
	"github.com/tranvictor/nftstake/metadata"
	"github.com/tranvictor/nftstake/portfolio"
	"github.com/tranvictor/nftstake/tx"
	"github.com/tranvictor/nftstake/util/account"
	"github.com/tranvictor/nftstake/util/explorers"
)

type fakeCollection struct {
	uris map[string]string
}

func (c *fakeCollection) Address() string { return config.DefaultCollection }

func (c *fakeCollection) TokenURI(id *big.Int) (string, error) {
	uri, ok := c.uris[id.String()]
	if !ok {
		return "", fmt.Errorf("no uri for %s", id)
	}
	return uri, nil
}

func (c *fakeCollection) IsApprovedForAll(owner, operator string) (bool, error) {
	return true, nil
}

func (c *fakeCollection) SetApprovalForAllData(operator string, approved bool) ([]byte, error) {
	return []byte{0x01}, nil
}

type fakeStaking struct {
	info contracts.StakeInfo
}

func (s *fakeStaking) Address() string { return config.DefaultStaking }

func (s *fakeStaking) GetStakeInfo(staker string) (contracts.StakeInfo, error) {
	return s.info, nil
}

func (s *fakeStaking) RewardToken() (string, error) { return config.DefaultRewardToken, nil }

func (s *fakeStaking) RewardsPerUnitTime() (*big.Int, error) { return big.NewInt(100), nil }

func (s *fakeStaking) TimeUnit() (*big.Int, error) { return big.NewInt(3600), nil }

func (s *fakeStaking) StakeData(ids []*big.Int) ([]byte, error)    { return []byte{0x02}, nil }
func (s *fakeStaking) WithdrawData(ids []*big.Int) ([]byte, error) { return []byte{0x03}, nil }
func (s *fakeStaking) ClaimRewardsData() ([]byte, error)           { return []byte{0x04}, nil }

type fakeToken struct{}

func (fakeToken) Address() string                        { return config.DefaultRewardToken }
func (fakeToken) Balance(owner string) (*big.Int, error) { return big.NewInt(2500), nil }
func (fakeToken) Decimals() (uint64, error)              { return 2, nil }
func (fakeToken) Symbol() (string, error)                { return "AURA", nil }

type fakeIndexer struct {
	tokens []explorers.OwnedToken
}

func (i *fakeIndexer) ListERC721Balances(ctx context.Context, chainID uint64, owner string, contract string) ([]explorers.OwnedToken, error) {
	return i.tokens, nil
}

// newGateway serves {"name":"Ghost #n","image":"ipfs://cid/n.png"} for
// /ipfs/cid/n.json and 404 for anything else.
func newGateway(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/ipfs/cid/")
		if name == r.URL.Path || !strings.HasSuffix(name, ".json") {
			http.NotFound(w, r)
			return
		}
		n := strings.TrimSuffix(name, ".json")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"name":"Ghost #%s","image":"ipfs://cid/%s.png"}`, n, n)
	}))
	t.Cleanup(srv.Close)
	return srv
}

type backend struct {
	gateway    *httptest.Server
	collection *fakeCollection
	staking    *fakeStaking
	indexer    *fakeIndexer

	calls int
	app   AppContext
}

// useBackend points every read command at fakes and a local gateway.
func useBackend(t *testing.T) *backend {
	t.Helper()
	b := &backend{
		gateway: newGateway(t),
		collection: &fakeCollection{uris: map[string]string{
			"1": "ipfs://cid/1.json",
			"2": "ipfs://cid/2.json",
			"9": "ipfs://elsewhere/9.json",
		}},
		staking: &fakeStaking{info: contracts.StakeInfo{
			Staked:  []*big.Int{big.NewInt(2)},
			Rewards: big.NewInt(150),
		}},
		indexer: &fakeIndexer{tokens: []explorers.OwnedToken{
			{Address: config.DefaultCollection, TokenID: "1", TokenURI: "ipfs://cid/1.json"},
			{Address: "0x000000000000000000000000000000000000dEaD", TokenID: "3"},
			{Address: config.DefaultCollection, TokenID: "9"},
		}},
	}

	orig := newPortfolio
	newPortfolio = func(app AppContext, observer metadata.Observer) (*portfolio.Service, error) {
		b.calls++
		b.app = app
		return portfolio.NewService(portfolio.Deps{
			ChainID:    app.Network.GetChainID(),
			Collection: b.collection,
			Staking:    b.staking,
			Token:      fakeToken{},
			Indexer:    b.indexer,
			Resolver:   metadata.NewResolver(metadata.WithGateways(b.gateway.URL + "/ipfs/")),
			Logger:     app.Logger,
		}), nil
	}
	t.Cleanup(func() { newPortfolio = orig })
	return b
}

type fakeActions struct {
	ids []*big.Int

	stakeResults []tx.Result
	result       tx.Result
	err          error
}

func (a *fakeActions) Stake(ctx context.Context, ids []*big.Int) ([]tx.Result, error) {
	a.ids = ids
	return a.stakeResults, a.err
}

func (a *fakeActions) Withdraw(ctx context.Context, ids []*big.Int) (tx.Result, error) {
	a.ids = ids
	return a.result, a.err
}

func (a *fakeActions) Claim(ctx context.Context) (tx.Result, error) {
	return a.result, a.err
}

// useActions makes the transactional commands sign through a.
func useActions(t *testing.T, a *fakeActions) *string {
	t.Helper()
	signer := new(string)
	orig := newStakingActions
	newStakingActions = func(app AppContext, acc *account.Account) (StakingActions, error) {
		*signer = acc.AddressHex()
		return a, nil
	}
	t.Cleanup(func() { newStakingActions = orig })
	return signer
}
