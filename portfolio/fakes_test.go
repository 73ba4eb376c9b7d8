package portfolio_test

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/tranvictor/nftstake/contracts"
	"github.com/tranvictor/nftstake/metadata"
	"github.com/tranvictor/nftstake/util/explorers"
)

const (
	collectionAddr = "0x0A337Be2EA71E3aeA9C82D45b036aC6a6123B6D0"
	stakingAddr    = "0x51697170F78136c8d143B0013Cf5B229aDe70757"
	tokenAddr      = "0xa346D51362E2cF7c09cf38Ccf5E2b208B071e71b"
	alice          = "0x00000000000000000000000000000000000000aa"
	bob            = "0x00000000000000000000000000000000000000bb"
)

type fakeCollection struct {
	uris     map[string]string
	approved bool
}

func (f *fakeCollection) Address() string { return collectionAddr }

func (f *fakeCollection) TokenURI(id *big.Int) (string, error) {
	uri, ok := f.uris[id.String()]
	if !ok {
		return "", fmt.Errorf("%w: got []interface {}", metadata.ErrMalformedURIShape)
	}
	return uri, nil
}

func (f *fakeCollection) IsApprovedForAll(owner, operator string) (bool, error) {
	return f.approved, nil
}

func (f *fakeCollection) SetApprovalForAllData(operator string, approved bool) ([]byte, error) {
	return []byte{0xa2}, nil
}

type fakeStaking struct {
	info map[string]contracts.StakeInfo
	err  error
}

func (f *fakeStaking) Address() string { return stakingAddr }

func (f *fakeStaking) GetStakeInfo(staker string) (contracts.StakeInfo, error) {
	if f.err != nil {
		return contracts.StakeInfo{}, f.err
	}
	return f.info[strings.ToLower(staker)], nil
}

func (f *fakeStaking) RewardToken() (string, error)          { return tokenAddr, nil }
func (f *fakeStaking) RewardsPerUnitTime() (*big.Int, error) { return big.NewInt(10), nil }
func (f *fakeStaking) TimeUnit() (*big.Int, error)           { return nil, errors.New("reverted") }

func (f *fakeStaking) StakeData(ids []*big.Int) ([]byte, error)    { return []byte{0x01}, nil }
func (f *fakeStaking) WithdrawData(ids []*big.Int) ([]byte, error) { return []byte{0x02}, nil }
func (f *fakeStaking) ClaimRewardsData() ([]byte, error)           { return []byte{0x03}, nil }

type fakeToken struct{}

func (fakeToken) Address() string                        { return tokenAddr }
func (fakeToken) Balance(owner string) (*big.Int, error) { return big.NewInt(2500), nil }
func (fakeToken) Decimals() (uint64, error)              { return 2, nil }
func (fakeToken) Symbol() (string, error)                { return "AURA", nil }

type fakeIndexer struct {
	tokens map[string][]explorers.OwnedToken
	// when set, listing for blockOwner signals entered and waits on release
	blockOwner string
	entered    chan struct{}
	release    chan struct{}
}

func (f *fakeIndexer) ListERC721Balances(ctx context.Context, chainID uint64, owner string, contract string) ([]explorers.OwnedToken, error) {
	if owner == f.blockOwner {
		close(f.entered)
		<-f.release
	}
	return f.tokens[owner], nil
}

// fakeResolver returns a record named after the uri, failing for uris in
// fail.
type fakeResolver struct {
	mu    sync.Mutex
	fail  map[string]bool
	calls []string
}

func (f *fakeResolver) Resolve(ctx context.Context, ref metadata.TokenReference) (metadata.Record, error) {
	f.mu.Lock()
	f.calls = append(f.calls, ref.URI)
	f.mu.Unlock()
	if f.fail[ref.URI] {
		return nil, &metadata.ExhaustedError{Token: ref.ID}
	}
	return metadata.Record{"id": ref.ID, "uri": ref.URI, "name": "Distortion #" + ref.ID}, nil
}
