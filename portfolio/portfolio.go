// Package portfolio assembles what a wallet sees in the staking dApp:
// the collection tokens it holds, the tokens it has staked and the
// rewards it has accrued.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"go.uber.org/zap"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/contracts"
	"github.com/tranvictor/nftstake/metadata"
	"github.com/tranvictor/nftstake/util/explorers"
)

const DefaultConcurrency = 8

var (
	ErrNoOwner    = errors.New("no wallet address")
	ErrSuperseded = errors.New("refresh superseded by a newer one")
)

// MetadataResolver is satisfied by *metadata.Resolver.
type MetadataResolver interface {
	Resolve(ctx context.Context, ref metadata.TokenReference) (metadata.Record, error)
}

// BalanceReader reads native coin balances, *reader.EthReader satisfies it.
type BalanceReader interface {
	GetBalance(address string) (*big.Int, error)
}

type Card struct {
	TokenID  *big.Int        `json:"token_id"`
	TokenURI string          `json:"token_uri"`
	Metadata metadata.Record `json:"metadata"`
	Staked   bool            `json:"staked"`
}

func (c Card) Name() string {
	if name := c.Metadata.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("Token %s", c.TokenID)
}

type Rewards struct {
	Claimable          *big.Int `json:"claimable"`
	Balance            *big.Int `json:"balance"`
	Decimals           uint64   `json:"decimals"`
	Symbol             string   `json:"symbol"`
	RewardsPerUnitTime *big.Int `json:"rewards_per_unit_time,omitempty"`
	TimeUnit           *big.Int `json:"time_unit,omitempty"`
	NativeBalance      *big.Int `json:"native_balance,omitempty"`
	NativeSymbol       string   `json:"native_symbol,omitempty"`
	NativeDecimal      uint64   `json:"native_decimal,omitempty"`
}

func (r Rewards) NativeBalanceString() string {
	if r.NativeBalance == nil {
		return ""
	}
	return common.BigToFloatString(r.NativeBalance, r.NativeDecimal)
}

func (r Rewards) ClaimableString() string {
	return common.BigToFloatString(r.Claimable, r.Decimals)
}

func (r Rewards) BalanceString() string {
	return common.BigToFloatString(r.Balance, r.Decimals)
}

type Deps struct {
	ChainID    uint64
	Collection contracts.Collection
	Staking    contracts.Staking
	Token      contracts.RewardToken
	Indexer    explorers.Indexer
	Resolver   MetadataResolver

	// optional
	Native        BalanceReader
	NativeSymbol  string
	NativeDecimal uint64
	Logger        *zap.Logger
	Concurrency   int
}

type Service struct {
	d Deps
}

func NewService(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Concurrency <= 0 {
		d.Concurrency = DefaultConcurrency
	}
	return &Service{d: d}
}

func (s *Service) NativeDecimal() uint64 {
	if s.d.NativeDecimal == 0 {
		return 18
	}
	return s.d.NativeDecimal
}

type pendingCard struct {
	id  *big.Int
	uri string
}

// resolveAll resolves cards concurrently. Cards whose metadata couldn't
// be resolved are left out, the rest keep their input order.
func (s *Service) resolveAll(ctx context.Context, pending []pendingCard, staked bool) ([]Card, error) {
	cards, errs := common.ParallelMap(pending, s.d.Concurrency, func(_ int, p pendingCard) (Card, error) {
		uri := p.uri
		if uri == "" {
			var err error
			uri, err = s.d.Collection.TokenURI(p.id)
			if err != nil {
				return Card{}, err
			}
		}
		rec, err := s.d.Resolver.Resolve(ctx, metadata.NewTokenReference(p.id, uri))
		if err != nil {
			return Card{}, err
		}
		return Card{TokenID: p.id, TokenURI: uri, Metadata: rec, Staked: staked}, nil
	})

	result := make([]Card, 0, len(cards))
	for i, c := range cards {
		if errs[i] != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			s.d.Logger.Warn("skipping token without metadata",
				zap.String("token", pending[i].id.String()),
				zap.Bool("staked", staked),
				zap.Error(errs[i]),
			)
			continue
		}
		result = append(result, c)
	}
	return result, nil
}

// Owned lists the collection tokens held by owner, in indexer order.
func (s *Service) Owned(ctx context.Context, owner string) ([]Card, error) {
	if owner == "" {
		return nil, ErrNoOwner
	}
	tokens, err := s.d.Indexer.ListERC721Balances(ctx, s.d.ChainID, owner, s.d.Collection.Address())
	if err != nil {
		return nil, fmt.Errorf("couldn't list tokens of %s: %w", owner, err)
	}
	pending := make([]pendingCard, 0, len(tokens))
	for _, t := range tokens {
		if t.Address != "" && !strings.EqualFold(t.Address, s.d.Collection.Address()) {
			continue
		}
		id, err := common.StringToBigInt(t.TokenID)
		if err != nil {
			s.d.Logger.Warn("skipping token with invalid id", zap.String("token", t.TokenID))
			continue
		}
		pending = append(pending, pendingCard{id: id, uri: t.TokenURI})
	}
	return s.resolveAll(ctx, pending, false)
}

// Staked lists the tokens owner has staked, in the order the staking
// contract reports them.
func (s *Service) Staked(ctx context.Context, owner string) ([]Card, error) {
	if owner == "" {
		return nil, ErrNoOwner
	}
	info, err := s.d.Staking.GetStakeInfo(owner)
	if err != nil {
		return nil, err
	}
	pending := make([]pendingCard, 0, len(info.Staked))
	for _, id := range info.Staked {
		pending = append(pending, pendingCard{id: id})
	}
	return s.resolveAll(ctx, pending, true)
}

// Token resolves a single token. Unlike Owned and Staked every failure is
// returned to the caller.
func (s *Service) Token(ctx context.Context, id *big.Int) (Card, error) {
	uri, err := s.d.Collection.TokenURI(id)
	if err != nil {
		return Card{}, err
	}
	return s.TokenWithURI(ctx, id, uri)
}

func (s *Service) TokenWithURI(ctx context.Context, id *big.Int, uri string) (Card, error) {
	rec, err := s.d.Resolver.Resolve(ctx, metadata.NewTokenReference(id, uri))
	if err != nil {
		return Card{}, err
	}
	return Card{TokenID: id, TokenURI: uri, Metadata: rec}, nil
}

// Rewards reads the claimable rewards and reward token balance of owner.
// The reward rate and native balance are informational, failures reading
// them are logged and leave the fields nil.
func (s *Service) Rewards(ctx context.Context, owner string) (Rewards, error) {
	if owner == "" {
		return Rewards{}, ErrNoOwner
	}
	result := Rewards{NativeSymbol: s.d.NativeSymbol, NativeDecimal: s.NativeDecimal()}
	err, _ := common.RunParallel(
		func() error {
			info, err := s.d.Staking.GetStakeInfo(owner)
			if err != nil {
				return err
			}
			result.Claimable = info.Rewards
			return nil
		},
		func() error {
			balance, err := s.d.Token.Balance(owner)
			if err != nil {
				return fmt.Errorf("couldn't read reward token balance: %w", err)
			}
			result.Balance = balance
			return nil
		},
		func() error {
			decimals, err := s.d.Token.Decimals()
			if err != nil {
				return fmt.Errorf("couldn't read reward token decimals: %w", err)
			}
			result.Decimals = decimals
			return nil
		},
		func() error {
			symbol, err := s.d.Token.Symbol()
			if err != nil {
				return fmt.Errorf("couldn't read reward token symbol: %w", err)
			}
			result.Symbol = symbol
			return nil
		},
		func() error {
			rate, err := s.d.Staking.RewardsPerUnitTime()
			if err != nil {
				s.d.Logger.Info("reward rate unavailable", zap.Error(err))
				return nil
			}
			unit, err := s.d.Staking.TimeUnit()
			if err != nil {
				s.d.Logger.Info("reward time unit unavailable", zap.Error(err))
				return nil
			}
			result.RewardsPerUnitTime, result.TimeUnit = rate, unit
			return nil
		},
		func() error {
			if s.d.Native == nil {
				return nil
			}
			balance, err := s.d.Native.GetBalance(owner)
			if err != nil {
				s.d.Logger.Info("native balance unavailable", zap.Error(err))
				return nil
			}
			result.NativeBalance = balance
			return nil
		},
	)
	if err != nil {
		return Rewards{}, err
	}
	return result, ctx.Err()
}
