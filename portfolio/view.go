package portfolio

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/metadata"
)

const (
	sectionOwned   = "owned"
	sectionStaked  = "staked"
	sectionRewards = "rewards"
)

type Snapshot struct {
	Owner     string    `json:"owner"`
	Owned     []Card    `json:"owned"`
	Staked    []Card    `json:"staked"`
	Rewards   *Rewards  `json:"rewards,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// View keeps the latest dashboard for whichever address it was last
// refreshed with. Each section is loaded concurrently and published only
// if no newer Refresh has started since, so a slow response for an old
// address never overwrites a newer one.
type View struct {
	svc     *Service
	tracker *metadata.Tracker

	mu       sync.RWMutex
	snapshot Snapshot
}

func NewView(svc *Service) *View {
	return &View{
		svc:     svc,
		tracker: metadata.NewTracker(),
	}
}

func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s := v.snapshot
	s.Owned = cloneCards(v.snapshot.Owned)
	s.Staked = cloneCards(v.snapshot.Staked)
	if v.snapshot.Rewards != nil {
		r := *v.snapshot.Rewards
		s.Rewards = &r
	}
	return s
}

func cloneCards(cards []Card) []Card {
	if cards == nil {
		return nil
	}
	out := make([]Card, len(cards))
	for i, c := range cards {
		out[i] = c
		out[i].Metadata = c.Metadata.Clone()
	}
	return out
}

func (v *View) clear() {
	for _, section := range []string{sectionOwned, sectionStaked, sectionRewards} {
		v.tracker.Forget(section)
	}
	v.mu.Lock()
	v.snapshot = Snapshot{}
	v.mu.Unlock()
}

func (v *View) publish(ticket metadata.Ticket, owner string, set func(*Snapshot)) bool {
	return v.tracker.Commit(ticket, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		if v.snapshot.Owner != owner {
			v.snapshot = Snapshot{Owner: owner}
		}
		set(&v.snapshot)
		v.snapshot.UpdatedAt = time.Now()
	})
}

// Refresh reloads every section for owner. An empty owner clears the
// view and returns ErrNoOwner. If a newer Refresh started before this one
// finished, whatever it didn't get to publish is dropped and ErrSuperseded
// is returned.
func (v *View) Refresh(ctx context.Context, owner string) error {
	if owner == "" {
		v.clear()
		return ErrNoOwner
	}
	owned := v.tracker.Begin(sectionOwned)
	staked := v.tracker.Begin(sectionStaked)
	rewards := v.tracker.Begin(sectionRewards)

	var smu sync.Mutex
	superseded := false
	markSuperseded := func(published bool) {
		if !published {
			smu.Lock()
			superseded = true
			smu.Unlock()
		}
	}

	err, _ := common.RunParallel(
		func() error {
			cards, err := v.svc.Owned(ctx, owner)
			if err != nil {
				return err
			}
			markSuperseded(v.publish(owned, owner, func(s *Snapshot) { s.Owned = cards }))
			return nil
		},
		func() error {
			cards, err := v.svc.Staked(ctx, owner)
			if err != nil {
				return err
			}
			markSuperseded(v.publish(staked, owner, func(s *Snapshot) { s.Staked = cards }))
			return nil
		},
		func() error {
			r, err := v.svc.Rewards(ctx, owner)
			if err != nil {
				return err
			}
			markSuperseded(v.publish(rewards, owner, func(s *Snapshot) { s.Rewards = &r }))
			return nil
		},
	)
	if err != nil {
		return err
	}
	if superseded {
		return ErrSuperseded
	}
	return nil
}

// IsSuperseded reports whether err only means a newer refresh won.
func IsSuperseded(err error) bool {
	return errors.Is(err, ErrSuperseded)
}
