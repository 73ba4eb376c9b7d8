package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tranvictor/nftstake/common"
	"github.com/tranvictor/nftstake/config"
	"github.com/tranvictor/nftstake/portfolio"
	"github.com/tranvictor/nftstake/ui"
	"github.com/tranvictor/nftstake/util"
)

func writeJSON(u ui.UI, v interface{}) error {
	enc := json.NewEncoder(u.Writer())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readOwner resolves the wallet a read command shows. ok is false when
// no wallet is connected, which is not an error.
func readOwner(u ui.UI, args []string) (owner string, ok bool, err error) {
	owner, err = ownerFromArgs(u, args)
	if err != nil {
		return "", false, err
	}
	if owner == "" {
		u.Warn("No wallet connected. Pass an address or --from to see its tokens.")
		return "", false, nil
	}
	return owner, true, nil
}

func newMetadataCmd(u ui.UI) *cobra.Command {
	c := &cobra.Command{
		Use:   "metadata <token-id>",
		Short: "Resolve and show the metadata of a token",
		Long: `Reads the token URI from the collection (or takes it from --uri) and
fetches its metadata document through the configured IPFS gateways.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppContextFrom(cmd)
			if err != nil {
				return err
			}
			ids, err := common.ParseTokenIDs(args)
			if err != nil {
				return err
			}
			svc, err := newPortfolio(app, nil)
			if err != nil {
				return err
			}

			stop := u.Spinner(fmt.Sprintf("Resolving metadata of token %s...", ids[0]))
			var card portfolio.Card
			if config.RawURI != "" {
				card, err = svc.TokenWithURI(cmd.Context(), ids[0], config.RawURI)
			} else {
				card, err = svc.Token(cmd.Context(), ids[0])
			}
			stop()
			if err != nil {
				return err
			}

			if config.JSONOutput {
				return writeJSON(u, card)
			}
			util.DisplayCard(u, card)
			return nil
		},
	}
	c.Flags().StringVar(&config.RawURI, "uri", "", "resolve this token uri instead of reading it from the collection")
	return c
}

type cardsLoader func(svc *portfolio.Service, ctx context.Context, owner string) ([]portfolio.Card, error)

func newCardsCmd(u ui.UI, use, short, title string, load cardsLoader) *cobra.Command {
	c := &cobra.Command{
		Use:   use + " [address]",
		Short: short,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppContextFrom(cmd)
			if err != nil {
				return err
			}
			owner, ok, err := readOwner(u, args)
			if err != nil || !ok {
				return err
			}
			svc, err := newPortfolio(app, nil)
			if err != nil {
				return err
			}

			stop := u.Spinner(fmt.Sprintf("Loading %s tokens of %s...", use, owner))
			cards, err := load(svc, cmd.Context(), owner)
			stop()
			if err != nil {
				return err
			}

			if config.JSONOutput {
				return writeJSON(u, cards)
			}
			util.DisplayCards(u, title, cards)
			return nil
		},
	}
	addFromFlag(c)
	return c
}

func newOwnedCmd(u ui.UI) *cobra.Command {
	return newCardsCmd(u, "owned", "Show the collection tokens a wallet holds", "Owned",
		(*portfolio.Service).Owned)
}

func newStakedCmd(u ui.UI) *cobra.Command {
	return newCardsCmd(u, "staked", "Show the tokens a wallet has staked", "Staked",
		(*portfolio.Service).Staked)
}

func newRewardsCmd(u ui.UI) *cobra.Command {
	c := &cobra.Command{
		Use:   "rewards [address]",
		Short: "Show the claimable rewards and reward token balance of a wallet",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppContextFrom(cmd)
			if err != nil {
				return err
			}
			owner, ok, err := readOwner(u, args)
			if err != nil || !ok {
				return err
			}
			svc, err := newPortfolio(app, nil)
			if err != nil {
				return err
			}

			rewards, err := svc.Rewards(cmd.Context(), owner)
			if err != nil {
				return err
			}
			if config.JSONOutput {
				return writeJSON(u, rewards)
			}
			util.DisplayRewards(u, rewards)
			return nil
		},
	}
	addFromFlag(c)
	return c
}

func showDashboard(u ui.UI, app AppContext, view *portfolio.View) error {
	snap := view.Snapshot()
	if config.JSONOutput {
		return writeJSON(u, snap)
	}
	util.DisplayDashboard(u, snap, app.Network)
	return nil
}

func newDashboardCmd(u ui.UI) *cobra.Command {
	c := &cobra.Command{
		Use:   "dashboard [address]",
		Short: "Show owned tokens, staked tokens and rewards of a wallet in one go",
		Long: `Loads the three sections concurrently. With --watch the dashboard is
reloaded on every interval until interrupted.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := AppContextFrom(cmd)
			if err != nil {
				return err
			}
			var interval time.Duration
			if config.WatchInterval != "" {
				interval, err = time.ParseDuration(config.WatchInterval)
				if err != nil || interval <= 0 {
					return fmt.Errorf("--watch %q is not a positive duration", config.WatchInterval)
				}
			}
			owner, ok, err := readOwner(u, args)
			if err != nil || !ok {
				return err
			}
			svc, err := newPortfolio(app, nil)
			if err != nil {
				return err
			}
			view := portfolio.NewView(svc)
			ctx := cmd.Context()

			refresh := func() error {
				stop := u.Spinner("Loading dashboard...")
				err := view.Refresh(ctx, owner)
				stop()
				if err != nil && !portfolio.IsSuperseded(err) {
					return err
				}
				return showDashboard(u, app, view)
			}

			if interval == 0 {
				return refresh()
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				if err := refresh(); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					u.Error("Refreshing dashboard failed: %s", err)
				}
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
				}
			}
		},
	}
	addFromFlag(c)
	c.Flags().StringVar(&config.WatchInterval, "watch", "", "reload the dashboard on this interval, e.g. 30s")
	return c
}
