package cmd

import (
	"context"
	"fmt"
	"math/big"
	"net/http"

	"github.com/tranvictor/nftstake/config"
	"github.com/tranvictor/nftstake/contracts"
	"github.com/tranvictor/nftstake/metadata"
	"github.com/tranvictor/nftstake/portfolio"
	"github.com/tranvictor/nftstake/tx"
	"github.com/tranvictor/nftstake/util"
	"github.com/tranvictor/nftstake/util/account"
	"github.com/tranvictor/nftstake/util/explorers"
)

// StakingActions is satisfied by *tx.StakingActions.
type StakingActions interface {
	Stake(ctx context.Context, ids []*big.Int) ([]tx.Result, error)
	Withdraw(ctx context.Context, ids []*big.Int) (tx.Result, error)
	Claim(ctx context.Context) (tx.Result, error)
}

// Builders the commands go through. Tests swap them for ones wired to
// fakes.
var (
	newPortfolio      = buildPortfolio
	newStakingActions = buildStakingActions
)

// gatewayClient bounds each gateway GET by the deployment's timeout. A
// zero timeout leaves the client unbounded.
func gatewayClient(d config.Metadata) *http.Client {
	return &http.Client{Timeout: d.Timeout.Duration}
}

func buildResolver(app AppContext, observer metadata.Observer) *metadata.Resolver {
	d := app.Deployment.Metadata
	opts := []metadata.Option{
		metadata.WithGateways(d.Gateways...),
		metadata.WithHTTPClient(gatewayClient(d)),
		metadata.WithLogger(app.Logger.Named("metadata")),
		metadata.WithDirectHTTP(d.DirectHTTP),
	}
	if observer != nil {
		opts = append(opts, metadata.WithObserver(observer))
	}
	return metadata.NewResolver(opts...)
}

func buildIndexer(app AppContext) (*explorers.Glacier, error) {
	d := app.Deployment.Indexer
	url := d.URL
	if url == "" {
		url = app.Network.GetIndexerURL()
	}
	if url == "" {
		return nil, fmt.Errorf(
			"network %s has no indexer, set indexer.url in the deployment config",
			app.Network.GetName(),
		)
	}
	return explorers.NewGlacier(
		explorers.WithGlacierURL(url),
		explorers.WithGlacierHTTPClient(&http.Client{Timeout: d.Timeout.Duration}),
		explorers.WithGlacierAPIKey(d.APIKey),
		explorers.WithGlacierPageSize(d.PageSize),
		explorers.WithGlacierRateLimit(d.RateLimit, 1),
		explorers.WithGlacierLogger(app.Logger.Named("glacier")),
	), nil
}

func buildPortfolio(app AppContext, observer metadata.Observer) (*portfolio.Service, error) {
	r, err := util.EthReader(app.Network)
	if err != nil {
		return nil, err
	}
	indexer, err := buildIndexer(app)
	if err != nil {
		return nil, err
	}
	c := app.Deployment.Contracts
	return portfolio.NewService(portfolio.Deps{
		ChainID:       app.Network.GetChainID(),
		Collection:    contracts.NewERC721(c.Collection, r),
		Staking:       contracts.NewStakingContract(c.Staking, r),
		Token:         contracts.NewERC20(c.RewardToken, r),
		Indexer:       indexer,
		Resolver:      buildResolver(app, observer),
		Native:        r,
		NativeSymbol:  app.Network.GetNativeTokenSymbol(),
		NativeDecimal: app.Network.GetNativeTokenDecimal(),
		Logger:        app.Logger.Named("portfolio"),
		Concurrency:   app.Deployment.Concurrency,
	}), nil
}

func txSettings() tx.Settings {
	return tx.Settings{
		GasPrice:      config.GasPrice,
		TipGas:        config.TipGas,
		ExtraGasPrice: config.ExtraGasPrice,
		ExtraTipGas:   config.ExtraTipGas,
		GasLimit:      config.GasLimit,
		ExtraGasLimit: config.ExtraGasLimit,
		Nonce:         config.Nonce,
		ForceLegacy:   config.ForceLegacy,
		DryRun:        config.DontBroadcast,
		NoWait:        config.DontWaitToBeMined,
	}
}

func buildStakingActions(app AppContext, acc *account.Account) (StakingActions, error) {
	r, err := util.EthReader(app.Network)
	if err != nil {
		return nil, err
	}
	b, err := util.EthBroadcaster(app.Network, app.Logger.Named("broadcaster"))
	if err != nil {
		return nil, err
	}
	m, err := util.EthTxMonitor(app.Network)
	if err != nil {
		return nil, err
	}
	sender := tx.NewSender(tx.SenderDeps{
		ChainID:     app.Network.GetChainID(),
		Reader:      r,
		Broadcaster: b,
		Waiter:      m,
		Signer:      acc,
		Settings:    txSettings(),
		Confirm:     util.TxConfirmer(app.UI, acc.AddressHex(), app.Network, config.Yes),
		Logger:      app.Logger.Named("tx"),
	})
	c := app.Deployment.Contracts
	return tx.NewStakingActions(
		sender,
		contracts.NewERC721(c.Collection, r),
		contracts.NewStakingContract(c.Staking, r),
		app.Logger.Named("staking"),
	), nil
}
