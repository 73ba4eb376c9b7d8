// Copyright © 2018 Victor Tran
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tranvictor/nftstake/config"
	"github.com/tranvictor/nftstake/networks"
	"github.com/tranvictor/nftstake/ui"
	"github.com/tranvictor/nftstake/util/logging"
)

const longDescription = `nftstake is a command line companion for an NFT staking dApp. It lists
the NFTs a wallet holds, the NFTs it has staked and the reward tokens it has
accrued, and it stakes, withdraws and claims on the wallet's behalf.

Token metadata is resolved from the token URI the collection returns. IPFS
URIs are fetched through a list of public gateways, one after another, until
one of them serves the document.

By default nftstake talks to the Avalanche C-Chain deployment:
	collection:   %s
	staking:      %s
	reward token: %s
Use --config to point it at another deployment (yaml or toml).

RPC nodes can be overridden per network with its node env var, e.g. %s.
The Glacier API key is read from %s and the keystore password from %s
when they are set.`

// NewRootCmd builds the whole command tree. Every command writes through u.
func NewRootCmd(u ui.UI) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nftstake",
		Short: "Browse, stake and claim rewards for your NFTs from the terminal",
		Long: fmt.Sprintf(longDescription,
			config.DefaultCollection,
			config.DefaultStaking,
			config.DefaultRewardToken,
			networks.Avalanche.GetNodeVariableName(),
			config.EnvGlacierAPIKey,
			config.EnvKeystorePassword,
		),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return preprocess(cmd, u)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&config.Network, "network", "k", "avalanche", fmt.Sprintf("network to use. Supported: %v", networks.GetSupportedNetworkNames()))
	rootCmd.PersistentFlags().StringVarP(&config.ConfigFile, "config", "c", "", "deployment config file (.yaml or .toml)")
	rootCmd.PersistentFlags().StringVar(&config.LogLevel, "log-level", "", "log level: debug, info, warn or error. Default warn, info for serve")
	rootCmd.PersistentFlags().BoolVar(&config.JSONOutput, "json", false, "print results as json")

	rootCmd.AddCommand(
		newVersionCmd(u),
		newMetadataCmd(u),
		newOwnedCmd(u),
		newStakedCmd(u),
		newRewardsCmd(u),
		newDashboardCmd(u),
		newStakeCmd(u),
		newWithdrawCmd(u),
		newClaimCmd(u),
		newServeCmd(u),
		newNetworkCmd(u),
	)
	return rootCmd
}

// preprocess loads the deployment, resolves the network and builds the
// logger every command shares.
func preprocess(cmd *cobra.Command, u ui.UI) error {
	deployment, err := config.Load(config.ConfigFile)
	if err != nil {
		return err
	}

	name := config.Network
	if !cmd.Flags().Changed("network") && deployment.Network != "" {
		name = deployment.Network
	}
	network, err := networks.GetNetwork(name)
	if err != nil {
		return err
	}

	level := config.LogLevel
	if level == "" && cmd.Name() == "serve" {
		level = "info"
	}
	logger, err := logging.New(level, config.JSONOutput)
	if err != nil {
		return err
	}

	cmd.SetContext(WithAppContext(cmd.Context(), AppContext{
		Network:    network,
		Deployment: deployment,
		Logger:     logger,
		UI:         u,
	}))
	return nil
}

// Execute runs the command line until it finishes or the process is
// interrupted. This is called by main.main().
func Execute() {
	u := ui.NewTerminalUI()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd(u).ExecuteContext(ctx); err != nil {
		u.Error("%s", err)
		stop()
		os.Exit(1)
	}
}
