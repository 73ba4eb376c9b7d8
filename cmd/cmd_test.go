package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/nftstake/config"
	"github.com/tranvictor/nftstake/metadata"
	"github.com/tranvictor/nftstake/networks"
	"github.com/tranvictor/nftstake/tx"
	"github.com/tranvictor/nftstake/ui"
)

const (
	testKey   = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	testOwner = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
)

func run(u *ui.RecordingUI, args ...string) error {
	root := NewRootCmd(u)
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func interpreted(u *ui.RecordingUI) []string {
	out := []string{}
	for _, e := range u.Entries() {
		if e.Method == "Interpret" {
			out = append(out, e.Value)
		}
	}
	return out
}

func keyFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key")
	require.NoError(t, os.WriteFile(path, []byte(testKey+"\n"), 0600))
	return path
}

func TestVersion(t *testing.T) {
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "version"))
	assert.Equal(t, []string{"Version: " + VERSION}, u.InfoMessages())
}

func TestUnknownNetwork(t *testing.T) {
	u := ui.NewRecordingUI()
	err := run(u, "version", "--network", "avalanch")
	assert.True(t, errors.Is(err, networks.ErrNetworkNotFound))
}

func TestOwnedWithoutWallet(t *testing.T) {
	b := useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "owned"))
	assert.True(t, u.HasMessage("no wallet connected"))
	assert.Zero(t, b.calls)
}

func TestOwnedRejectsInvalidAddress(t *testing.T) {
	useBackend(t)
	u := ui.NewRecordingUI()
	assert.Error(t, run(u, "owned", "not-an-address"))
}

func TestOwnedListsResolvableCards(t *testing.T) {
	b := useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "owned", testOwner))

	assert.Equal(t, []string{
		fmt.Sprintf("1 | Ghost #1 | no | %s/ipfs/cid/1.png", b.gateway.URL),
	}, u.TableRows())
	assert.Equal(t, "avalanche", b.app.Network.GetName())
	assert.Empty(t, interpreted(u))
}

func TestOwnedAcceptsExplorerLink(t *testing.T) {
	b := useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "owned", "https://snowtrace.io/address/"+strings.ToLower(testOwner)))
	assert.Len(t, u.TableRows(), 1)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, []string{testOwner}, interpreted(u))
}

func TestStakedUsesFromWallet(t *testing.T) {
	b := useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "staked", "--from", keyFile(t)))

	assert.Equal(t, []string{
		fmt.Sprintf("2 | Ghost #2 | yes | %s/ipfs/cid/2.png", b.gateway.URL),
	}, u.TableRows())
}

func TestStakedAcceptsBareAddressAsFrom(t *testing.T) {
	useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "staked", "-f", testOwner))
	assert.Len(t, u.TableRows(), 1)
}

func TestRewardsJSON(t *testing.T) {
	useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "rewards", testOwner, "--json"))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(u.Output()), &got))
	assert.Equal(t, float64(150), got["claimable"])
	assert.Equal(t, float64(2500), got["balance"])
	assert.Equal(t, "AURA", got["symbol"])
	assert.Empty(t, u.TableRows())
}

func TestRewardsTable(t *testing.T) {
	useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "rewards", testOwner))
	assert.True(t, u.HasMessage("Claimable: 1.5 AURA"))
	assert.True(t, u.HasMessage("Balance: 25 AURA"))
	assert.True(t, u.HasMessage("Rate: 1 AURA per 1h0m0s"))
}

func TestMetadataWithRawURI(t *testing.T) {
	b := useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "metadata", "5", "--uri", "ipfs://cid/5.json"))

	assert.True(t, u.HasMessage("Token #5"))
	assert.True(t, u.HasMessage("Name: Ghost #5"))
	assert.True(t, u.HasMessage(fmt.Sprintf("Image: %s/ipfs/cid/5.png", b.gateway.URL)))
}

func TestMetadataFromCollection(t *testing.T) {
	useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "metadata", "0x1", "--json"))

	var card struct {
		TokenID  *big.Int        `json:"token_id"`
		TokenURI string          `json:"token_uri"`
		Metadata metadata.Record `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal([]byte(u.Output()), &card))
	assert.Equal(t, "1", card.TokenID.String())
	assert.Equal(t, "ipfs://cid/1.json", card.TokenURI)
	assert.Equal(t, "Ghost #1", card.Metadata.Name())
	assert.Equal(t, "1", card.Metadata.ID())
}

func TestMetadataUnresolvable(t *testing.T) {
	useBackend(t)
	u := ui.NewRecordingUI()
	err := run(u, "metadata", "9")
	assert.True(t, errors.Is(err, metadata.ErrAllGatewaysExhausted))
}

func TestDashboard(t *testing.T) {
	b := useBackend(t)
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "dashboard", testOwner))

	assert.True(t, u.HasMessage("Wallet: "+testOwner))
	assert.True(t, u.HasMessage("Network: avalanche"))
	assert.True(t, u.HasMessage("Claimable: 1.5 AURA"))
	assert.Len(t, u.TableRows(), 2)
	groups := u.TableGroups()
	require.Len(t, groups, 2)
	assert.Equal(t, []string{fmt.Sprintf("1 | Ghost #1 | no | %s/ipfs/cid/1.png", b.gateway.URL)}, groups[0])
	assert.Equal(t, []string{fmt.Sprintf("2 | Ghost #2 | yes | %s/ipfs/cid/2.png", b.gateway.URL)}, groups[1])
}

func TestDashboardRejectsBadWatch(t *testing.T) {
	b := useBackend(t)
	u := ui.NewRecordingUI()
	assert.Error(t, run(u, "dashboard", testOwner, "--watch", "soon"))
	assert.Zero(t, b.calls)
}

func TestDeploymentFilePicksNetwork(t *testing.T) {
	b := useBackend(t)
	path := filepath.Join(t.TempDir(), "deployment.yaml")
	require.NoError(t, os.WriteFile(path, []byte("network: fuji\n"), 0644))

	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "owned", testOwner, "--config", path))
	assert.Equal(t, "fuji", b.app.Network.GetName())

	// an explicit flag wins over the file
	u = ui.NewRecordingUI()
	require.NoError(t, run(u, "owned", testOwner, "-c", path, "-k", "avalanche"))
	assert.Equal(t, "avalanche", b.app.Network.GetName())
}

func TestStakeDryRun(t *testing.T) {
	actions := &fakeActions{stakeResults: []tx.Result{
		{Label: tx.LabelApprove, Hash: "0x01"},
	}}
	signer := useActions(t, actions)

	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "stake", "1", "0x2", "--from", keyFile(t), "--dry"))

	assert.Equal(t, testOwner, *signer)
	assert.Equal(t, []string{"2 tokens: 1, 2"}, interpreted(u))
	require.Len(t, actions.ids, 2)
	assert.Equal(t, "1", actions.ids[0].String())
	assert.Equal(t, "2", actions.ids[1].String())
	assert.Equal(t, []string{"approve | 0x01 | signed, not broadcasted"}, u.TableRows())
}

func TestStakeNeedsWallet(t *testing.T) {
	useActions(t, &fakeActions{})
	u := ui.NewRecordingUI()
	assert.Error(t, run(u, "stake", "1"))
	assert.Error(t, run(ui.NewRecordingUI(), "stake", "1", "--from", testOwner))
}

func TestStakeRejectsBadIDs(t *testing.T) {
	useActions(t, &fakeActions{})
	u := ui.NewRecordingUI()
	assert.Error(t, run(u, "stake", "abc", "--from", keyFile(t)))
}

func TestClaimAborted(t *testing.T) {
	useActions(t, &fakeActions{
		result: tx.Result{Label: tx.LabelClaim},
		err:    fmt.Errorf("%s: %w", tx.LabelClaim, tx.ErrAborted),
	})
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "claim", "--from", keyFile(t)))
	assert.True(t, u.HasMessage("Aborted."))
	assert.Empty(t, u.TableRows())
}

func TestClaimNothing(t *testing.T) {
	useActions(t, &fakeActions{
		result: tx.Result{Label: tx.LabelClaim},
		err:    tx.ErrNothingToClaim,
	})
	u := ui.NewRecordingUI()
	err := run(u, "claim", "-f", keyFile(t), "-y")
	assert.True(t, errors.Is(err, tx.ErrNothingToClaim))
}

func TestWithdrawBroadcastFailure(t *testing.T) {
	boom := errors.New("boom")
	actions := &fakeActions{
		result: tx.Result{Label: tx.LabelWithdraw, Hash: "0x02", BroadcastErr: boom},
		err:    fmt.Errorf("withdraw: %w", boom),
	}
	useActions(t, actions)

	u := ui.NewRecordingUI()
	err := run(u, "unstake", "2", "--from", keyFile(t))
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []string{"withdraw | 0x02 | error"}, u.TableRows())
	assert.Equal(t, []string{"withdraw: boom"}, u.ErrorMessages())
}

func TestNetworkList(t *testing.T) {
	t.Setenv("AVALANCHE_MAINNET_NODE", "")
	t.Setenv("AVALANCHE_FUJI_NODE", "")
	u := ui.NewRecordingUI()
	require.NoError(t, run(u, "network", "list"))
	assert.Contains(t, u.TableRows(), "avalanche | 43114 | AVAX | avalanche")
	assert.Contains(t, u.TableRows(), "fuji | 43113 | AVAX | fuji")
}

func TestReadNetworkConfig(t *testing.T) {
	n, err := readNetworkConfig(`{"name":"local","chain_id":31337,"default_nodes":{"anvil":"http://127.0.0.1:8545"}}`)
	require.NoError(t, err)
	assert.Equal(t, uint64(31337), n.GetChainID())
	assert.Equal(t, uint64(18), n.GetNativeTokenDecimal())

	_, err = readNetworkConfig(`{"name":"local"}`)
	assert.Error(t, err)

	_, err = readNetworkConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestNetworkConflicts(t *testing.T) {
	u := ui.NewRecordingUI()
	local, err := readNetworkConfig(`{"name":"local","chain_id":31337,"default_nodes":{"anvil":"http://127.0.0.1:8545"}}`)
	require.NoError(t, err)
	assert.NoError(t, checkNetworkConflicts(u, local, false))

	sameChain, err := readNetworkConfig(`{"name":"myfuji","chain_id":43113,"default_nodes":{"n":"http://127.0.0.1:9650"}}`)
	require.NoError(t, err)
	assert.ErrorContains(t, checkNetworkConflicts(u, sameChain, false), "chain id 43113 already belongs to network fuji")
	require.NoError(t, checkNetworkConflicts(u, sameChain, true))
	assert.True(t, u.HasMessage("It will be replaced"))

	sameName, err := readNetworkConfig(`{"name":"avalanche","chain_id":43114,"default_nodes":{"n":"http://127.0.0.1:9650"}}`)
	require.NoError(t, err)
	assert.ErrorContains(t, checkNetworkConflicts(u, sameName, false), "avalanche already exists")
}

func TestFromAddress(t *testing.T) {
	addr, err := fromAddress("")
	require.NoError(t, err)
	assert.Empty(t, addr)

	addr, err = fromAddress("0x2c7536e3605d9c16a7a3d7b1898e529396a65c23")
	require.NoError(t, err)
	assert.Equal(t, testOwner, addr)

	addr, err = fromAddress(keyFile(t))
	require.NoError(t, err)
	assert.Equal(t, testOwner, addr)

	garbage := filepath.Join(t.TempDir(), "garbage")
	require.NoError(t, os.WriteFile(garbage, []byte("hello"), 0600))
	_, err = fromAddress(garbage)
	assert.Error(t, err)
}

func TestGatewayClientTimeout(t *testing.T) {
	d := config.DefaultDeployment().Metadata
	assert.Equal(t, config.DefaultGatewayTimeout, gatewayClient(d).Timeout)

	d.Timeout = config.Duration{}
	assert.Zero(t, gatewayClient(d).Timeout)
}
