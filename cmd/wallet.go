package cmd

import (
	"fmt"
	"os"
	"strings"

	gethcommon "github.com/ethereum/go-ethereum/common"

	"github.com/tranvictor/nftstake/config"
	"github.com/tranvictor/nftstake/ui"
	"github.com/tranvictor/nftstake/util"
	"github.com/tranvictor/nftstake/util/account"
)

// fromAddress returns the address of the --from wallet without unlocking
// it. from may be an address, a keystore file or a file holding a hex
// private key. An empty from means no wallet is connected.
func fromAddress(from string) (string, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return "", nil
	}
	if gethcommon.IsHexAddress(from) {
		return gethcommon.HexToAddress(from).Hex(), nil
	}
	content, err := os.ReadFile(from)
	if err != nil {
		return "", fmt.Errorf("--from is neither an address nor a readable key file: %w", err)
	}
	if account.IsKeystore(content) {
		return account.KeystoreAddress(content)
	}
	addr, _, err := account.PrivateKeyFromHex(string(content))
	if err != nil {
		return "", fmt.Errorf("%s is neither a keystore nor a hex private key", from)
	}
	return addr, nil
}

// ownerFromArgs picks the wallet a read command shows: the address
// argument when given, the --from wallet otherwise. The argument may also
// be text holding exactly one address, such as an explorer link, in which
// case the address found is echoed through u.
func ownerFromArgs(u ui.UI, args []string) (string, error) {
	if len(args) == 0 {
		return fromAddress(config.From)
	}
	if gethcommon.IsHexAddress(args[0]) {
		return gethcommon.HexToAddress(args[0]).Hex(), nil
	}
	found := util.ScanForAddresses(args[0])
	if len(found) != 1 {
		return "", fmt.Errorf("%q is not an address", args[0])
	}
	owner := gethcommon.HexToAddress(found[0]).Hex()
	u.Interpret(owner)
	return owner, nil
}

// loadAccount unlocks the --from wallet for signing, asking for the
// keystore password when it isn't set in the environment.
func loadAccount(u ui.UI, from string) (*account.Account, error) {
	from = strings.TrimSpace(from)
	if from == "" {
		return nil, fmt.Errorf("no wallet, pass a keystore or private key file with --from")
	}
	if gethcommon.IsHexAddress(from) {
		return nil, fmt.Errorf("can't sign with a bare address, pass a keystore or private key file with --from")
	}
	content, err := os.ReadFile(from)
	if err != nil {
		return nil, fmt.Errorf("couldn't read %s: %w", from, err)
	}
	if !account.IsKeystore(content) {
		return account.NewPrivateKeyAccount(string(content))
	}
	password := util.PromptPassword(u, fmt.Sprintf("Password of %s: ", from), config.EnvKeystorePassword)
	return account.NewKeystoreAccount(from, password)
}
