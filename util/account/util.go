package account

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

func AddressFromPrivateKey(key *ecdsa.PrivateKey) string {
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func PrivateKeyFromKeystore(file string, password string) (string, *ecdsa.PrivateKey, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return "", nil, err
	}
	key, err := keystore.DecryptKey(content, password)
	if err != nil {
		return "", nil, fmt.Errorf("couldn't decrypt %s: %w", file, err)
	}
	pubhex := AddressFromPrivateKey(key.PrivateKey)
	return pubhex, key.PrivateKey, nil
}

// works with both 0x prefix form and naked form
func PrivateKeyFromHex(hex string) (string, *ecdsa.PrivateKey, error) {
	hex = strings.TrimPrefix(strings.TrimSpace(hex), "0x")
	privkey, err := crypto.HexToECDSA(hex)
	if err != nil {
		return "", nil, err
	}
	return AddressFromPrivateKey(privkey), privkey, nil
}

// IsKeystore reports whether content looks like a keystore json rather
// than a hex private key.
func IsKeystore(content []byte) bool {
	return bytes.HasPrefix(bytes.TrimSpace(content), []byte("{"))
}

// KeystoreAddress reads the address a keystore file declares without
// decrypting it.
func KeystoreAddress(content []byte) (string, error) {
	var ks struct {
		Address string `json:"address"`
	}
	if err := json.Unmarshal(content, &ks); err != nil {
		return "", fmt.Errorf("couldn't parse keystore: %w", err)
	}
	if !common.IsHexAddress(ks.Address) {
		return "", fmt.Errorf("keystore has no valid address")
	}
	return common.HexToAddress(ks.Address).Hex(), nil
}
