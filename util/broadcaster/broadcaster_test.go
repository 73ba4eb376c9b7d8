package broadcaster

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tranvictor/nftstake/common"
)

type rpcRequest struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
}

// rpcNode answers eth_sendRawTransaction, rejecting it when reject is set.
func rpcNode(t *testing.T, reject bool) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "eth_sendRawTransaction", req.Method)
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID}
		if reject {
			resp["error"] = map[string]interface{}{"code": -32000, "message": "nonce too low"}
		} else {
			resp["result"] = "0x0"
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func signedTx(t *testing.T) *types.Transaction {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	tx := common.BuildExactTx(types.LegacyTxType, 0, "0x51697170F78136c8d143B0013Cf5B229aDe70757", nil, 21000, 25, 0, nil, 43114)
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(big.NewInt(43114)), key)
	require.NoError(t, err)
	return signed
}

func TestBroadcastToAtLeastOneNode(t *testing.T) {
	b := NewGenericBroadcaster(map[string]string{
		"good": rpcNode(t, false).URL,
		"bad":  rpcNode(t, true).URL,
	}, nil)
	tx := signedTx(t)

	hash, ok, err := b.BroadcastTx(context.Background(), tx)
	assert.True(t, ok)
	assert.Equal(t, tx.Hash().Hex(), hash)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad(nonce too low)")
}

func TestBroadcastRejectedEverywhere(t *testing.T) {
	b := NewGenericBroadcaster(map[string]string{"bad": rpcNode(t, true).URL}, nil)
	_, ok, err := b.BroadcastTx(context.Background(), signedTx(t))
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestBroadcastWithoutNodes(t *testing.T) {
	b := NewGenericBroadcaster(nil, nil)
	_, ok, err := b.BroadcastTx(context.Background(), signedTx(t))
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestMakeError(t *testing.T) {
	assert.NoError(t, makeError(nil))
	err := makeError(map[string]error{"b": errors.New("two"), "a": errors.New("one")})
	assert.EqualError(t, err, "a(one). b(two)")
}
