package broadcaster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"

	"github.com/tranvictor/nftstake/common"
)

const TIMEOUT = 4 * time.Second

// Broadcaster takes a signed tx and try to broadcast it to all
// nodes that it manages as fast as possible. It returns the tx hash,
// a bool indicating that the tx is broadcasted to at least 1 node and
// the failures of the nodes that rejected it.
type Broadcaster struct {
	clients map[string]*rpc.Client
	logger  *zap.Logger
}

func (b *Broadcaster) GetNodes() map[string]*rpc.Client {
	return b.clients
}

func (b *Broadcaster) broadcast(
	ctx context.Context,
	client *rpc.Client, data string,
) error {
	return client.CallContext(ctx, nil, "eth_sendRawTransaction", data)
}

func (b *Broadcaster) BroadcastTx(ctx context.Context, tx *types.Transaction) (string, bool, error) {
	data, err := tx.MarshalBinary()
	if err != nil {
		return "", false, fmt.Errorf("tx is not valid, couldn't use rlp to encode it: %w", err)
	}
	return b.Broadcast(ctx, hexutil.Encode(data))
}

// data must be hex encoded of the signed tx
func (b *Broadcaster) Broadcast(ctx context.Context, data string) (string, bool, error) {
	hash := common.RawTxToHash(data)
	if len(b.clients) == 0 {
		return hash, false, fmt.Errorf("no node to broadcast to")
	}

	timeout, cancel := context.WithTimeout(ctx, TIMEOUT)
	defer cancel()

	var mu sync.Mutex
	failures := map[string]error{}
	parallelTasks := []func() error{}
	for name := range b.clients {
		cli := b.clients[name]
		parallelTasks = append(parallelTasks, func() error {
			err := b.broadcast(timeout, cli, data)
			if err != nil {
				mu.Lock()
				failures[name] = err
				mu.Unlock()
				b.logger.Debug("node rejected tx", zap.String("node", name), zap.String("tx", hash), zap.Error(err))
			}
			return err
		})
	}
	_, numErrs := common.RunParallel(parallelTasks...)
	if numErrs == len(b.clients) {
		return hash, false, makeError(failures)
	}
	return hash, true, makeError(failures)
}

func NewGenericBroadcaster(nodes map[string]string, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	clients := map[string]*rpc.Client{}
	for name, c := range nodes {
		client, err := rpc.Dial(c)
		if err != nil {
			logger.Warn("couldn't connect to node", zap.String("node", name), zap.String("url", c), zap.Error(err))
		} else {
			clients[name] = client
		}
	}
	return &Broadcaster{
		clients: clients,
		logger:  logger,
	}
}
