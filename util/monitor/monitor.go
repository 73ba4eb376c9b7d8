package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/core/types"

	"github.com/tranvictor/nftstake/common"
)

const (
	DefaultInterval    = 5 * time.Second
	DefaultLostTimeout = 3 * time.Minute
)

// TxReader is the part of reader.Reader the monitor polls.
type TxReader interface {
	TxInfoFromHash(tx string) (common.TxInfo, error)
	HeaderByNumber(number int64) (*types.Header, error)
}

type TxMonitor struct {
	reader      TxReader
	interval    time.Duration
	lostTimeout time.Duration
}

func NewGenericTxMonitor(r TxReader) *TxMonitor {
	return &TxMonitor{
		reader:      r,
		interval:    DefaultInterval,
		lostTimeout: DefaultLostTimeout,
	}
}

// WithTimings overrides the polling interval and how long a tx may stay
// unknown to every node before it is reported lost.
func (self *TxMonitor) WithTimings(interval, lostTimeout time.Duration) *TxMonitor {
	self.interval = interval
	self.lostTimeout = lostTimeout
	return self
}

func (self *TxMonitor) final(status string, txinfo common.TxInfo) common.TxInfo {
	result := common.TxInfo{Status: status, Tx: txinfo.Tx, Receipt: txinfo.Receipt}
	if txinfo.Receipt != nil && txinfo.Receipt.BlockNumber != nil {
		result.BlockHeader, _ = self.reader.HeaderByNumber(txinfo.Receipt.BlockNumber.Int64())
	}
	return result
}

func (self *TxMonitor) periodicCheck(ctx context.Context, tx string, info chan<- common.TxInfo) {
	defer close(info)
	ticker := time.NewTicker(self.interval)
	defer ticker.Stop()
	startTime := time.Now()
	isOnNode := false
	for {
		var t time.Time
		select {
		case <-ctx.Done():
			return
		case t = <-ticker.C:
		}
		txinfo, _ := self.reader.TxInfoFromHash(tx)
		switch txinfo.Status {
		case common.TxStatusError:
			continue
		case common.TxStatusNotFound:
			if t.Sub(startTime) > self.lostTimeout && !isOnNode {
				info <- common.TxInfo{Status: common.TxStatusLost, Tx: txinfo.Tx}
				return
			}
			continue
		case common.TxStatusPending:
			isOnNode = true
			continue
		case common.TxStatusReverted, common.TxStatusDone:
			info <- self.final(txinfo.Status, txinfo)
			return
		}
	}
}

// MakeWaitChannel polls tx until it is mined, reverted or lost. The
// channel is closed without a value if ctx is done first.
func (self *TxMonitor) MakeWaitChannel(ctx context.Context, tx string) <-chan common.TxInfo {
	result := make(chan common.TxInfo, 1)
	go self.periodicCheck(ctx, tx, result)
	return result
}

func (self *TxMonitor) BlockingWait(ctx context.Context, tx string) (common.TxInfo, error) {
	info, ok := <-self.MakeWaitChannel(ctx, tx)
	if !ok {
		return common.TxInfo{Status: common.TxStatusPending}, ctx.Err()
	}
	return info, nil
}

// BlockingWaitForMultipleTxs waits for every tx, keyed by hash. Txs
// still unsettled when ctx is done are left out.
func (self *TxMonitor) BlockingWaitForMultipleTxs(ctx context.Context, txs ...string) map[string]common.TxInfo {
	var mu sync.Mutex
	wg := sync.WaitGroup{}
	result := map[string]common.TxInfo{}
	for _, tx := range txs {
		wg.Add(1)
		go func(tx string) {
			defer wg.Done()
			info, err := self.BlockingWait(ctx, tx)
			if err != nil {
				return
			}
			mu.Lock()
			result[tx] = info
			mu.Unlock()
		}(tx)
	}
	wg.Wait()
	return result
}
