// Package tx builds, signs, broadcasts and waits for the transactions the
// staking flows send.
package tx

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"

	gethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/tranvictor/nftstake/common"
)

var ErrAborted = errors.New("aborted")

// ChainReader is the part of reader.Reader a Sender needs.
type ChainReader interface {
	EstimateExactGas(from, to string, priceGwei float64, value *big.Int, data []byte) (uint64, error)
	GetPendingNonce(address string) (uint64, error)
	SuggestedGasSettings() (maxGasPriceGwei, maxTipGwei float64, err error)
	CheckDynamicFeeTxAvailable() (bool, error)
}

// TxBroadcaster is satisfied by *broadcaster.Broadcaster.
type TxBroadcaster interface {
	BroadcastTx(ctx context.Context, tx *types.Transaction) (string, bool, error)
}

// Waiter is satisfied by *monitor.TxMonitor.
type Waiter interface {
	BlockingWait(ctx context.Context, tx string) (common.TxInfo, error)
}

// Signer is satisfied by *account.Account.
type Signer interface {
	Address() gethcommon.Address
	SignTx(tx *types.Transaction, chainId *big.Int) (*types.Transaction, error)
}

// ConfirmFunc is asked before a tx is signed. Returning an error aborts.
type ConfirmFunc func(label string, tx *types.Transaction) error

// Settings mirror the transactional command flags. Zero values mean
// "ask the node".
type Settings struct {
	GasPrice      float64
	TipGas        float64
	ExtraGasPrice float64
	ExtraTipGas   float64
	GasLimit      uint64
	ExtraGasLimit uint64
	Nonce         uint64
	ForceLegacy   bool
	DryRun        bool
	NoWait        bool
}

// Result describes one sent (or, in dry run, only signed) tx.
type Result struct {
	Label        string
	Tx           *types.Transaction
	Hash         string
	Broadcasted  bool
	BroadcastErr error
	Info         *common.TxInfo
}

// Mined reports whether the tx was waited for and made it into a block
// without reverting.
func (r Result) Mined() bool {
	return r.Info != nil && r.Info.Status == common.TxStatusDone
}

type SenderDeps struct {
	ChainID     uint64
	Reader      ChainReader
	Broadcaster TxBroadcaster
	Waiter      Waiter
	Signer      Signer
	Settings    Settings
	Confirm     ConfirmFunc
	Logger      *zap.Logger
}

type Sender struct {
	d SenderDeps

	mu        sync.Mutex
	nextNonce *uint64
}

func NewSender(d SenderDeps) *Sender {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	return &Sender{d: d}
}

func (s *Sender) DryRun() bool {
	return s.d.Settings.DryRun
}

func (s *Sender) From() string {
	return s.d.Signer.Address().Hex()
}

// ValidTxType returns the appropriate transaction type for the network,
// respecting Settings.ForceLegacy.
func (s *Sender) ValidTxType() (uint8, error) {
	if s.d.Settings.ForceLegacy {
		return types.LegacyTxType, nil
	}
	isDynamicFeeAvailable, err := s.d.Reader.CheckDynamicFeeTxAvailable()
	if err != nil {
		return 0, fmt.Errorf("couldn't check if the chain support dynamic fee: %w", err)
	}
	if !isDynamicFeeAvailable {
		return types.LegacyTxType, nil
	}
	return types.DynamicFeeTxType, nil
}

// nonce counts up from the flag nonce when one is set. Otherwise it takes
// the pending nonce but never reuses one this Sender already broadcasted.
func (s *Sender) nonce() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.d.Settings.Nonce != 0 {
		if s.nextNonce == nil {
			return s.d.Settings.Nonce, nil
		}
		return *s.nextNonce, nil
	}
	pending, err := s.d.Reader.GetPendingNonce(s.From())
	if err != nil {
		return 0, fmt.Errorf("couldn't get nonce of the wallet from any nodes: %w", err)
	}
	if s.nextNonce != nil && *s.nextNonce > pending {
		return *s.nextNonce, nil
	}
	return pending, nil
}

func (s *Sender) used(nonce uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := nonce + 1
	s.nextNonce = &next
}

// Build assembles an unsigned tx calling to with data.
func (s *Sender) Build(to string, data []byte) (*types.Transaction, error) {
	txType, err := s.ValidTxType()
	if err != nil {
		return nil, err
	}

	gasPrice, tipGas := s.d.Settings.GasPrice, s.d.Settings.TipGas
	if gasPrice == 0 || (tipGas == 0 && txType == types.DynamicFeeTxType) {
		suggestedPrice, suggestedTip, err := s.d.Reader.SuggestedGasSettings()
		if err != nil {
			return nil, fmt.Errorf("couldn't get gas price info from any nodes: %w", err)
		}
		if gasPrice == 0 {
			gasPrice = suggestedPrice
		}
		if tipGas == 0 {
			tipGas = suggestedTip
		}
	}
	gasPrice += s.d.Settings.ExtraGasPrice
	tipGas += s.d.Settings.ExtraTipGas
	if txType == types.DynamicFeeTxType && tipGas > gasPrice {
		tipGas = gasPrice
	}

	gasLimit := s.d.Settings.GasLimit
	if gasLimit == 0 {
		gasLimit, err = s.d.Reader.EstimateExactGas(s.From(), to, gasPrice, big.NewInt(0), data)
		if err != nil {
			return nil, fmt.Errorf("couldn't estimate gas. The tx is meant to revert or network error. Detail: %w", err)
		}
	}

	nonce, err := s.nonce()
	if err != nil {
		return nil, err
	}

	return common.BuildExactTx(
		txType,
		nonce,
		to,
		big.NewInt(0),
		gasLimit+s.d.Settings.ExtraGasLimit,
		gasPrice,
		tipGas,
		data,
		s.d.ChainID,
	), nil
}

// Send builds, confirms, signs and broadcasts a call to `to`, then waits
// for it to be mined unless NoWait is set. In dry run the signed tx is
// returned without broadcasting.
func (s *Sender) Send(ctx context.Context, label string, to string, data []byte) (Result, error) {
	return s.send(ctx, label, to, data, !s.d.Settings.NoWait)
}

// SendAndWait is Send that always waits for the tx to be mined, for txs
// later ones depend on. NoWait is ignored.
func (s *Sender) SendAndWait(ctx context.Context, label string, to string, data []byte) (Result, error) {
	return s.send(ctx, label, to, data, true)
}

func (s *Sender) send(ctx context.Context, label string, to string, data []byte, wait bool) (Result, error) {
	logger := s.d.Logger.With(zap.String("action", label), zap.String("to", to))
	tx, err := s.Build(to, data)
	if err != nil {
		return Result{Label: label}, fmt.Errorf("%s: %w", label, err)
	}

	if s.d.Confirm != nil {
		if err := s.d.Confirm(label, tx); err != nil {
			return Result{Label: label, Tx: tx}, fmt.Errorf("%s: %w", label, err)
		}
	}

	signed, err := s.d.Signer.SignTx(tx, new(big.Int).SetUint64(s.d.ChainID))
	if err != nil {
		return Result{Label: label, Tx: tx}, fmt.Errorf("%s: %w", label, err)
	}
	result := Result{Label: label, Tx: signed, Hash: signed.Hash().Hex()}

	if s.d.Settings.DryRun {
		logger.Info("dry run, tx not broadcasted", zap.String("tx", result.Hash))
		return result, nil
	}

	hash, broadcasted, berr := s.d.Broadcaster.BroadcastTx(ctx, signed)
	result.Hash, result.Broadcasted, result.BroadcastErr = hash, broadcasted, berr
	if !broadcasted {
		return result, fmt.Errorf("%s: couldn't broadcast tx %s: %w", label, hash, berr)
	}
	s.used(signed.Nonce())
	logger.Info("tx broadcasted", zap.String("tx", hash), zap.Uint64("nonce", signed.Nonce()))

	if !wait {
		return result, nil
	}
	if s.d.Waiter == nil {
		return result, fmt.Errorf("%s: no monitor to wait for tx %s", label, hash)
	}
	info, err := s.d.Waiter.BlockingWait(ctx, hash)
	if err != nil {
		return result, fmt.Errorf("%s: waiting for %s: %w", label, hash, err)
	}
	result.Info = &info
	logger.Info("tx settled", zap.String("tx", hash), zap.String("status", info.Status))
	if info.Status != common.TxStatusDone {
		return result, fmt.Errorf("%s: tx %s %s", label, hash, info.Status)
	}
	return result, nil
}
