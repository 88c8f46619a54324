package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	sgo "github.com/gagliardetto/solana-go"
	sgorpc "github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/metrics"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

// Ledger is the slice of the rpc client the engine needs. *rpc.Client
// satisfies it.
type Ledger interface {
	GetLatestBlockhash(ctx context.Context, commitment sgorpc.CommitmentType) (*sgorpc.GetLatestBlockhashResult, error)
	GetSignatureStatuses(ctx context.Context, searchTransactionHistory bool, transactionSignatures ...sgo.Signature) (*sgorpc.GetSignatureStatusesResult, error)
}

const (
	DEFAULT_POLL_INTERVAL    = 500 * time.Millisecond
	DEFAULT_CONFIRM_DEADLINE = 30 * time.Second
)

type TrackerConfig struct {
	Interval   time.Duration
	Deadline   time.Duration
	Commitment sgorpc.ConfirmationStatusType
}

func (c TrackerConfig) withDefaults() TrackerConfig {
	if c.Interval <= 0 {
		c.Interval = DEFAULT_POLL_INTERVAL
	}
	if c.Deadline <= 0 {
		c.Deadline = DEFAULT_CONFIRM_DEADLINE
	}
	if c.Commitment == "" {
		c.Commitment = sgorpc.ConfirmationStatusConfirmed
	}
	return c
}

// Tracker polls the ledger until each submitted signature confirms, is
// rejected, or times out.
type Tracker struct {
	ledger Ledger
	cfg    TrackerConfig
}

func NewTracker(ledger Ledger, cfg TrackerConfig) *Tracker {
	return &Tracker{ledger: ledger, cfg: cfg.withDefaults()}
}

type sigResult struct {
	sig sgo.Signature
	err error
}

// Await resolves a race. One poller per accepted signature; the race wins
// as soon as any signature reaches the configured commitment. LastErr is
// the most recently observed failure, submission errors included.
func (t *Tracker) Await(ctx context.Context, logger *log.Entry, outcomes []swqos.Outcome) Result {
	result := Result{}
	pending := make([]sgo.Signature, 0, len(outcomes))
	seen := make(map[sgo.Signature]bool)
	for _, out := range outcomes {
		if !out.Ok() {
			result.LastErr = out.Err
			continue
		}
		if !seen[out.Signature] {
			seen[out.Signature] = true
			pending = append(pending, out.Signature)
			result.Signatures = append(result.Signatures, out.Signature)
		}
	}
	if len(pending) == 0 {
		return result
	}

	resultC := make(chan sigResult, len(pending))
	var wg conc.WaitGroup
	for _, sig := range pending {
		sig := sig
		wg.Go(func() {
			resultC <- sigResult{sig: sig, err: t.awaitSignature(ctx, sig)}
		})
	}
	wg.Wait()
	close(resultC)

	for r := range resultC {
		if r.err == nil {
			result.Success = true
			metrics.RecordConfirmation(metrics.ConfirmationConfirmed)
			logger.Debugf("confirmed %s", r.sig)
			continue
		}
		result.LastErr = r.err
		switch r.err.(type) {
		case *LedgerRejectionError:
			metrics.RecordConfirmation(metrics.ConfirmationRejected)
		default:
			metrics.RecordConfirmation(metrics.ConfirmationTimeout)
		}
		logger.Debugf("signature %s: %v", r.sig, r.err)
	}
	// a winning race can still carry the last loser's error; callers
	// branch on Success, not on LastErr
	return result
}

// awaitSignature polls at a constant interval until the deadline. RPC
// errors are treated as transient; only a ledger-reported failure or the
// deadline ends the poll early.
func (t *Tracker) awaitSignature(ctx context.Context, sig sgo.Signature) error {
	doneC := ctx.Done()
	b := backoff.NewConstantBackOff(t.cfg.Interval)
	deadline := time.Now().Add(t.cfg.Deadline)
	for {
		status, err := t.fetchStatus(ctx, sig)
		if err == nil && status != nil {
			if status.Err != nil {
				return &LedgerRejectionError{
					Signature: sig,
					Detail:    fmt.Sprintf("%v", status.Err),
				}
			}
			if commitmentReached(status.ConfirmationStatus, t.cfg.Commitment) {
				return nil
			}
		}
		if time.Now().Add(t.cfg.Interval).After(deadline) {
			return &ConfirmationTimeoutError{Signature: sig, Deadline: t.cfg.Deadline}
		}
		select {
		case <-doneC:
			return &ConfirmationTimeoutError{Signature: sig, Deadline: t.cfg.Deadline}
		case <-time.After(b.NextBackOff()):
		}
	}
}

func (t *Tracker) fetchStatus(ctx context.Context, sig sgo.Signature) (*sgorpc.SignatureStatusesResult, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, t.cfg.Interval*4)
	defer cancel()
	out, err := t.ledger.GetSignatureStatuses(fetchCtx, true, sig)
	if err != nil {
		return nil, err
	}
	if out == nil || len(out.Value) == 0 {
		return nil, nil
	}
	return out.Value[0], nil
}

func commitmentLevel(s sgorpc.ConfirmationStatusType) int {
	switch s {
	case sgorpc.ConfirmationStatusProcessed:
		return 1
	case sgorpc.ConfirmationStatusConfirmed:
		return 2
	case sgorpc.ConfirmationStatusFinalized:
		return 3
	default:
		return 0
	}
}

func mapCommitment(s sgorpc.ConfirmationStatusType) sgorpc.CommitmentType {
	switch s {
	case sgorpc.ConfirmationStatusProcessed:
		return sgorpc.CommitmentProcessed
	case sgorpc.ConfirmationStatusFinalized:
		return sgorpc.CommitmentFinalized
	default:
		return sgorpc.CommitmentConfirmed
	}
}

func commitmentReached(observed, wanted sgorpc.ConfirmationStatusType) bool {
	lvl := commitmentLevel(observed)
	return lvl > 0 && lvl >= commitmentLevel(wanted)
}

// aggregateDispatchOnly resolves a race that does not wait for the ledger:
// success means at least one provider accepted the payload.
func aggregateDispatchOnly(outcomes []swqos.Outcome) Result {
	result := Result{}
	seen := make(map[sgo.Signature]bool)
	for _, out := range outcomes {
		if !out.Ok() {
			result.LastErr = out.Err
			continue
		}
		result.Success = true
		if !seen[out.Signature] {
			seen[out.Signature] = true
			result.Signatures = append(result.Signatures, out.Signature)
		}
	}
	return result
}
