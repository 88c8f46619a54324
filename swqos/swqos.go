// Package swqos contains clients for low-latency transaction relay services
// (stake-weighted quality of service providers). Every provider speaks its
// own HTTP dialect but presents the same narrow surface: submit a signed
// transaction, hand out a tip account, identify itself.
package swqos

import (
	"context"
	"fmt"
	"time"

	sgo "github.com/gagliardetto/solana-go"
)

type Kind uint8

const (
	KindDefault Kind = iota
	KindJito
	KindNextBlock
	KindZeroSlot
	KindTemporal
	KindBloxroute
)

func (k Kind) String() string {
	switch k {
	case KindDefault:
		return "default"
	case KindJito:
		return "jito"
	case KindNextBlock:
		return "nextblock"
	case KindZeroSlot:
		return "0slot"
	case KindTemporal:
		return "temporal"
	case KindBloxroute:
		return "bloxroute"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

func ParseKind(s string) (Kind, error) {
	for _, k := range AllKinds() {
		if k.String() == s {
			return k, nil
		}
	}
	return KindDefault, fmt.Errorf("unknown swqos kind %q", s)
}

func AllKinds() []Kind {
	return []Kind{KindDefault, KindJito, KindNextBlock, KindZeroSlot, KindTemporal, KindBloxroute}
}

// SubmitRequest carries one fully signed, serialized transaction.
type SubmitRequest struct {
	Payload   []byte
	Signature sgo.Signature
}

// Outcome records the result of exactly one submission attempt. Failures of
// any sort stay inside Err; Submit never returns an error value of its own.
type Outcome struct {
	Provider  Kind
	Signature sgo.Signature
	Err       error
	SentAt    time.Time
	Latency   time.Duration
}

func (o Outcome) Ok() bool {
	return o.Err == nil
}

// Provider is the closed set of relay clients. Implementations must be safe
// for concurrent use.
type Provider interface {
	Submit(ctx context.Context, req SubmitRequest) Outcome
	SubmitBatch(ctx context.Context, reqs []SubmitRequest) []Outcome
	TipAccount() (sgo.PublicKey, error)
	Identity() Kind
	Disabled() bool
}

// ProviderError describes a failed relay call: transport failure, non-2xx
// status, or an error payload in an otherwise successful response.
type ProviderError struct {
	Provider Kind
	Status   int
	Message  string
	Cause    error
}

func (e *ProviderError) Error() string {
	switch {
	case e.Cause != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Cause)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Provider, e.Message)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

func submitFailure(kind Kind, sig sgo.Signature, sentAt time.Time, err error) Outcome {
	return Outcome{
		Provider:  kind,
		Signature: sig,
		Err:       err,
		SentAt:    sentAt,
		Latency:   time.Since(sentAt),
	}
}

func submitSuccess(kind Kind, sig sgo.Signature, sentAt time.Time) Outcome {
	return Outcome{
		Provider:  kind,
		Signature: sig,
		SentAt:    sentAt,
		Latency:   time.Since(sentAt),
	}
}

// submitEach serves SubmitBatch for providers without a native batch call.
func submitEach(ctx context.Context, p Provider, reqs []SubmitRequest) []Outcome {
	out := make([]Outcome, 0, len(reqs))
	for _, req := range reqs {
		out = append(out, p.Submit(ctx, req))
	}
	return out
}
