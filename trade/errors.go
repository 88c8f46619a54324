package trade

import (
	"errors"
	"fmt"
	"time"

	sgo "github.com/gagliardetto/solana-go"
)

var (
	// ErrNoProviders means the registry has no provider able to carry traffic.
	ErrNoProviders = errors.New("no enabled providers")
	// ErrNoStrategies means no fee strategy matched the request, so there is
	// nothing to race.
	ErrNoStrategies = errors.New("no fee strategies matched")
)

// InvalidParameterError rejects a request before any network traffic.
type InvalidParameterError struct {
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return "invalid parameter: " + e.Reason
}

func invalidParam(format string, args ...any) error {
	return &InvalidParameterError{Reason: fmt.Sprintf(format, args...)}
}

// SerializationError wraps a failure to build or encode a transaction.
type SerializationError struct {
	Cause error
}

func (e *SerializationError) Error() string {
	return "serialization: " + e.Cause.Error()
}

func (e *SerializationError) Unwrap() error {
	return e.Cause
}

// ConfirmationTimeoutError means a signature was never observed at the
// requested commitment before the deadline.
type ConfirmationTimeoutError struct {
	Signature sgo.Signature
	Deadline  time.Duration
}

func (e *ConfirmationTimeoutError) Error() string {
	return fmt.Sprintf("confirmation timeout after %s for %s", e.Deadline, e.Signature)
}

// LedgerRejectionError means the ledger observed the transaction and
// reported it failed.
type LedgerRejectionError struct {
	Signature sgo.Signature
	Detail    string
}

func (e *LedgerRejectionError) Error() string {
	return fmt.Sprintf("transaction %s rejected: %s", e.Signature, e.Detail)
}
