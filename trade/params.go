package trade

import (
	sgo "github.com/gagliardetto/solana-go"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/strategy"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

// AnchorMode selects what makes the transaction valid on the ledger.
type AnchorMode uint8

const (
	// AnchorRecentBlockhash anchors on a recently observed blockhash.
	AnchorRecentBlockhash AnchorMode = iota
	// AnchorDurableNonce anchors on a durable nonce account; the built
	// transaction leads with an advance-nonce instruction.
	AnchorDurableNonce
)

// Anchor is the validity anchor of a request. For AnchorRecentBlockhash a
// zero Blockhash means the engine fetches one itself.
type Anchor struct {
	Mode           AnchorMode
	Blockhash      sgo.Hash
	NonceAccount   sgo.PublicKey
	NonceAuthority sgo.PublicKey
}

// RacePolicy controls how race variants are spread across providers.
type RacePolicy uint8

const (
	// RaceBroadcast sends every variant to every provider.
	RaceBroadcast RacePolicy = iota
	// RaceSplit alternates, sending one variant per provider.
	RaceSplit
)

// ExecMode controls whether Execute waits for ledger confirmation.
type ExecMode uint8

const (
	// ModeWaitConfirm waits for at least one signature to confirm.
	ModeWaitConfirm ExecMode = iota
	// ModeDispatchOnly returns as soon as submissions complete.
	ModeDispatchOnly
)

// Request is one logical trade to race across providers.
type Request struct {
	Direction    strategy.Direction
	Instructions []sgo.Instruction
	Signer       sgo.PrivateKey
	Anchor       Anchor
	Mode         ExecMode
	// WithTip gates provider tips. When false only the plain rpc
	// provider carries the transaction.
	WithTip bool
}

// Result is the aggregate outcome of one race.
type Result struct {
	Success bool
	// Signatures in completion order of the underlying submissions.
	Signatures []sgo.Signature
	// LastErr is the most recent failure observed, nil when every leg
	// succeeded.
	LastErr error
}

// Variant is one signed, wire-ready rendition of a request.
type Variant struct {
	Payload   []byte
	Signature sgo.Signature
	Provider  swqos.Kind
	Kind      strategy.Kind
	Params    strategy.FeeParameters
}
