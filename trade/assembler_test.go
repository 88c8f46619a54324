package trade_test

import (
	"context"
	"sync"
	"testing"
	"time"

	bin "github.com/gagliardetto/binary"
	sgo "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/strategy"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/trade"
)

// fakeProvider is shared by the tests in this package.
type fakeProvider struct {
	kind     swqos.Kind
	tip      sgo.PublicKey
	noTip    bool
	disabled bool
	fail     bool
	delay    time.Duration

	mu        sync.Mutex
	submitted []swqos.SubmitRequest
}

func (f *fakeProvider) Identity() swqos.Kind { return f.kind }
func (f *fakeProvider) Disabled() bool       { return f.disabled }

func (f *fakeProvider) TipAccount() (sgo.PublicKey, error) {
	if f.noTip {
		return sgo.PublicKey{}, swqos.ErrNoTipAccount
	}
	return f.tip, nil
}

func (f *fakeProvider) Submit(ctx context.Context, req swqos.SubmitRequest) swqos.Outcome {
	f.mu.Lock()
	f.submitted = append(f.submitted, req)
	f.mu.Unlock()
	sentAt := time.Now()
	if f.delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(f.delay):
		}
	}
	out := swqos.Outcome{
		Provider:  f.kind,
		Signature: req.Signature,
		SentAt:    sentAt,
		Latency:   time.Since(sentAt),
	}
	if f.fail {
		out.Err = &swqos.ProviderError{Provider: f.kind, Message: "relay refused"}
	}
	return out
}

func (f *fakeProvider) SubmitBatch(ctx context.Context, reqs []swqos.SubmitRequest) []swqos.Outcome {
	outs := make([]swqos.Outcome, 0, len(reqs))
	for _, req := range reqs {
		outs = append(outs, f.Submit(ctx, req))
	}
	return outs
}

func (f *fakeProvider) submissionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.submitted)
}

func newKey(t *testing.T) sgo.PrivateKey {
	t.Helper()
	key, err := sgo.NewRandomPrivateKey()
	require.NoError(t, err)
	return key
}

func transferRequest(t *testing.T, signer sgo.PrivateKey) *trade.Request {
	t.Helper()
	dst := newKey(t).PublicKey()
	return &trade.Request{
		Direction: strategy.DirectionBuy,
		Instructions: []sgo.Instruction{
			system.NewTransferInstruction(42, signer.PublicKey(), dst).Build(),
		},
		Signer:  signer,
		Anchor:  trade.Anchor{Blockhash: sgo.Hash{1, 2, 3}},
		WithTip: true,
	}
}

func feeParams() strategy.FeeParameters {
	return strategy.FeeParameters{
		CULimit: 200_000,
		CUPrice: 1_000,
		Tip:     decimal.RequireFromString("0.001"),
	}
}

func decodeTx(t *testing.T, payload []byte) *sgo.Transaction {
	t.Helper()
	tx, err := sgo.TransactionFromDecoder(bin.NewBinDecoder(payload))
	require.NoError(t, err)
	return tx
}

func programOf(t *testing.T, tx *sgo.Transaction, i int) sgo.PublicKey {
	t.Helper()
	ix := tx.Message.Instructions[i]
	require.Less(t, int(ix.ProgramIDIndex), len(tx.Message.AccountKeys))
	return tx.Message.AccountKeys[ix.ProgramIDIndex]
}

func TestBuildInstructionOrder(t *testing.T) {
	signer := newKey(t)
	provider := &fakeProvider{kind: swqos.KindJito, tip: newKey(t).PublicKey()}
	assembler := trade.NewAssembler(nil)

	v, err := assembler.Build(transferRequest(t, signer), provider, strategy.KindNormal, feeParams())
	require.NoError(t, err)

	tx := decodeTx(t, v.Payload)
	require.Len(t, tx.Message.Instructions, 4)

	// compute budget limit and price lead
	assert.True(t, programOf(t, tx, 0).Equals(sgo.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")))
	assert.True(t, programOf(t, tx, 1).Equals(sgo.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")))
	assert.Equal(t, byte(2), tx.Message.Instructions[0].Data[0])
	assert.Equal(t, byte(3), tx.Message.Instructions[1].Data[0])

	// then the tip transfer, then the business transfer
	assert.True(t, programOf(t, tx, 2).Equals(sgo.SystemProgramID))
	assert.True(t, programOf(t, tx, 3).Equals(sgo.SystemProgramID))
}

func TestBuildDurableNonceLeadsWithAdvance(t *testing.T) {
	signer := newKey(t)
	provider := &fakeProvider{kind: swqos.KindJito, tip: newKey(t).PublicKey()}
	assembler := trade.NewAssembler(nil)

	req := transferRequest(t, signer)
	req.Anchor = trade.Anchor{
		Mode:         trade.AnchorDurableNonce,
		Blockhash:    sgo.Hash{9, 9, 9},
		NonceAccount: newKey(t).PublicKey(),
	}

	v, err := assembler.Build(req, provider, strategy.KindNormal, feeParams())
	require.NoError(t, err)

	tx := decodeTx(t, v.Payload)
	require.Len(t, tx.Message.Instructions, 5)
	assert.True(t, programOf(t, tx, 0).Equals(sgo.SystemProgramID))
	// system instruction discriminant 4 is advance-nonce
	assert.Equal(t, byte(4), tx.Message.Instructions[0].Data[0])
	assert.Equal(t, sgo.Hash{9, 9, 9}, tx.Message.RecentBlockhash)
}

func TestBuildSkipsTipWhenProviderTakesNone(t *testing.T) {
	signer := newKey(t)
	provider := &fakeProvider{kind: swqos.KindDefault, noTip: true}
	assembler := trade.NewAssembler(nil)

	v, err := assembler.Build(transferRequest(t, signer), provider, strategy.KindNormal, feeParams())
	require.NoError(t, err)

	tx := decodeTx(t, v.Payload)
	assert.Len(t, tx.Message.Instructions, 3)
}

func TestBuildSkipsTipWhenRequestDisablesIt(t *testing.T) {
	signer := newKey(t)
	provider := &fakeProvider{kind: swqos.KindJito, tip: newKey(t).PublicKey()}
	assembler := trade.NewAssembler(nil)

	req := transferRequest(t, signer)
	req.WithTip = false
	v, err := assembler.Build(req, provider, strategy.KindNormal, feeParams())
	require.NoError(t, err)

	tx := decodeTx(t, v.Payload)
	assert.Len(t, tx.Message.Instructions, 3)
}

func TestBuildIsSigned(t *testing.T) {
	signer := newKey(t)
	provider := &fakeProvider{kind: swqos.KindJito, tip: newKey(t).PublicKey()}
	assembler := trade.NewAssembler(nil)

	v, err := assembler.Build(transferRequest(t, signer), provider, strategy.KindNormal, feeParams())
	require.NoError(t, err)

	tx := decodeTx(t, v.Payload)
	require.NotEmpty(t, tx.Signatures)
	assert.Equal(t, tx.Signatures[0], v.Signature)
	assert.NoError(t, tx.VerifySignatures())
}

func TestBuildIsDeterministic(t *testing.T) {
	signer := newKey(t)
	provider := &fakeProvider{kind: swqos.KindJito, tip: newKey(t).PublicKey()}
	assembler := trade.NewAssembler(nil)
	req := transferRequest(t, signer)

	a, err := assembler.Build(req, provider, strategy.KindNormal, feeParams())
	require.NoError(t, err)
	b, err := assembler.Build(req, provider, strategy.KindNormal, feeParams())
	require.NoError(t, err)

	assert.Equal(t, a.Payload, b.Payload)
	assert.Equal(t, a.Signature, b.Signature)
}

func TestBuildRejectsOversizedTransaction(t *testing.T) {
	signer := newKey(t)
	provider := &fakeProvider{kind: swqos.KindJito, tip: newKey(t).PublicKey()}
	assembler := trade.NewAssembler(nil)

	p := feeParams()
	p.MaxTxSize = 16
	_, err := assembler.Build(transferRequest(t, signer), provider, strategy.KindNormal, p)
	var serr *trade.SerializationError
	require.ErrorAs(t, err, &serr)
}

func TestBuildAllProducesRacePair(t *testing.T) {
	signer := newKey(t)
	provider := &fakeProvider{kind: swqos.KindJito, tip: newKey(t).PublicKey()}
	assembler := trade.NewAssembler(nil)

	store := strategy.CreateStore(swqos.KindJito)
	store.SetRace(swqos.KindJito, strategy.DirectionBuy, 150_000, 500, 50_000,
		decimal.RequireFromString("0.0001"), decimal.RequireFromString("0.01"), 0)
	entries := store.Lookup(swqos.KindJito, strategy.DirectionBuy)
	require.Len(t, entries, 2)

	variants, err := assembler.BuildAll(transferRequest(t, signer), provider, entries)
	require.NoError(t, err)
	require.Len(t, variants, 2)
	assert.NotEqual(t, variants[0].Payload, variants[1].Payload)
	assert.NotEqual(t, variants[0].Signature, variants[1].Signature)
	assert.Equal(t, strategy.KindLowTipHighPrice, variants[0].Kind)
	assert.Equal(t, strategy.KindHighTipLowPrice, variants[1].Kind)
}

func TestValidateRejections(t *testing.T) {
	assembler := trade.NewAssembler(nil)
	signer := newKey(t)

	var ierr *trade.InvalidParameterError

	err := assembler.Validate(nil)
	require.ErrorAs(t, err, &ierr)

	err = assembler.Validate(&trade.Request{Signer: signer})
	require.ErrorAs(t, err, &ierr)

	req := transferRequest(t, signer)
	req.Signer = nil
	err = assembler.Validate(req)
	require.ErrorAs(t, err, &ierr)

	req = transferRequest(t, signer)
	req.Anchor = trade.Anchor{Mode: trade.AnchorDurableNonce}
	err = assembler.Validate(req)
	require.ErrorAs(t, err, &ierr)
}
