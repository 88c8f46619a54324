package swqos_test

import (
	"context"
	"errors"
	"testing"

	sgo "github.com/gagliardetto/solana-go"
	sgorpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

type fakeSender struct {
	err  error
	sent [][]byte
}

func (f *fakeSender) SendRawTransactionWithOpts(ctx context.Context, rawTx []byte, opts sgorpc.TransactionOpts) (sgo.Signature, error) {
	f.sent = append(f.sent, rawTx)
	if f.err != nil {
		return sgo.Signature{}, f.err
	}
	return sgo.Signature{}, nil
}

func TestBuildRegistryRequiresConfig(t *testing.T) {
	_, err := swqos.BuildRegistry(nil, &fakeSender{}, nil)
	assert.Error(t, err)
}

func TestBuildRegistryUnknownKind(t *testing.T) {
	_, err := swqos.BuildRegistry([]swqos.Config{{Kind: "warp-drive"}}, &fakeSender{}, nil)
	assert.Error(t, err)
}

func TestBuildRegistryUnknownRegion(t *testing.T) {
	_, err := swqos.BuildRegistry([]swqos.Config{{Kind: "jito", Region: "atlantis"}}, &fakeSender{}, nil)
	assert.Error(t, err)
}

func TestDenylistedKindBecomesInert(t *testing.T) {
	registry, err := swqos.BuildRegistry([]swqos.Config{
		{Kind: "default"},
		{Kind: "jito"},
	}, &fakeSender{}, []swqos.Kind{swqos.KindJito})
	require.NoError(t, err)

	// the denylisted provider stays visible
	assert.Equal(t, 2, registry.Size())
	assert.Len(t, registry.Enabled(), 1)

	p, present := registry.Lookup(swqos.KindJito)
	require.True(t, present)
	assert.True(t, p.Disabled())

	// and produces a failed outcome instead of traffic
	out := p.Submit(context.Background(), swqos.SubmitRequest{})
	assert.False(t, out.Ok())
	assert.True(t, errors.Is(out.Err, swqos.ErrProviderDisabled))

	_, err = p.TipAccount()
	assert.True(t, errors.Is(err, swqos.ErrProviderDisabled))
}

func TestRpcNodeSubmit(t *testing.T) {
	sender := &fakeSender{}
	p := swqos.NewRpcNodeClient(sender)

	out := p.Submit(context.Background(), swqos.SubmitRequest{Payload: []byte{1, 2, 3}})
	assert.True(t, out.Ok())
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []byte{1, 2, 3}, sender.sent[0])

	_, err := p.TipAccount()
	assert.True(t, errors.Is(err, swqos.ErrNoTipAccount))
}

func TestRpcNodeSubmitFailureStaysInOutcome(t *testing.T) {
	sender := &fakeSender{err: errors.New("blockhash not found")}
	p := swqos.NewRpcNodeClient(sender)

	out := p.Submit(context.Background(), swqos.SubmitRequest{Payload: []byte{9}})
	assert.False(t, out.Ok())
	var perr *swqos.ProviderError
	require.True(t, errors.As(out.Err, &perr))
	assert.Equal(t, swqos.KindDefault, perr.Provider)
}

func TestJitoTipAccountPool(t *testing.T) {
	client, err := swqos.NewJitoClient(swqos.Config{Kind: "jito"})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for i := 0; i < 64; i++ {
		account, err := client.TipAccount()
		require.NoError(t, err)
		assert.False(t, account.IsZero())
		seen[account.String()] = true
	}
	// the pool rotates rather than pinning one account
	assert.Greater(t, len(seen), 1)
}

func TestMinTipCoversPaidKinds(t *testing.T) {
	for _, kind := range []swqos.Kind{
		swqos.KindJito, swqos.KindNextBlock, swqos.KindZeroSlot,
		swqos.KindTemporal, swqos.KindBloxroute,
	} {
		floor, present := swqos.MinTip[kind]
		require.True(t, present, kind.String())
		assert.True(t, floor.IsPositive(), kind.String())
	}
	floor, present := swqos.MinTip[swqos.KindDefault]
	require.True(t, present)
	assert.True(t, floor.IsZero())
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, kind := range swqos.AllKinds() {
		parsed, err := swqos.ParseKind(kind.String())
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}
	_, err := swqos.ParseKind("nope")
	assert.Error(t, err)
}
