package nonce_test

import (
	"context"
	"encoding/binary"
	"testing"

	sgo "github.com/gagliardetto/solana-go"
	sgorpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/state/nonce"
)

func nonceAccountBytes(state uint32, authority sgo.PublicKey, value sgo.Hash, fee uint64) []byte {
	data := make([]byte, nonce.ACCOUNT_SIZE)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	binary.LittleEndian.PutUint32(data[4:8], state)
	copy(data[8:40], authority[:])
	copy(data[40:72], value[:])
	binary.LittleEndian.PutUint64(data[72:80], fee)
	return data
}

func TestParse(t *testing.T) {
	authority := sgo.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5")
	value := sgo.Hash{4, 4, 4}

	s, err := nonce.Parse(nonceAccountBytes(nonce.STATE_INITIALIZED, authority, value, 5000))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), s.Version)
	assert.Equal(t, authority, s.Authority)
	assert.Equal(t, value, s.Nonce)
	assert.Equal(t, uint64(5000), s.FeePerSignature)
}

func TestParseUninitialized(t *testing.T) {
	_, err := nonce.Parse(nonceAccountBytes(nonce.STATE_UNINITIALIZED, sgo.PublicKey{}, sgo.Hash{}, 0))
	assert.ErrorIs(t, err, nonce.ErrUninitialized)
}

func TestParseShortBuffer(t *testing.T) {
	_, err := nonce.Parse(make([]byte, 16))
	assert.Error(t, err)
}

type fakeFetcher struct {
	result *sgorpc.GetAccountInfoResult
	err    error
}

func (f *fakeFetcher) GetAccountInfo(ctx context.Context, account sgo.PublicKey) (*sgorpc.GetAccountInfoResult, error) {
	return f.result, f.err
}

func TestFetchMissingAccount(t *testing.T) {
	_, err := nonce.Fetch(context.Background(), &fakeFetcher{}, sgo.PublicKey{1})
	assert.Error(t, err)
}
