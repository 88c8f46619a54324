// Package nonce reads durable nonce accounts so callers can anchor
// transactions on a nonce value instead of a recent blockhash.
package nonce

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	sgo "github.com/gagliardetto/solana-go"
	sgorpc "github.com/gagliardetto/solana-go/rpc"
)

const ACCOUNT_SIZE = 80

const (
	STATE_UNINITIALIZED = 0
	STATE_INITIALIZED   = 1
)

var ErrUninitialized = errors.New("nonce account not initialized")

// State is the decoded on-chain nonce account.
type State struct {
	Version         uint32
	State           uint32
	Authority       sgo.PublicKey
	Nonce           sgo.Hash
	FeePerSignature uint64
}

// AccountFetcher is the slice of the ledger RPC client this package needs.
// *rpc.Client satisfies it.
type AccountFetcher interface {
	GetAccountInfo(ctx context.Context, account sgo.PublicKey) (*sgorpc.GetAccountInfoResult, error)
}

// Parse decodes the little-endian nonce account layout.
func Parse(data []byte) (*State, error) {
	if len(data) < ACCOUNT_SIZE {
		return nil, fmt.Errorf("nonce account data too short: %d bytes", len(data))
	}
	dec := bin.NewBinDecoder(data)
	var s State
	var err error
	if s.Version, err = dec.ReadUint32(binary.LittleEndian); err != nil {
		return nil, err
	}
	if s.State, err = dec.ReadUint32(binary.LittleEndian); err != nil {
		return nil, err
	}
	var b []byte
	if b, err = dec.ReadNBytes(32); err != nil {
		return nil, err
	}
	copy(s.Authority[:], b)
	if b, err = dec.ReadNBytes(32); err != nil {
		return nil, err
	}
	copy(s.Nonce[:], b)
	if s.FeePerSignature, err = dec.ReadUint64(binary.LittleEndian); err != nil {
		return nil, err
	}
	if s.State != STATE_INITIALIZED {
		return nil, ErrUninitialized
	}
	return &s, nil
}

// Fetch reads and decodes the nonce account at the given address.
func Fetch(ctx context.Context, client AccountFetcher, account sgo.PublicKey) (*State, error) {
	result, err := client.GetAccountInfo(ctx, account)
	if err != nil {
		return nil, err
	}
	if result == nil || result.Value == nil {
		return nil, fmt.Errorf("nonce account %s not found", account)
	}
	data := result.Value.Data.GetBinary()
	return Parse(data)
}
