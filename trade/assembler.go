package trade

import (
	"bytes"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
	sgo "github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/gagliardetto/solana-go/programs/system"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/ds/bufpool"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/strategy"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

// Assembler turns a request plus one fee strategy into a signed,
// serialized transaction. Serialization scratch space comes from a shared
// buffer pool.
type Assembler struct {
	pool *bufpool.Pool
}

func NewAssembler(pool *bufpool.Pool) *Assembler {
	if pool == nil {
		pool = bufpool.Create(bufpool.DEFAULT_POOL_SIZE, bufpool.DEFAULT_BUFFER_SIZE)
	}
	return &Assembler{pool: pool}
}

// Validate rejects a request that cannot possibly produce a transaction.
func (a *Assembler) Validate(req *Request) error {
	if req == nil {
		return invalidParam("nil request")
	}
	if req.Signer == nil {
		return invalidParam("no signer key")
	}
	if len(req.Instructions) == 0 {
		return invalidParam("no instructions")
	}
	if req.Anchor.Mode == AnchorDurableNonce {
		if req.Anchor.NonceAccount.IsZero() {
			return invalidParam("durable anchor without nonce account")
		}
		if req.Anchor.Blockhash.IsZero() {
			return invalidParam("durable anchor without nonce value")
		}
	}
	return nil
}

// Build assembles, signs and serializes one variant. Instruction order is
// fixed: advance-nonce when the anchor is durable, then compute budget
// limit and price, then the provider tip, then the caller's instructions.
func (a *Assembler) Build(
	req *Request,
	provider swqos.Provider,
	kind strategy.Kind,
	p strategy.FeeParameters,
) (*Variant, error) {
	payer := req.Signer.PublicKey()

	ixs := make([]sgo.Instruction, 0, len(req.Instructions)+4)
	if req.Anchor.Mode == AnchorDurableNonce {
		authority := req.Anchor.NonceAuthority
		if authority.IsZero() {
			authority = payer
		}
		ixs = append(ixs, system.NewAdvanceNonceAccountInstruction(
			req.Anchor.NonceAccount,
			sgo.SysVarRecentBlockHashesPubkey,
			authority,
		).Build())
	}
	if p.CULimit > 0 {
		ixs = append(ixs, computebudget.NewSetComputeUnitLimitInstruction(p.CULimit).Build())
	}
	if p.CUPrice > 0 {
		ixs = append(ixs, computebudget.NewSetComputeUnitPriceInstruction(p.CUPrice).Build())
	}
	if req.WithTip {
		tipLamports := p.TipLamports()
		if tipLamports > 0 {
			tipAccount, err := provider.TipAccount()
			if err != nil {
				if !errors.Is(err, swqos.ErrNoTipAccount) {
					return nil, &SerializationError{Cause: err}
				}
				// provider takes no tip; fall through without one
			} else {
				ixs = append(ixs, system.NewTransferInstruction(
					tipLamports,
					payer,
					tipAccount,
				).Build())
			}
		}
	}
	ixs = append(ixs, req.Instructions...)

	builder := sgo.NewTransactionBuilder().SetFeePayer(payer)
	for _, ix := range ixs {
		builder = builder.AddInstruction(ix)
	}
	builder = builder.SetRecentBlockHash(req.Anchor.Blockhash)
	tx, err := builder.Build()
	if err != nil {
		return nil, &SerializationError{Cause: err}
	}
	_, err = tx.Sign(func(key sgo.PublicKey) *sgo.PrivateKey {
		if key.Equals(payer) {
			return &req.Signer
		}
		return nil
	})
	if err != nil {
		return nil, &SerializationError{Cause: err}
	}

	payload, err := a.encode(tx, p.MaxTxSize)
	if err != nil {
		return nil, err
	}
	return &Variant{
		Payload:   payload,
		Signature: tx.Signatures[0],
		Provider:  provider.Identity(),
		Kind:      kind,
		Params:    p,
	}, nil
}

// BuildAll assembles one variant per strategy entry for a provider.
func (a *Assembler) BuildAll(
	req *Request,
	provider swqos.Provider,
	entries []strategy.Entry,
) ([]*Variant, error) {
	variants := make([]*Variant, 0, len(entries))
	for _, entry := range entries {
		v, err := a.Build(req, provider, entry.Key.Kind, entry.Params)
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, nil
}

func (a *Assembler) encode(tx *sgo.Transaction, maxSize int) ([]byte, error) {
	scratch := a.pool.Get()
	defer a.pool.Put(scratch)
	w := bytes.NewBuffer(scratch)
	if err := tx.MarshalWithEncoder(bin.NewBinEncoder(w)); err != nil {
		return nil, &SerializationError{Cause: err}
	}
	encoded := w.Bytes()
	if maxSize > 0 && len(encoded) > maxSize {
		return nil, &SerializationError{
			Cause: fmt.Errorf("transaction is %d bytes, limit %d", len(encoded), maxSize),
		}
	}
	payload := make([]byte, len(encoded))
	copy(payload, encoded)
	return payload, nil
}
