// Package strategy holds the fee strategy table consulted on every trade:
// which compute budget and which relay tip to attach, per provider, per
// trade direction.
package strategy

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

// Kind selects between a single standard fee profile and the two halves of
// a racing pair.
type Kind uint8

const (
	KindNormal Kind = iota
	// KindLowTipHighPrice pays a small relay tip but a large priority fee.
	KindLowTipHighPrice
	// KindHighTipLowPrice pays a large relay tip but a small priority fee.
	KindHighTipLowPrice
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindLowTipHighPrice:
		return "low-tip-high-price"
	case KindHighTipLowPrice:
		return "high-tip-low-price"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

type Direction uint8

const (
	DirectionBuy Direction = iota
	DirectionSell
	DirectionCreate
	DirectionCreateAndBuy
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "buy"
	case DirectionSell:
		return "sell"
	case DirectionCreate:
		return "create"
	case DirectionCreateAndBuy:
		return "create-and-buy"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(d))
	}
}

// BuySide reports whether the direction spends the quote asset.
func (d Direction) BuySide() bool {
	return d == DirectionBuy || d == DirectionCreate || d == DirectionCreateAndBuy
}

// FeeParameters is one installed fee profile. Tip is denominated in SOL.
type FeeParameters struct {
	CULimit   uint32
	CUPrice   uint64
	Tip       decimal.Decimal
	MaxTxSize int
}

const LAMPORTS_PER_SOL = 1_000_000_000

// TipLamports converts the SOL-denominated tip to lamports, rounding down.
func (p FeeParameters) TipLamports() uint64 {
	lamports := p.Tip.Mul(decimal.NewFromInt(LAMPORTS_PER_SOL))
	if lamports.Sign() <= 0 {
		return 0
	}
	return uint64(lamports.IntPart())
}

type Key struct {
	Provider  swqos.Kind
	Direction Direction
	Kind      Kind
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Provider, k.Direction, k.Kind)
}

// Entry pairs a key with its installed parameters.
type Entry struct {
	Key    Key
	Params FeeParameters
}
