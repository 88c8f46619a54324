package strategy

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

type table map[Key]FeeParameters

// Store maps (provider, direction, kind) to fee parameters. Reads go
// through an atomically swapped immutable table, so the hot path never
// takes a lock and always observes a complete snapshot. Writers clone the
// table, mutate the clone and publish it; the mutex only serializes
// writers against each other.
//
// Invariant: for a fixed (provider, direction) the table holds either one
// KindNormal entry or the KindLowTipHighPrice/KindHighTipLowPrice pair,
// never both families. Installing one family purges the other.
type Store struct {
	mu        sync.Mutex
	current   atomic.Pointer[table]
	providers []swqos.Kind
}

// CreateStore builds an empty store scoped to the given provider kinds.
// SetGlobal fans out over exactly this set.
func CreateStore(providers ...swqos.Kind) *Store {
	s := new(Store)
	s.providers = append([]swqos.Kind{}, providers...)
	empty := make(table)
	s.current.Store(&empty)
	return s
}

func (s *Store) snapshotTable() table {
	return *s.current.Load()
}

// mutate runs fn against a private clone of the live table and publishes
// the clone. The live table is never written in place.
func (s *Store) mutate(fn func(t table)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := *s.current.Load()
	next := make(table, len(old)+2)
	for k, v := range old {
		next[k] = v
	}
	fn(next)
	s.current.Store(&next)
}

func purgeFamily(t table, provider swqos.Kind, direction Direction, kinds ...Kind) {
	for _, kind := range kinds {
		delete(t, Key{Provider: provider, Direction: direction, Kind: kind})
	}
}

// SetGlobal installs a normal strategy for every configured provider in
// one publish, plus a zero-tip normal strategy for the plain-RPC fallback
// path. The direction decides whether buyTip or sellTip lands in the
// entries.
func (s *Store) SetGlobal(direction Direction, cuLimit uint32, cuPrice uint64, buyTip decimal.Decimal, sellTip decimal.Decimal, maxTxSize int) {
	tip := sellTip
	if direction.BuySide() {
		tip = buyTip
	}
	s.mutate(func(t table) {
		for _, provider := range s.providers {
			purgeFamily(t, provider, direction, KindLowTipHighPrice, KindHighTipLowPrice)
			entryTip := tip
			if provider == swqos.KindDefault {
				entryTip = decimal.Zero
			}
			t[Key{Provider: provider, Direction: direction, Kind: KindNormal}] = FeeParameters{
				CULimit: cuLimit, CUPrice: cuPrice, Tip: entryTip, MaxTxSize: maxTxSize,
			}
		}
		purgeFamily(t, swqos.KindDefault, direction, KindLowTipHighPrice, KindHighTipLowPrice)
		t[Key{Provider: swqos.KindDefault, Direction: direction, Kind: KindNormal}] = FeeParameters{
			CULimit: cuLimit, CUPrice: cuPrice, Tip: decimal.Zero, MaxTxSize: maxTxSize,
		}
	})
}

// SetNormal installs a single normal strategy, evicting any racing pair
// under the same (provider, direction).
func (s *Store) SetNormal(provider swqos.Kind, direction Direction, params FeeParameters) {
	s.mutate(func(t table) {
		purgeFamily(t, provider, direction, KindLowTipHighPrice, KindHighTipLowPrice)
		t[Key{Provider: provider, Direction: direction, Kind: KindNormal}] = params
	})
}

// SetRace installs the racing pair, evicting any normal strategy under the
// same (provider, direction). The two entries carry inversely paired
// tip/priority-fee values.
func (s *Store) SetRace(provider swqos.Kind, direction Direction, cuLimit uint32, lowCUPrice uint64, highCUPrice uint64, lowTip decimal.Decimal, highTip decimal.Decimal, maxTxSize int) {
	s.mutate(func(t table) {
		purgeFamily(t, provider, direction, KindNormal)
		t[Key{Provider: provider, Direction: direction, Kind: KindLowTipHighPrice}] = FeeParameters{
			CULimit: cuLimit, CUPrice: highCUPrice, Tip: lowTip, MaxTxSize: maxTxSize,
		}
		t[Key{Provider: provider, Direction: direction, Kind: KindHighTipLowPrice}] = FeeParameters{
			CULimit: cuLimit, CUPrice: lowCUPrice, Tip: highTip, MaxTxSize: maxTxSize,
		}
	})
}

// UpdateTip rewrites only the tip of every entry for the direction,
// across all providers and kinds. Other fields are untouched.
func (s *Store) UpdateTip(direction Direction, tip decimal.Decimal) {
	s.mutate(func(t table) {
		for k, v := range t {
			if k.Direction != direction {
				continue
			}
			v.Tip = tip
			t[k] = v
		}
	})
}

// UpdateCUPrice rewrites only the compute-unit price of every entry for
// the direction.
func (s *Store) UpdateCUPrice(direction Direction, cuPrice uint64) {
	s.mutate(func(t table) {
		for k, v := range t {
			if k.Direction != direction {
				continue
			}
			v.CUPrice = cuPrice
			t[k] = v
		}
	})
}

// Lookup returns the 0, 1 or 2 entries installed for the key. A racing
// pair comes back ordered low-tip first.
func (s *Store) Lookup(provider swqos.Kind, direction Direction) []Entry {
	t := s.snapshotTable()
	out := make([]Entry, 0, 2)
	for _, kind := range []Kind{KindNormal, KindLowTipHighPrice, KindHighTipLowPrice} {
		key := Key{Provider: provider, Direction: direction, Kind: kind}
		if params, present := t[key]; present {
			out = append(out, Entry{Key: key, Params: params})
		}
	}
	return out
}

func (s *Store) Delete(provider swqos.Kind, direction Direction, kind Kind) {
	s.mutate(func(t table) {
		delete(t, Key{Provider: provider, Direction: direction, Kind: kind})
	})
}

func (s *Store) DeleteAll(provider swqos.Kind, direction Direction) {
	s.mutate(func(t table) {
		purgeFamily(t, provider, direction, KindNormal, KindLowTipHighPrice, KindHighTipLowPrice)
	})
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	empty := make(table)
	s.current.Store(&empty)
}

// Snapshot lists every installed entry in a stable order, for diagnostics.
func (s *Store) Snapshot() []Entry {
	t := s.snapshotTable()
	out := make([]Entry, 0, len(t))
	for k, v := range t {
		out = append(out, Entry{Key: k, Params: v})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Key, out[j].Key
		if a.Provider != b.Provider {
			return a.Provider < b.Provider
		}
		if a.Direction != b.Direction {
			return a.Direction < b.Direction
		}
		return a.Kind < b.Kind
	})
	return out
}

// Log writes the full table at info level.
func (s *Store) Log() {
	entries := s.Snapshot()
	if len(entries) == 0 {
		log.Info("fee strategy table is empty")
		return
	}
	for _, e := range entries {
		log.Infof("strategy %s: cu_limit=%d cu_price=%d tip=%s max_tx_size=%d",
			e.Key, e.Params.CULimit, e.Params.CUPrice, e.Params.Tip, e.Params.MaxTxSize)
	}
}

// Providers returns the provider set the store was scoped to.
func (s *Store) Providers() []swqos.Kind {
	return append([]swqos.Kind{}, s.providers...)
}
