package trade

import (
	"context"

	sgo "github.com/gagliardetto/solana-go"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/ds/bufpool"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/metrics"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/state/blockhash"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/strategy"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/util"
)

type EngineConfig struct {
	RacePolicy RacePolicy
	Tracker    TrackerConfig
}

// Engine races one logical transaction across every enabled provider.
type Engine struct {
	ctx       context.Context
	registry  *swqos.Registry
	store     *strategy.Store
	assembler *Assembler
	tracker   *Tracker
	cfg       EngineConfig
	blockhash *blockhash.Home
}

func CreateEngine(
	ctx context.Context,
	registry *swqos.Registry,
	store *strategy.Store,
	ledger Ledger,
	pool *bufpool.Pool,
	cfg EngineConfig,
) *Engine {
	return &Engine{
		ctx:       ctx,
		registry:  registry,
		store:     store,
		assembler: NewAssembler(pool),
		tracker:   NewTracker(ledger, cfg.Tracker),
		cfg:       cfg,
	}
}

// WithBlockhashHome wires a background blockhash tracker; without one the
// engine fetches an anchor from the ledger per execution.
func (e *Engine) WithBlockhashHome(h blockhash.Home) *Engine {
	e.blockhash = &h
	return e
}

// Execute runs one race end to end: validate, anchor, assemble per
// provider, dispatch concurrently, then resolve per the request mode.
// Provider failures never surface as the returned error; they land in
// Result.LastErr. The returned error is reserved for invalid input and
// total infrastructure unavailability.
func (e *Engine) Execute(ctx context.Context, req *Request) (Result, error) {
	if err := e.assembler.Validate(req); err != nil {
		return Result{}, err
	}
	ctx = util.MergeCtx(e.ctx, ctx)
	id, err := uuid.NewRandom()
	if err != nil {
		return Result{}, err
	}
	logger := log.WithFields(log.Fields{
		"race":      id,
		"direction": req.Direction,
	})

	providers := e.eligibleProviders(req)
	if len(providers) == 0 {
		return Result{}, ErrNoProviders
	}

	if err := e.resolveAnchor(ctx, req); err != nil {
		return Result{}, err
	}

	pvs, err := e.assembleAll(req, providers, logger)
	if err != nil {
		return Result{}, err
	}
	if len(pvs) == 0 {
		return Result{}, ErrNoStrategies
	}

	if req.Anchor.Mode == AnchorRecentBlockhash && distinctSignatures(pvs) > 1 {
		logger.Warn("racing economically distinct transactions under a recent blockhash; more than one may land")
	}

	assignments := buildAssignments(pvs, e.cfg.RacePolicy)
	logger.Debugf("racing %d submissions across %d providers", len(assignments), len(pvs))
	outcomes := submitAll(ctx, logger, assignments)

	var result Result
	if req.Mode == ModeDispatchOnly {
		result = aggregateDispatchOnly(outcomes)
	} else {
		result = e.tracker.Await(ctx, logger, outcomes)
	}
	metrics.RecordRace(result.Success)
	logger.Debugf("race finished success=%v signatures=%d", result.Success, len(result.Signatures))
	return result, nil
}

// eligibleProviders returns the providers allowed to carry this request.
// Without a tip only the plain rpc provider participates.
func (e *Engine) eligibleProviders(req *Request) []swqos.Provider {
	enabled := e.registry.Enabled()
	if req.WithTip {
		return enabled
	}
	out := make([]swqos.Provider, 0, 1)
	for _, p := range enabled {
		if p.Identity() == swqos.KindDefault {
			out = append(out, p)
		}
	}
	return out
}

func (e *Engine) resolveAnchor(ctx context.Context, req *Request) error {
	if req.Anchor.Mode == AnchorDurableNonce || !req.Anchor.Blockhash.IsZero() {
		return nil
	}
	if e.blockhash != nil {
		update, err := e.blockhash.Latest()
		if err != nil {
			return err
		}
		req.Anchor.Blockhash = update.Blockhash
		return nil
	}
	result, err := e.tracker.ledger.GetLatestBlockhash(ctx, mapCommitment(e.tracker.cfg.Commitment))
	if err != nil {
		return err
	}
	req.Anchor.Blockhash = result.Value.Blockhash
	return nil
}

// assembleAll builds every variant, dropping strategy entries whose tip is
// below the provider floor.
func (e *Engine) assembleAll(req *Request, providers []swqos.Provider, logger *log.Entry) ([]ProviderVariants, error) {
	pvs := make([]ProviderVariants, 0, len(providers))
	for _, p := range providers {
		kind := p.Identity()
		entries := e.store.Lookup(kind, req.Direction)
		if req.WithTip {
			entries = filterMinTip(kind, entries, logger)
		}
		if len(entries) == 0 {
			continue
		}
		variants, err := e.assembler.BuildAll(req, p, entries)
		if err != nil {
			return nil, err
		}
		pvs = append(pvs, ProviderVariants{Provider: p, Variants: variants})
	}
	return pvs, nil
}

func distinctSignatures(pvs []ProviderVariants) int {
	seen := make(map[sgo.Signature]bool)
	for _, pv := range pvs {
		for _, v := range pv.Variants {
			seen[v.Signature] = true
		}
	}
	return len(seen)
}

func filterMinTip(kind swqos.Kind, entries []strategy.Entry, logger *log.Entry) []strategy.Entry {
	floor, present := swqos.MinTip[kind]
	if !present {
		return entries
	}
	out := entries[:0:0]
	for _, entry := range entries {
		if entry.Params.Tip.LessThan(floor) {
			logger.Warnf("dropping %s strategy for %s: tip %s below floor %s",
				entry.Key.Kind, kind, entry.Params.Tip, floor)
			continue
		}
		out = append(out, entry)
	}
	return out
}
