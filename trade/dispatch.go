package trade

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/metrics"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

// Assignment pairs one variant with the provider that will carry it.
type Assignment struct {
	Provider swqos.Provider
	Variant  *Variant
}

// ProviderVariants holds every variant built for a single provider.
type ProviderVariants struct {
	Provider swqos.Provider
	Variants []*Variant
}

// buildAssignments expands provider variants into concrete submissions.
// Broadcast sends every variant to its provider; Split alternates between
// the race pair so each provider carries only one leg.
func buildAssignments(pvs []ProviderVariants, policy RacePolicy) []Assignment {
	out := make([]Assignment, 0, len(pvs)*2)
	alt := 0
	for _, pv := range pvs {
		if len(pv.Variants) == 0 {
			continue
		}
		if policy == RaceSplit && len(pv.Variants) > 1 {
			out = append(out, Assignment{Provider: pv.Provider, Variant: pv.Variants[alt%len(pv.Variants)]})
			alt++
			continue
		}
		for _, v := range pv.Variants {
			out = append(out, Assignment{Provider: pv.Provider, Variant: v})
		}
	}
	return out
}

// submitAll fans every assignment out on its own goroutine and collects
// outcomes in completion order. Provider failures come back inside the
// outcome, so one dead relay never disturbs the rest of the race.
func submitAll(ctx context.Context, logger *log.Entry, assignments []Assignment) []swqos.Outcome {
	outcomeC := make(chan swqos.Outcome, len(assignments))
	var wg conc.WaitGroup
	for _, as := range assignments {
		as := as
		wg.Go(func() {
			out := as.Provider.Submit(ctx, swqos.SubmitRequest{
				Payload:   as.Variant.Payload,
				Signature: as.Variant.Signature,
			})
			metrics.RecordSubmission(out)
			if out.Ok() {
				logger.Debugf("submitted %s to %s in %s", out.Signature, out.Provider, out.Latency)
			} else {
				logger.Debugf("submit to %s failed: %v", out.Provider, out.Err)
			}
			outcomeC <- out
		})
	}
	wg.Wait()
	close(outcomeC)

	outcomes := make([]swqos.Outcome, 0, len(assignments))
	for out := range outcomeC {
		outcomes = append(outcomes, out)
	}
	return outcomes
}
