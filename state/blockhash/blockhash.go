// Package blockhash tracks the ledger's most recent blockhash in the
// background so the submit path never waits on a fetch for its validity
// anchor.
package blockhash

import (
	"context"
	"errors"
	"time"

	sgo "github.com/gagliardetto/solana-go"
	sgorpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	dssub "github.com/IAliceBobI/sol-trade-sdk-sub001/ds/sub"
)

// Update is one observed blockhash.
type Update struct {
	Blockhash            sgo.Hash
	LastValidBlockHeight uint64
	FetchedAt            time.Time
}

// Client is the slice of the ledger RPC client this tracker needs.
// *rpc.Client satisfies it.
type Client interface {
	GetLatestBlockhash(ctx context.Context, commitment sgorpc.CommitmentType) (*sgorpc.GetLatestBlockhashResult, error)
}

type Home struct {
	id         uuid.UUID
	ctx        context.Context
	reqC       chan<- dssub.ResponseChannel[Update]
	singleReqC chan<- chan<- Update
}

const DEFAULT_POLL_INTERVAL = 2 * time.Second

// Track starts the polling loop. The loop owns all state; Home only holds
// channels into it.
func Track(
	ctxOutside context.Context,
	client Client,
	commitment sgorpc.CommitmentType,
	interval time.Duration,
) (Home, error) {
	if client == nil {
		return Home{}, errors.New("no rpc client")
	}
	if interval <= 0 {
		interval = DEFAULT_POLL_INTERVAL
	}
	ctx, cancel := context.WithCancel(ctxOutside)
	id, err := uuid.NewRandom()
	if err != nil {
		cancel()
		return Home{}, err
	}
	home := dssub.CreateSubHome[Update]()
	reqC := home.ReqC
	singleReqC := make(chan chan<- Update)
	go loopInternal(ctx, cancel, home, client, commitment, interval, id, singleReqC)
	return Home{id: id, ctx: ctx, reqC: reqC, singleReqC: singleReqC}, nil
}

// Latest blocks until the tracker has observed at least one blockhash.
func (h Home) Latest() (Update, error) {
	if err := h.ctx.Err(); err != nil {
		return Update{}, err
	}
	doneC := h.ctx.Done()
	respC := make(chan Update, 1)
	select {
	case <-doneC:
		return Update{}, errors.New("canceled")
	case h.singleReqC <- respC:
	}
	select {
	case <-doneC:
		return Update{}, errors.New("canceled")
	case ans := <-respC:
		return ans, nil
	}
}

func (h Home) OnUpdate() dssub.Subscription[Update] {
	return dssub.SubscriptionRequest(h.reqC, func(Update) bool { return true })
}

func (h Home) CloseSignal() <-chan struct{} {
	return h.ctx.Done()
}

func loopInternal(
	ctx context.Context,
	cancel context.CancelFunc,
	home *dssub.SubHome[Update],
	client Client,
	commitment sgorpc.CommitmentType,
	interval time.Duration,
	id uuid.UUID,
	singleReqC <-chan chan<- Update,
) {
	defer cancel()
	doneC := ctx.Done()
	reqC := home.ReqC
	deleteC := home.DeleteC
	defer home.Close()

	log.Debugf("starting blockhash tracker id=%s", id)

	var latest Update
	var hasLatest bool
	// single-shot readers that arrived before the first fetch
	var pending []chan<- Update

	fetch := func() {
		fetchCtx, fetchCancel := context.WithTimeout(ctx, interval)
		defer fetchCancel()
		result, err := client.GetLatestBlockhash(fetchCtx, commitment)
		if err != nil {
			log.Debugf("blockhash tracker id=%s: %v", id, err)
			return
		}
		if result == nil || result.Value == nil {
			return
		}
		if hasLatest && result.Value.Blockhash == latest.Blockhash {
			return
		}
		latest = Update{
			Blockhash:            result.Value.Blockhash,
			LastValidBlockHeight: result.Value.LastValidBlockHeight,
			FetchedAt:            time.Now(),
		}
		hasLatest = true
		for _, respC := range pending {
			respC <- latest
		}
		pending = nil
		home.Broadcast(latest)
	}

	fetch()
	nextC := time.After(interval)
out:
	for {
		select {
		case <-doneC:
			break out
		case <-nextC:
			fetch()
			nextC = time.After(interval)
		case respC := <-singleReqC:
			if hasLatest {
				respC <- latest
			} else {
				pending = append(pending, respC)
			}
		case r := <-reqC:
			home.Receive(r)
		case sid := <-deleteC:
			home.Delete(sid)
		}
	}
	log.Debugf("blockhash tracker id=%s closed", id)
}
