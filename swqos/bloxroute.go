package swqos

import (
	"context"
	"net/http"
	"time"

	sgo "github.com/gagliardetto/solana-go"
)

var bloxrouteEndpoints = map[string]string{
	"":        "https://ny.solana.dex.blxrbdn.com",
	"ny":      "https://ny.solana.dex.blxrbdn.com",
	"uk":      "https://uk.solana.dex.blxrbdn.com",
	"germany": "https://germany.solana.dex.blxrbdn.com",
}

// BloxrouteClient shares the REST dialect with NextBlock.
type BloxrouteClient struct {
	wire *wireClient
	tips *tipPool
}

func NewBloxrouteClient(cfg Config) (*BloxrouteClient, error) {
	base, err := resolveEndpoint(cfg, bloxrouteEndpoints)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if cfg.Credential != "" {
		header.Set("Authorization", cfg.Credential)
	}
	return &BloxrouteClient{
		wire: newWireClient(base+"/api/v2/submit", header, cfg.SubmitTimeout),
		tips: newTipPool(KindBloxroute, bloxrouteTipAccounts, time.Now().UnixNano()),
	}, nil
}

func (b *BloxrouteClient) Identity() Kind {
	return KindBloxroute
}

func (b *BloxrouteClient) Disabled() bool {
	return false
}

func (b *BloxrouteClient) TipAccount() (sgo.PublicKey, error) {
	return b.tips.Pick()
}

func (b *BloxrouteClient) Submit(ctx context.Context, req SubmitRequest) Outcome {
	return restSubmit(ctx, b.wire, KindBloxroute, req, time.Now())
}

func (b *BloxrouteClient) SubmitBatch(ctx context.Context, reqs []SubmitRequest) []Outcome {
	return submitEach(ctx, b, reqs)
}
