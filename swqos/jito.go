package swqos

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sgo "github.com/gagliardetto/solana-go"
	json "github.com/goccy/go-json"
	log "github.com/sirupsen/logrus"
)

// Jito block-engine regions. The default resolves anycast to the nearest
// region; pinning a region shaves the extra hop for latency-sensitive flows.
var jitoEndpoints = map[string]string{
	"":          "https://mainnet.block-engine.jito.wtf",
	"amsterdam": "https://amsterdam.mainnet.block-engine.jito.wtf",
	"frankfurt": "https://frankfurt.mainnet.block-engine.jito.wtf",
	"london":    "https://london.mainnet.block-engine.jito.wtf",
	"ny":        "https://ny.mainnet.block-engine.jito.wtf",
	"slc":       "https://slc.mainnet.block-engine.jito.wtf",
	"tokyo":     "https://tokyo.mainnet.block-engine.jito.wtf",
}

type JitoClient struct {
	authToken string
	wire      *wireClient
	bundles   *wireClient
	tips      *tipPool
}

func NewJitoClient(cfg Config) (*JitoClient, error) {
	base, err := resolveEndpoint(cfg, jitoEndpoints)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	txURL := base + "/api/v1/transactions"
	bundleURL := base + "/api/v1/bundles"
	if cfg.Credential != "" {
		header.Set("x-jito-auth", cfg.Credential)
		txURL = fmt.Sprintf("%s?uuid=%s", txURL, cfg.Credential)
		bundleURL = fmt.Sprintf("%s?uuid=%s", bundleURL, cfg.Credential)
	}
	return &JitoClient{
		authToken: cfg.Credential,
		wire:      newWireClient(txURL, header, cfg.SubmitTimeout),
		bundles:   newWireClient(bundleURL, header.Clone(), cfg.SubmitTimeout),
		tips:      newTipPool(KindJito, jitoTipAccounts, time.Now().UnixNano()),
	}, nil
}

func (j *JitoClient) Identity() Kind {
	return KindJito
}

func (j *JitoClient) Disabled() bool {
	return false
}

func (j *JitoClient) TipAccount() (sgo.PublicKey, error) {
	return j.tips.Pick()
}

func (j *JitoClient) Submit(ctx context.Context, req SubmitRequest) Outcome {
	sentAt := time.Now()
	body, err := sendTransactionBody(req.Payload, encodingBase64)
	if err != nil {
		return submitFailure(KindJito, req.Signature, sentAt, &ProviderError{Provider: KindJito, Cause: err})
	}
	respBody, status, err := j.wire.post(ctx, body)
	if err != nil {
		return submitFailure(KindJito, req.Signature, sentAt, &ProviderError{Provider: KindJito, Cause: err})
	}
	if err := decodeRPCOutcome(KindJito, req.Signature, respBody, status); err != nil {
		return submitFailure(KindJito, req.Signature, sentAt, err)
	}
	log.Debugf("[jito] submitted %s in %s", req.Signature, time.Since(sentAt))
	return submitSuccess(KindJito, req.Signature, sentAt)
}

// SubmitBatch sends the transactions as one atomic bundle; the bundle either
// lands whole or not at all.
func (j *JitoClient) SubmitBatch(ctx context.Context, reqs []SubmitRequest) []Outcome {
	sentAt := time.Now()
	encoded := make([]string, 0, len(reqs))
	for _, req := range reqs {
		encoded = append(encoded, encodePayload(req.Payload, encodingBase64))
	}
	body, err := json.Marshal(rpcRequest{
		JsonRpc: "2.0",
		Id:      1,
		Method:  "sendBundle",
		Params:  []any{encoded, map[string]any{"encoding": "base64"}},
	})
	outcomes := make([]Outcome, 0, len(reqs))
	fail := func(err error) []Outcome {
		for _, req := range reqs {
			outcomes = append(outcomes, submitFailure(KindJito, req.Signature, sentAt, err))
		}
		return outcomes
	}
	if err != nil {
		return fail(&ProviderError{Provider: KindJito, Cause: err})
	}
	respBody, status, err := j.bundles.post(ctx, body)
	if err != nil {
		return fail(&ProviderError{Provider: KindJito, Cause: err})
	}
	if err := decodeRPCOutcome(KindJito, sgo.Signature{}, respBody, status); err != nil {
		return fail(err)
	}
	for _, req := range reqs {
		outcomes = append(outcomes, submitSuccess(KindJito, req.Signature, sentAt))
	}
	return outcomes
}
