package swqos

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sgo "github.com/gagliardetto/solana-go"
)

var temporalEndpoints = map[string]string{
	"":    "https://ewr1.secure.nozomi.temporal.xyz",
	"ewr": "https://ewr1.secure.nozomi.temporal.xyz",
	"ams": "https://ams1.secure.nozomi.temporal.xyz",
	"fra": "https://fra2.secure.nozomi.temporal.xyz",
	"pit": "https://pit1.secure.nozomi.temporal.xyz",
}

// TemporalClient sends through the Nozomi gateway: JSON-RPC body, API key
// in the query string, base64 encoding.
type TemporalClient struct {
	wire *wireClient
	tips *tipPool
}

func NewTemporalClient(cfg Config) (*TemporalClient, error) {
	base, err := resolveEndpoint(cfg, temporalEndpoints)
	if err != nil {
		return nil, err
	}
	url := base
	if cfg.Credential != "" {
		url = fmt.Sprintf("%s/?c=%s", base, cfg.Credential)
	}
	return &TemporalClient{
		wire: newWireClient(url, http.Header{}, cfg.SubmitTimeout),
		tips: newTipPool(KindTemporal, temporalTipAccounts, time.Now().UnixNano()),
	}, nil
}

func (t *TemporalClient) Identity() Kind {
	return KindTemporal
}

func (t *TemporalClient) Disabled() bool {
	return false
}

func (t *TemporalClient) TipAccount() (sgo.PublicKey, error) {
	return t.tips.Pick()
}

func (t *TemporalClient) Submit(ctx context.Context, req SubmitRequest) Outcome {
	sentAt := time.Now()
	body, err := sendTransactionBody(req.Payload, encodingBase64)
	if err != nil {
		return submitFailure(KindTemporal, req.Signature, sentAt, &ProviderError{Provider: KindTemporal, Cause: err})
	}
	respBody, status, err := t.wire.post(ctx, body)
	if err != nil {
		return submitFailure(KindTemporal, req.Signature, sentAt, &ProviderError{Provider: KindTemporal, Cause: err})
	}
	if err := decodeRPCOutcome(KindTemporal, req.Signature, respBody, status); err != nil {
		return submitFailure(KindTemporal, req.Signature, sentAt, err)
	}
	return submitSuccess(KindTemporal, req.Signature, sentAt)
}

func (t *TemporalClient) SubmitBatch(ctx context.Context, reqs []SubmitRequest) []Outcome {
	return submitEach(ctx, t, reqs)
}
