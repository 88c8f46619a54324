package swqos

import (
	"context"
	"fmt"
	"net/http"
	"time"

	sgo "github.com/gagliardetto/solana-go"
)

var zeroSlotEndpoints = map[string]string{
	"":    "https://ny.0slot.trade",
	"ny":  "https://ny.0slot.trade",
	"de":  "https://de.0slot.trade",
	"ams": "https://ams.0slot.trade",
	"jp":  "https://jp.0slot.trade",
}

// ZeroSlotClient speaks plain JSON-RPC with the API key carried in the
// query string. The relay expects base58 transaction encoding.
type ZeroSlotClient struct {
	wire *wireClient
	tips *tipPool
}

func NewZeroSlotClient(cfg Config) (*ZeroSlotClient, error) {
	base, err := resolveEndpoint(cfg, zeroSlotEndpoints)
	if err != nil {
		return nil, err
	}
	url := base
	if cfg.Credential != "" {
		url = fmt.Sprintf("%s?api-key=%s", base, cfg.Credential)
	}
	return &ZeroSlotClient{
		wire: newWireClient(url, http.Header{}, cfg.SubmitTimeout),
		tips: newTipPool(KindZeroSlot, zeroSlotTipAccounts, time.Now().UnixNano()),
	}, nil
}

func (z *ZeroSlotClient) Identity() Kind {
	return KindZeroSlot
}

func (z *ZeroSlotClient) Disabled() bool {
	return false
}

func (z *ZeroSlotClient) TipAccount() (sgo.PublicKey, error) {
	return z.tips.Pick()
}

func (z *ZeroSlotClient) Submit(ctx context.Context, req SubmitRequest) Outcome {
	sentAt := time.Now()
	body, err := sendTransactionBody(req.Payload, encodingBase58)
	if err != nil {
		return submitFailure(KindZeroSlot, req.Signature, sentAt, &ProviderError{Provider: KindZeroSlot, Cause: err})
	}
	respBody, status, err := z.wire.post(ctx, body)
	if err != nil {
		return submitFailure(KindZeroSlot, req.Signature, sentAt, &ProviderError{Provider: KindZeroSlot, Cause: err})
	}
	if err := decodeRPCOutcome(KindZeroSlot, req.Signature, respBody, status); err != nil {
		return submitFailure(KindZeroSlot, req.Signature, sentAt, err)
	}
	return submitSuccess(KindZeroSlot, req.Signature, sentAt)
}

func (z *ZeroSlotClient) SubmitBatch(ctx context.Context, reqs []SubmitRequest) []Outcome {
	return submitEach(ctx, z, reqs)
}
