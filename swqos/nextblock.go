package swqos

import (
	"context"
	"net/http"
	"time"

	sgo "github.com/gagliardetto/solana-go"
	json "github.com/goccy/go-json"
)

var nextBlockEndpoints = map[string]string{
	"":    "https://ny.nextblock.io",
	"ny":  "https://ny.nextblock.io",
	"fra": "https://fra.nextblock.io",
}

// NextBlockClient uses a REST dialect: the transaction travels inside a JSON
// wrapper and the API key rides the Authorization header.
type NextBlockClient struct {
	wire *wireClient
	tips *tipPool
}

type restSubmitBody struct {
	Transaction restTxContent `json:"transaction"`
	SkipPreFlight bool        `json:"skipPreFlight"`
}

type restTxContent struct {
	Content string `json:"content"`
}

type restSubmitResponse struct {
	Signature string `json:"signature"`
	Message   string `json:"message"`
	Reason    string `json:"reason"`
}

func NewNextBlockClient(cfg Config) (*NextBlockClient, error) {
	base, err := resolveEndpoint(cfg, nextBlockEndpoints)
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	if cfg.Credential != "" {
		header.Set("Authorization", cfg.Credential)
	}
	return &NextBlockClient{
		wire: newWireClient(base+"/api/v2/submit", header, cfg.SubmitTimeout),
		tips: newTipPool(KindNextBlock, nextBlockTipAccounts, time.Now().UnixNano()),
	}, nil
}

func (n *NextBlockClient) Identity() Kind {
	return KindNextBlock
}

func (n *NextBlockClient) Disabled() bool {
	return false
}

func (n *NextBlockClient) TipAccount() (sgo.PublicKey, error) {
	return n.tips.Pick()
}

func (n *NextBlockClient) Submit(ctx context.Context, req SubmitRequest) Outcome {
	sentAt := time.Now()
	out := restSubmit(ctx, n.wire, KindNextBlock, req, sentAt)
	return out
}

func (n *NextBlockClient) SubmitBatch(ctx context.Context, reqs []SubmitRequest) []Outcome {
	return submitEach(ctx, n, reqs)
}

// restSubmit implements the submit flow shared by the REST-dialect relays.
func restSubmit(ctx context.Context, wire *wireClient, kind Kind, req SubmitRequest, sentAt time.Time) Outcome {
	body, err := json.Marshal(restSubmitBody{
		Transaction:   restTxContent{Content: encodePayload(req.Payload, encodingBase64)},
		SkipPreFlight: true,
	})
	if err != nil {
		return submitFailure(kind, req.Signature, sentAt, &ProviderError{Provider: kind, Cause: err})
	}
	respBody, status, err := wire.post(ctx, body)
	if err != nil {
		return submitFailure(kind, req.Signature, sentAt, &ProviderError{Provider: kind, Cause: err})
	}
	var parsed restSubmitResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return submitFailure(kind, req.Signature, sentAt, &ProviderError{
			Provider: kind, Status: status, Message: "malformed response body",
		})
	}
	if status < 200 || status >= 300 {
		msg := parsed.Message
		if msg == "" {
			msg = parsed.Reason
		}
		if msg == "" {
			msg = "non-success status"
		}
		return submitFailure(kind, req.Signature, sentAt, &ProviderError{Provider: kind, Status: status, Message: msg})
	}
	if parsed.Signature == "" {
		return submitFailure(kind, req.Signature, sentAt, &ProviderError{
			Provider: kind, Status: status, Message: "response carries no signature",
		})
	}
	return submitSuccess(kind, req.Signature, sentAt)
}
