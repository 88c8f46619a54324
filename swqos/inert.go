package swqos

import (
	"context"
	"errors"
	"time"

	sgo "github.com/gagliardetto/solana-go"
)

var ErrProviderDisabled = errors.New("provider is on the denylist")

// InertClient stands in for a denylisted provider kind. It keeps the
// configured provider set uniform and observable while guaranteeing no
// traffic leaves the process for that relay.
type InertClient struct {
	kind Kind
}

func NewInertClient(kind Kind) *InertClient {
	return &InertClient{kind: kind}
}

func (i *InertClient) Identity() Kind {
	return i.kind
}

func (i *InertClient) Disabled() bool {
	return true
}

func (i *InertClient) TipAccount() (sgo.PublicKey, error) {
	return sgo.PublicKey{}, ErrProviderDisabled
}

func (i *InertClient) Submit(ctx context.Context, req SubmitRequest) Outcome {
	return submitFailure(i.kind, req.Signature, time.Now(), ErrProviderDisabled)
}

func (i *InertClient) SubmitBatch(ctx context.Context, reqs []SubmitRequest) []Outcome {
	return submitEach(ctx, i, reqs)
}
