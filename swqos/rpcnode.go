package swqos

import (
	"context"
	"time"

	sgo "github.com/gagliardetto/solana-go"
	sgorpc "github.com/gagliardetto/solana-go/rpc"
)

// TxSender is the slice of the ledger RPC client used by the plain-RPC
// fallback path. *rpc.Client satisfies it.
type TxSender interface {
	SendRawTransactionWithOpts(ctx context.Context, rawTx []byte, opts sgorpc.TransactionOpts) (sgo.Signature, error)
}

// RpcNodeClient is the un-accelerated path: transactions go straight to a
// regular validator RPC node. It charges no tip and therefore has no tip
// account pool.
type RpcNodeClient struct {
	sender TxSender
}

func NewRpcNodeClient(sender TxSender) *RpcNodeClient {
	return &RpcNodeClient{sender: sender}
}

func (r *RpcNodeClient) Identity() Kind {
	return KindDefault
}

func (r *RpcNodeClient) Disabled() bool {
	return false
}

func (r *RpcNodeClient) TipAccount() (sgo.PublicKey, error) {
	return sgo.PublicKey{}, ErrNoTipAccount
}

func (r *RpcNodeClient) Submit(ctx context.Context, req SubmitRequest) Outcome {
	sentAt := time.Now()
	_, err := r.sender.SendRawTransactionWithOpts(ctx, req.Payload, sgorpc.TransactionOpts{
		SkipPreflight: true,
	})
	if err != nil {
		return submitFailure(KindDefault, req.Signature, sentAt, &ProviderError{Provider: KindDefault, Cause: err})
	}
	return submitSuccess(KindDefault, req.Signature, sentAt)
}

func (r *RpcNodeClient) SubmitBatch(ctx context.Context, reqs []SubmitRequest) []Outcome {
	return submitEach(ctx, r, reqs)
}
