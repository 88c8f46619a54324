package swqos

import (
	"encoding/base64"
	"fmt"

	sgo "github.com/gagliardetto/solana-go"
	json "github.com/goccy/go-json"
	"github.com/mr-tron/base58"
)

// Several relays speak plain Solana JSON-RPC with their own endpoints and
// authentication bolted on. The helpers here cover that shared dialect.

type rpcRequest struct {
	JsonRpc string `json:"jsonrpc"`
	Id      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcEnvelope struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcErrorBody   `json:"error"`
}

type rpcErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wireEncoding string

const (
	encodingBase64 wireEncoding = "base64"
	encodingBase58 wireEncoding = "base58"
)

func encodePayload(payload []byte, encoding wireEncoding) string {
	if encoding == encodingBase58 {
		return base58.Encode(payload)
	}
	return base64.StdEncoding.EncodeToString(payload)
}

func sendTransactionBody(payload []byte, encoding wireEncoding) ([]byte, error) {
	return json.Marshal(rpcRequest{
		JsonRpc: "2.0",
		Id:      1,
		Method:  "sendTransaction",
		Params: []any{
			encodePayload(payload, encoding),
			map[string]any{"encoding": string(encoding)},
		},
	})
}

// decodeRPCOutcome folds a JSON-RPC response into the submission outcome
// contract: any error payload becomes a ProviderError, never a panic or a
// thrown error.
func decodeRPCOutcome(kind Kind, sig sgo.Signature, body []byte, status int) error {
	var env rpcEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return &ProviderError{
			Provider: kind,
			Status:   status,
			Message:  fmt.Sprintf("malformed response body: %.120s", string(body)),
		}
	}
	if env.Error != nil {
		return &ProviderError{
			Provider: kind,
			Status:   status,
			Message:  fmt.Sprintf("rpc error %d: %s", env.Error.Code, env.Error.Message),
		}
	}
	if status < 200 || status >= 300 {
		return &ProviderError{Provider: kind, Status: status, Message: "non-success status"}
	}
	if len(env.Result) == 0 {
		return &ProviderError{Provider: kind, Status: status, Message: "response carries neither result nor error"}
	}
	return nil
}
