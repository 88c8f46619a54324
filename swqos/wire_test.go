package swqos_test

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
)

func TestJitoSubmit(t *testing.T) {
	payload := []byte("signed transaction bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/transactions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			JsonRpc string `json:"jsonrpc"`
			Method  string `json:"method"`
			Params  []any  `json:"params"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "sendTransaction", req.Method)
		require.NotEmpty(t, req.Params)
		assert.Equal(t, base64.StdEncoding.EncodeToString(payload), req.Params[0])

		io.WriteString(w, `{"jsonrpc":"2.0","result":"ok","id":1}`)
	}))
	defer srv.Close()

	client, err := swqos.NewJitoClient(swqos.Config{Kind: "jito", Endpoint: srv.URL})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: payload})
	assert.True(t, out.Ok())
	assert.Equal(t, swqos.KindJito, out.Provider)
	assert.Greater(t, out.Latency.Nanoseconds(), int64(0))
}

func TestJitoSubmitCredential(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("uuid"))
		assert.Equal(t, "secret", r.Header.Get("x-jito-auth"))
		io.WriteString(w, `{"jsonrpc":"2.0","result":"ok","id":1}`)
	}))
	defer srv.Close()

	client, err := swqos.NewJitoClient(swqos.Config{Kind: "jito", Endpoint: srv.URL, Credential: "secret"})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: []byte{1}})
	assert.True(t, out.Ok())
}

func TestJitoSubmitRpcError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"jsonrpc":"2.0","error":{"code":-32602,"message":"decode failure"},"id":1}`)
	}))
	defer srv.Close()

	client, err := swqos.NewJitoClient(swqos.Config{Kind: "jito", Endpoint: srv.URL})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: []byte{1}})
	require.False(t, out.Ok())
	var perr *swqos.ProviderError
	require.True(t, errors.As(out.Err, &perr))
	assert.Contains(t, perr.Message, "decode failure")
}

func TestJitoSubmitTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client, err := swqos.NewJitoClient(swqos.Config{Kind: "jito", Endpoint: srv.URL})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: []byte{1}})
	require.False(t, out.Ok())
	var perr *swqos.ProviderError
	require.True(t, errors.As(out.Err, &perr))
	assert.Error(t, perr.Cause)
}

func TestJitoSubmitBatchIsOneBundle(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, "/api/v1/bundles", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Method string `json:"method"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "sendBundle", req.Method)
		io.WriteString(w, `{"jsonrpc":"2.0","result":"bundleid","id":1}`)
	}))
	defer srv.Close()

	client, err := swqos.NewJitoClient(swqos.Config{Kind: "jito", Endpoint: srv.URL})
	require.NoError(t, err)

	outs := client.SubmitBatch(context.Background(), []swqos.SubmitRequest{
		{Payload: []byte{1}}, {Payload: []byte{2}},
	})
	require.Len(t, outs, 2)
	assert.Equal(t, 1, calls)
	for _, out := range outs {
		assert.True(t, out.Ok())
	}
}

func TestNextBlockSubmit(t *testing.T) {
	payload := []byte{7, 7, 7}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v2/submit", r.URL.Path)
		assert.Equal(t, "api-key", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Transaction struct {
				Content string `json:"content"`
			} `json:"transaction"`
			SkipPreFlight bool `json:"skipPreFlight"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, base64.StdEncoding.EncodeToString(payload), req.Transaction.Content)
		assert.True(t, req.SkipPreFlight)

		io.WriteString(w, `{"signature":"abc"}`)
	}))
	defer srv.Close()

	client, err := swqos.NewNextBlockClient(swqos.Config{Kind: "nextblock", Endpoint: srv.URL, Credential: "api-key"})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: payload})
	assert.True(t, out.Ok())
}

func TestNextBlockSubmitRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		io.WriteString(w, `{"message":"invalid api key"}`)
	}))
	defer srv.Close()

	client, err := swqos.NewNextBlockClient(swqos.Config{Kind: "nextblock", Endpoint: srv.URL})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: []byte{1}})
	require.False(t, out.Ok())
	var perr *swqos.ProviderError
	require.True(t, errors.As(out.Err, &perr))
	assert.Equal(t, http.StatusForbidden, perr.Status)
	assert.Contains(t, perr.Message, "invalid api key")
}

func TestZeroSlotSubmitUsesBase58AndApiKey(t *testing.T) {
	payload := []byte{9, 8, 7, 6}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "key123", r.URL.Query().Get("api-key"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Params []any `json:"params"`
		}
		require.NoError(t, json.Unmarshal(body, &req))
		require.NotEmpty(t, req.Params)
		assert.Equal(t, base58.Encode(payload), req.Params[0])

		io.WriteString(w, `{"jsonrpc":"2.0","result":"ok","id":1}`)
	}))
	defer srv.Close()

	client, err := swqos.NewZeroSlotClient(swqos.Config{Kind: "0slot", Endpoint: srv.URL, Credential: "key123"})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: payload})
	assert.True(t, out.Ok())
}

func TestTemporalSubmitCredentialQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "nozomi-key", r.URL.Query().Get("c"))
		io.WriteString(w, `{"jsonrpc":"2.0","result":"ok","id":1}`)
	}))
	defer srv.Close()

	client, err := swqos.NewTemporalClient(swqos.Config{Kind: "temporal", Endpoint: srv.URL, Credential: "nozomi-key"})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: []byte{1}})
	assert.True(t, out.Ok())
}

func TestBloxrouteSubmit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "bx-key", r.Header.Get("Authorization"))
		io.WriteString(w, `{"signature":"abc"}`)
	}))
	defer srv.Close()

	client, err := swqos.NewBloxrouteClient(swqos.Config{Kind: "bloxroute", Endpoint: srv.URL, Credential: "bx-key"})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: []byte{1}})
	assert.True(t, out.Ok())
}

func TestMalformedResponseBodyStaysInOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>gateway error</html>`)
	}))
	defer srv.Close()

	client, err := swqos.NewJitoClient(swqos.Config{Kind: "jito", Endpoint: srv.URL})
	require.NoError(t, err)

	out := client.Submit(context.Background(), swqos.SubmitRequest{Payload: []byte{1}})
	require.False(t, out.Ok())
	var perr *swqos.ProviderError
	require.True(t, errors.As(out.Err, &perr))
	assert.Contains(t, perr.Message, "malformed")
}
