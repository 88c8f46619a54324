package util

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"os"
	"runtime"
	"strconv"

	sgo "github.com/gagliardetto/solana-go"
	sgorpc "github.com/gagliardetto/solana-go/rpc"
)

func GetGID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

type RpcConfig struct {
	Rpc     string
	Headers http.Header
}

func RpcConfigFromEnv() (*RpcConfig, error) {
	var present bool
	config := new(RpcConfig)
	config.Rpc, present = os.LookupEnv("RPC_URL")
	if !present {
		return nil, errors.New("no rpc url")
	}
	return config, nil
}

func RpcConnect(ctx context.Context, config *RpcConfig) (*sgorpc.Client, error) {
	var err error
	if config == nil {
		config, err = RpcConfigFromEnv()
		if err != nil {
			return nil, err
		}
	}
	headers := make(map[string]string)
	for k := range config.Headers {
		headers[k] = config.Headers.Get(k)
	}
	rpcClient := sgorpc.NewWithHeaders(config.Rpc, headers)
	if _, err = rpcClient.GetVersion(ctx); err != nil {
		return nil, err
	}
	return rpcClient, nil
}

// ReadKeypair loads a private key from the standard json keygen file format.
func ReadKeypair(fp string) (sgo.PrivateKey, error) {
	if fp == "" {
		return nil, errors.New("no keypair path")
	}
	return sgo.PrivateKeyFromSolanaKeygenFile(fp)
}
