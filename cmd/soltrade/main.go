package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

type CLIContext struct {
	Clients *Clients
	Ctx     context.Context
}

type debugFlag bool

type RpcUrl string
type EnvFile string
type MetricsListen string

var cli struct {
	Verbose       debugFlag     `help:"Set logging to verbose." short:"v" default:"false"`
	EnvFile       EnvFile       `option:"" name:"env" help:"Load environment variables from this file before anything else."`
	RpcUrl        RpcUrl        `option:"" name:"rpc" help:"Connection information to a Solana validator Rpc endpoint with format protocol://host:port (ie http://localhost:8899)"`
	MetricsListen MetricsListen `option:"" name:"metrics-listen" help:"Serve prometheus metrics on this address (ie 127.0.0.1:9102)."`

	Send      Send      `cmd:"" name:"send" help:"Race a SOL transfer across the configured relays."`
	Providers Providers `cmd:"" name:"providers" help:"List the configured relay providers and fee strategies."`
}

type Clients struct {
	ctx     context.Context
	RpcUrl  string
	Headers http.Header
}

func (v EnvFile) AfterApply(clients *Clients) error {
	if len(v) == 0 {
		return nil
	}
	return godotenv.Load(string(v))
}

func (v RpcUrl) AfterApply(clients *Clients) error {
	clients.RpcUrl = string(v)
	if len(clients.RpcUrl) == 0 {
		clients.RpcUrl = os.Getenv("RPC_URL")
	}
	return nil
}

func (v MetricsListen) AfterApply(clients *Clients) error {
	if len(v) == 0 {
		return nil
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(string(v), mux); err != nil {
			log.Errorf("metrics listener: %v", err)
		}
	}()
	return nil
}

func (d debugFlag) AfterApply(clients *Clients) error {
	if d {
		log.SetLevel(log.DebugLevel)
	} else {
		log.SetLevel(log.InfoLevel)
	}
	return nil
}

func main() {

	signalC := make(chan os.Signal, 1)
	signal.Notify(signalC, syscall.SIGTERM, syscall.SIGINT)
	ctx, cancel := context.WithCancel(context.Background())
	go loopSignal(ctx, cancel, signalC)
	clients := &Clients{ctx: ctx, Headers: http.Header{}}
	kongCtx := kong.Parse(&cli, kong.Bind(clients))
	err := kongCtx.Run(&CLIContext{Ctx: ctx, Clients: clients})
	kongCtx.FatalIfErrorf(err)
}

func loopSignal(ctx context.Context, cancel context.CancelFunc, signalC <-chan os.Signal) {
	defer cancel()
	doneC := ctx.Done()
	select {
	case <-doneC:
	case s := <-signalC:
		os.Stderr.WriteString(fmt.Sprintf("%s\n", s.String()))
	}
}
