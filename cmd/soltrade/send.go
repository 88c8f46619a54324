package main

import (
	"errors"
	"fmt"
	"os"

	sgo "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	sgorpc "github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/IAliceBobI/sol-trade-sdk-sub001/state/blockhash"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/strategy"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/swqos"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/trade"
	"github.com/IAliceBobI/sol-trade-sdk-sub001/util"
)

type Send struct {
	Payer        string  `name:"payer" required:"" help:"File path to the payer keypair."`
	To           string  `arg:"" name:"to" help:"Destination account."`
	Amount       uint64  `arg:"" name:"amount" help:"Transfer amount in lamports."`
	Providers    string  `option:"" name:"providers" required:"" help:"Yaml file listing the relay providers."`
	Deny         []string `option:"" name:"deny" help:"Provider kinds to keep configured but inert."`
	CuLimit      uint32  `option:"" name:"cu-limit" default:"200000" help:"Compute unit limit."`
	CuPrice      uint64  `option:"" name:"cu-price" default:"1000" help:"Compute unit price in micro-lamports."`
	Tip          string  `option:"" name:"tip" default:"0.001" help:"Provider tip in SOL."`
	NoTip        bool    `option:"" name:"no-tip" help:"Send without tips via the plain rpc provider only."`
	DispatchOnly bool    `option:"" name:"dispatch-only" help:"Return after submission without waiting for confirmation."`
	Split        bool    `option:"" name:"split" help:"Split race variants across providers instead of broadcasting."`
}

type feeSeed struct {
	CuLimit   uint32 `yaml:"cu_limit"`
	CuPrice   uint64 `yaml:"cu_price"`
	BuyTip    string `yaml:"buy_tip"`
	SellTip   string `yaml:"sell_tip"`
	MaxTxSize int    `yaml:"max_tx_size"`
}

type providerDoc struct {
	Providers []swqos.Config `yaml:"providers"`
	Fees      *feeSeed       `yaml:"fees,omitempty"`
}

func loadProviderConfig(fp string) (*providerDoc, error) {
	data, err := os.ReadFile(fp)
	if err != nil {
		return nil, err
	}
	doc := new(providerDoc)
	if err = yaml.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	if len(doc.Providers) == 0 {
		return nil, errors.New("provider config lists no providers")
	}
	return doc, nil
}

// seedStrategies installs the fee table: the yaml fees block when present,
// the command line flags otherwise.
func (r *Send) seedStrategies(store *strategy.Store, doc *providerDoc, flagTip decimal.Decimal) error {
	if doc.Fees == nil {
		store.SetGlobal(strategy.DirectionBuy, r.CuLimit, r.CuPrice, flagTip, flagTip, 0)
		return nil
	}
	buyTip, err := decimal.NewFromString(doc.Fees.BuyTip)
	if err != nil {
		return err
	}
	sellTip := buyTip
	if doc.Fees.SellTip != "" {
		sellTip, err = decimal.NewFromString(doc.Fees.SellTip)
		if err != nil {
			return err
		}
	}
	store.SetGlobal(strategy.DirectionBuy, doc.Fees.CuLimit, doc.Fees.CuPrice, buyTip, sellTip, doc.Fees.MaxTxSize)
	return nil
}

func parseDenylist(args []string) ([]swqos.Kind, error) {
	out := make([]swqos.Kind, 0, len(args))
	for _, a := range args {
		k, err := swqos.ParseKind(a)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

func (r *Send) Run(kongCtx *CLIContext) error {
	ctx := kongCtx.Ctx

	payer, err := util.ReadKeypair(r.Payer)
	if err != nil {
		return err
	}
	dst, err := sgo.PublicKeyFromBase58(r.To)
	if err != nil {
		return err
	}
	tip, err := decimal.NewFromString(r.Tip)
	if err != nil {
		return err
	}

	rpcClient, err := util.RpcConnect(ctx, &util.RpcConfig{
		Rpc: kongCtx.Clients.RpcUrl, Headers: kongCtx.Clients.Headers,
	})
	if err != nil {
		return err
	}

	doc, err := loadProviderConfig(r.Providers)
	if err != nil {
		return err
	}
	denylist, err := parseDenylist(r.Deny)
	if err != nil {
		return err
	}
	registry, err := swqos.BuildRegistry(doc.Providers, rpcClient, denylist)
	if err != nil {
		return err
	}

	kinds := make([]swqos.Kind, 0, registry.Size())
	for _, p := range registry.All() {
		kinds = append(kinds, p.Identity())
	}
	store := strategy.CreateStore(kinds...)
	if err = r.seedStrategies(store, doc, tip); err != nil {
		return err
	}
	store.Log()

	bh, err := blockhash.Track(ctx, rpcClient, sgorpc.CommitmentConfirmed, 0)
	if err != nil {
		return err
	}

	policy := trade.RaceBroadcast
	if r.Split {
		policy = trade.RaceSplit
	}
	engine := trade.CreateEngine(ctx, registry, store, rpcClient, nil, trade.EngineConfig{
		RacePolicy: policy,
	}).WithBlockhashHome(bh)

	mode := trade.ModeWaitConfirm
	if r.DispatchOnly {
		mode = trade.ModeDispatchOnly
	}
	result, err := engine.Execute(ctx, &trade.Request{
		Direction: strategy.DirectionBuy,
		Instructions: []sgo.Instruction{
			system.NewTransferInstruction(r.Amount, payer.PublicKey(), dst).Build(),
		},
		Signer:  payer,
		Mode:    mode,
		WithTip: !r.NoTip,
	})
	if err != nil {
		return err
	}

	for _, sig := range result.Signatures {
		fmt.Printf("signature: %s\n", sig)
	}
	if !result.Success {
		log.Errorf("race lost: %v", result.LastErr)
		return errors.New("transfer did not land")
	}
	fmt.Println("confirmed")
	return nil
}
