package swqos

import (
	"errors"
	"math/rand"
	"sync"

	sgo "github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Tip account pools published by each relay operator. Any account in a pool
// is a valid payment target; picking one at random spreads write contention
// across the set.
var jitoTipAccounts = []string{
	"96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5",
	"HFqU5x63VTqvQss8hp11i4wVV8bD44PvwucfZ2bU7gRe",
	"Cw8CFyM9FkoMi7K7Crf6HNQqf4uEMzpKw6QNghXLvLkY",
	"ADaUMid9yfUytqMBgopwjb2DTLSokTSzL1zt6iGPaS49",
	"DfXygSm4jCyNCybVYYK6DwvWqjKee8pbDmJGcLWNDXjh",
	"ADuUkR4vqLUMWXxW9gh6D6L8pMSawimctcNZ5pGwDcEt",
	"DttWaMuVvTiduZRnguLF7jNxTgiMBZ1hyAumKUiL2KRL",
	"3AVi9Tg9Uo68tJfuvoKvqKNWKkC5wPdSSdeBnizKZ6jT",
}

var nextBlockTipAccounts = []string{
	"NextbLoCkVtMGcV47JzewQdvBpLqT9TxQFozQkN98pE",
	"NexTbLoCkWykbLuB1NkjXgFWkX9oAtcoagQegygXXA2",
	"NeXTBLoCKs9F1y5PJS9CKrFNNLU1keHW71rfh7KgA1X",
	"NexTBLockJYZ7QD7p2byrUa6df8ndV2WSd8GkbWqfbb",
}

var zeroSlotTipAccounts = []string{
	"Eb2KpSC8uMt9GmzyAEm5Eb1AAAgTjRaXWFjKyFXHZxF3",
	"FCjUJZ1qozm1e8romw216qyfQMaaWKxWsuySnumVCCNe",
	"6fQaVhYZA4w3MBSXjJ81Vf6W1EDYeUPXpgVQ6UQyU1Av",
	"4HiwLEP2Bzqj3hM2ENxJuzhcPCdsafwiet3oGkMkuQY4",
}

var temporalTipAccounts = []string{
	"TEMPaMeCRFAS9EKF53Jd6KpHxgL47uWLcpFArU1Fanq",
	"noz3jAjPiHuBPqiSPkkugaJDkJscPuRhYnSpbi8UvC4",
	"noz3str9KXfpKknefHji8L1mPgimezaiUyCHYMDv1GE",
	"noz6uoYCDijhu1V7cutCpwxNiSovEwLdRHPwmgCGDNo",
	"nozc5yT15LazbLTFVZzoNZCwjh3yUtW86LoUyqsBu4L",
}

var bloxrouteTipAccounts = []string{
	"HWEoBxYs7ssKuudEjzjmpfJVX7Dvi7wescFsVx2L5yoY",
	"95cfoy472fcQHaw4tPGBTKpn6ZQnfEPfBgDQx6gcRmRg",
	"3Rz8uD83QsU8wKvZbgWAPvCNDU6Fy8TSZTMcPm3RB6zt",
}

// MinTip is the floor each relay enforces before it will consider a
// transaction. Values are SOL.
var MinTip = map[Kind]decimal.Decimal{
	KindDefault:   decimal.Zero,
	KindJito:      decimal.RequireFromString("0.000001"),
	KindNextBlock: decimal.RequireFromString("0.001"),
	KindZeroSlot:  decimal.RequireFromString("0.0001"),
	KindTemporal:  decimal.RequireFromString("0.001"),
	KindBloxroute: decimal.RequireFromString("0.001"),
}

var ErrNoTipAccount = errors.New("provider has no tip accounts")

type tipPool struct {
	kind     Kind
	accounts []sgo.PublicKey

	mu  sync.Mutex
	rng *rand.Rand
}

func newTipPool(kind Kind, encoded []string, seed int64) *tipPool {
	accounts := make([]sgo.PublicKey, 0, len(encoded))
	for _, s := range encoded {
		pk, err := sgo.PublicKeyFromBase58(s)
		if err != nil {
			log.Warnf("swqos %s: dropping malformed tip account %s: %v", kind, s, err)
			continue
		}
		accounts = append(accounts, pk)
	}
	return &tipPool{
		kind:     kind,
		accounts: accounts,
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Pick returns a uniformly random account from the pool.
func (tp *tipPool) Pick() (sgo.PublicKey, error) {
	if len(tp.accounts) == 0 {
		return sgo.PublicKey{}, ErrNoTipAccount
	}
	tp.mu.Lock()
	i := tp.rng.Intn(len(tp.accounts))
	tp.mu.Unlock()
	return tp.accounts[i], nil
}

func (tp *tipPool) Size() int {
	return len(tp.accounts)
}

func tipAccountsFor(kind Kind) []string {
	switch kind {
	case KindJito:
		return jitoTipAccounts
	case KindNextBlock:
		return nextBlockTipAccounts
	case KindZeroSlot:
		return zeroSlotTipAccounts
	case KindTemporal:
		return temporalTipAccounts
	case KindBloxroute:
		return bloxrouteTipAccounts
	default:
		return nil
	}
}
