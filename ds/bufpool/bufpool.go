// Package bufpool holds a fixed set of reusable byte buffers so that
// transaction serialization on the submit path does not allocate per call.
package bufpool

type Pool struct {
	freeC   chan []byte
	bufSize int
}

const (
	DEFAULT_POOL_SIZE   = 64
	DEFAULT_BUFFER_SIZE = 256 * 1024
)

func Create(poolSize int, bufSize int) *Pool {
	if poolSize <= 0 {
		poolSize = DEFAULT_POOL_SIZE
	}
	if bufSize <= 0 {
		bufSize = DEFAULT_BUFFER_SIZE
	}
	p := &Pool{
		freeC:   make(chan []byte, poolSize),
		bufSize: bufSize,
	}
	for i := 0; i < poolSize; i++ {
		p.freeC <- make([]byte, 0, bufSize)
	}
	return p
}

// Get never blocks; on momentary exhaustion a fresh buffer is allocated
// instead of waiting for a return.
func (p *Pool) Get() []byte {
	select {
	case b := <-p.freeC:
		return b[:0]
	default:
		return make([]byte, 0, p.bufSize)
	}
}

// Put returns a buffer to the pool. Buffers beyond the pool capacity are
// dropped for the garbage collector.
func (p *Pool) Put(b []byte) {
	if b == nil {
		return
	}
	select {
	case p.freeC <- b[:0]:
	default:
	}
}

// Stats reports available and total buffer slots.
func (p *Pool) Stats() (available int, capacity int) {
	available = len(p.freeC)
	capacity = cap(p.freeC)
	return
}
