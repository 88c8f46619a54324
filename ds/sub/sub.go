// Package sub provides a generic broadcast hub. A single owner goroutine
// receives subscription requests and fans values out to any number of
// filtered subscribers.
package sub

type Subscription[T any] struct {
	id      int
	deleteC chan<- int
	StreamC <-chan T
	ErrorC  <-chan error
}

func (s Subscription[T]) Unsubscribe() {
	s.deleteC <- s.id
}

type innerSubscription[T any] struct {
	id      int
	streamC chan T
	errorC  chan<- error
	filter  func(T) bool
	dropped uint64
}

type ResponseChannel[T any] struct {
	RespC      chan<- Subscription[T]
	bufferSize int
	filter     func(T) bool
}

func SubscriptionRequest[T any](reqC chan<- ResponseChannel[T], filter func(T) bool) Subscription[T] {
	return SubscriptionRequestWithBufferSize(reqC, DEFAULT_BUFFER_SIZE, filter)
}

func SubscriptionRequestWithBufferSize[T any](reqC chan<- ResponseChannel[T], bufferSize int, filter func(T) bool) Subscription[T] {
	respC := make(chan Subscription[T], 1)
	reqC <- ResponseChannel[T]{
		RespC: respC, bufferSize: bufferSize, filter: filter,
	}
	return <-respC
}

const DEFAULT_BUFFER_SIZE = 10

type SubHome[T any] struct {
	id      int
	subs    map[int]*innerSubscription[T]
	DeleteC chan int
	ReqC    chan ResponseChannel[T]
}

func CreateSubHome[T any]() *SubHome[T] {
	return &SubHome[T]{
		id:      0,
		subs:    make(map[int]*innerSubscription[T]),
		DeleteC: make(chan int, 10),
		ReqC:    make(chan ResponseChannel[T], 10),
	}
}

func (sh *SubHome[T]) SubscriberCount() int {
	return len(sh.subs)
}

// Broadcast never blocks the owner loop; a subscriber that has fallen
// behind loses the value instead of stalling the producer.
func (sh *SubHome[T]) Broadcast(value T) {
	for _, v := range sh.subs {
		if !v.filter(value) {
			continue
		}
		select {
		case v.streamC <- value:
		default:
			v.dropped++
		}
	}
}

func (sh *SubHome[T]) Delete(id int) {
	p, present := sh.subs[id]
	if present {
		p.errorC <- nil
		delete(sh.subs, id)
	}
}

// Close terminates all subscriptions.
func (sh *SubHome[T]) Close() {
	for _, v := range sh.subs {
		v.errorC <- nil
	}
	sh.subs = make(map[int]*innerSubscription[T])
}

func (sh *SubHome[T]) Receive(resp ResponseChannel[T]) {
	id := sh.id
	sh.id++
	bufferSize := resp.bufferSize
	if bufferSize <= 0 {
		bufferSize = DEFAULT_BUFFER_SIZE
	}
	filter := resp.filter
	if filter == nil {
		filter = func(T) bool { return true }
	}
	streamC := make(chan T, bufferSize)
	errorC := make(chan error, 1)
	sh.subs[id] = &innerSubscription[T]{
		id: id, streamC: streamC, errorC: errorC, filter: filter,
	}
	resp.RespC <- Subscription[T]{id: id, StreamC: streamC, ErrorC: errorC, deleteC: sh.DeleteC}
}
