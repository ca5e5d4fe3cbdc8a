package event

// Bus is a double-buffered event queue. Events emitted during tick N are
// dispatched at the start of tick N+1, so subscribers always observe a
// consistent post-tick world. Accessed only from the game loop goroutine.
type Bus struct {
	front       []any
	back        []any
	subscribers []func(any)
}

func NewBus() *Bus {
	return &Bus{}
}

// Emit queues an event for dispatch on the next tick.
func (b *Bus) Emit(ev any) {
	b.back = append(b.back, ev)
}

// Subscribe registers a handler called for every dispatched event.
// Handlers type-switch on the events they care about.
func (b *Bus) Subscribe(fn func(any)) {
	b.subscribers = append(b.subscribers, fn)
}

// SwapBuffers promotes events emitted last tick into the dispatch buffer.
func (b *Bus) SwapBuffers() {
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers every promoted event to every subscriber.
func (b *Bus) DispatchAll() {
	for _, ev := range b.front {
		for _, fn := range b.subscribers {
			fn(ev)
		}
	}
	b.front = b.front[:0]
}

// Pending reports how many events await the next dispatch.
func (b *Bus) Pending() int {
	return len(b.back)
}
