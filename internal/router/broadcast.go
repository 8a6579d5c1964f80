package router

import "sync"

// Broadcast fans events out to every registered front-end.
type Broadcast struct {
	mu    sync.Mutex
	next  int
	sinks map[int]Sink
}

func NewBroadcast() *Broadcast {
	return &Broadcast{sinks: map[int]Sink{}}
}

// Add registers s and returns a function that removes it.
func (b *Broadcast) Add(s Sink) (remove func()) {
	b.mu.Lock()
	id := b.next
	b.next++
	b.sinks[id] = s
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.sinks, id)
		b.mu.Unlock()
	}
}

func (b *Broadcast) Send(r Reply) {
	b.mu.Lock()
	sinks := make([]Sink, 0, len(b.sinks))
	for _, s := range b.sinks {
		sinks = append(sinks, s)
	}
	b.mu.Unlock()
	for _, s := range sinks {
		s.Send(r)
	}
}
