package engine

import "sync"

// broadcaster forwards events to the single registered delegate. The
// binding is non-owning: rebinding or detaching during a concurrent
// delivery makes that delivery a silent no-op, and undelivered events are
// never buffered.
type broadcaster struct {
	mu       sync.RWMutex
	delegate Delegate
}

func (b *broadcaster) bind(d Delegate) {
	b.mu.Lock()
	b.delegate = d
	b.mu.Unlock()
}

func (b *broadcaster) emit(ev Event) {
	b.mu.RLock()
	d := b.delegate
	b.mu.RUnlock()

	if d != nil {
		d.OnEvent(ev)
	}
}
