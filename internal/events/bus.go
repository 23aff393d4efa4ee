package events

import "sync"

// DatasetLoaded is published after a dataset swap completes.
type DatasetLoaded struct {
	Region  string
	Count   int
	Dropped int
}

// LoadDiscarded is published when a load result arrives after a newer
// load request superseded it.
type LoadDiscarded struct {
	Region string
}

// Ticked is published after a minute tick recomputes statuses.
type Ticked struct {
	Region  string
	OpenNow int
}

// PositionSet is published when a user position is attached to the catalog.
type PositionSet struct {
	Lat float64
	Lng float64
}

// Bus provides simple in-process pub/sub for observability.
type Bus struct {
	mu   sync.RWMutex
	subs []chan any
}

func NewBus() *Bus { return &Bus{} }

func (b *Bus) Subscribe() <-chan any {
	ch := make(chan any, 16)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, ch)
	return ch
}

// Publish delivers ev to every subscriber, dropping it for subscribers
// whose buffer is full.
func (b *Bus) Publish(ev any) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
