package alert

import (
	"context"
	"sync"

	domain "github.com/Asami3315/Emergency-Ringer/internal/domain/ringer"
)

// State holds the observable alert status. The actuator is its only writer.
type State struct {
	mu          sync.RWMutex
	status      domain.AlertStatus
	subscribers map[chan domain.AlertStatus]struct{}
}

// NewState creates an idle state.
func NewState() *State {
	return &State{
		subscribers: make(map[chan domain.AlertStatus]struct{}),
	}
}

// Snapshot returns the current status.
func (s *State) Snapshot() domain.AlertStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// IsPlaying reports whether an alert voice is sounding.
func (s *State) IsPlaying() bool {
	return s.Snapshot().Playing
}

// Subscribe returns a channel that receives the current status and every
// later change. Slow readers only see the latest status. The channel is
// closed when ctx ends.
func (s *State) Subscribe(ctx context.Context) <-chan domain.AlertStatus {
	ch := make(chan domain.AlertStatus, 1)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.status
	s.mu.Unlock()

	go func() {
		<-ctx.Done()

		s.mu.Lock()
		delete(s.subscribers, ch)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// set replaces the status and notifies subscribers.
func (s *State) set(status domain.AlertStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status

	for ch := range s.subscribers {
		// Drop the unread status so the latest one always fits.
		select {
		case <-ch:
		default:
		}

		ch <- status
	}
}
