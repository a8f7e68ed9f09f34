package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/litcafe/backoffice/pkg/logger"
)

// Broadcaster delivers an encoded snapshot to live subscribers.
type Broadcaster interface {
	Broadcast(msg []byte)
}

// Snapshot is the message pushed to admin panels.
type Snapshot struct {
	Type         string        `json:"type"`
	Reservations []Reservation `json:"reservations"`
	Stats        Counts        `json:"stats"`
}

// Watcher polls the repository and pushes a snapshot whenever the set of
// reservations changes. Subscribers see new bookings within one interval.
type Watcher struct {
	svc      *Service
	interval time.Duration
	out      Broadcaster
	logg     *logger.Logger

	mu   sync.RWMutex
	last []byte
}

func NewWatcher(svc *Service, interval time.Duration, out Broadcaster, logg *logger.Logger) (*Watcher, error) {
	if svc == nil {
		return nil, fmt.Errorf("reservation service required")
	}
	if interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if out == nil {
		return nil, fmt.Errorf("broadcaster required")
	}
	return &Watcher{svc: svc, interval: interval, out: out, logg: logg}, nil
}

// Run polls until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if _, err := w.Poll(ctx); err != nil && w.logg != nil {
			w.logg.Warn(w.logg.WithField(ctx, "error", err.Error()), "reservations.poll_failed")
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Poll reads the current reservations and broadcasts them if they differ
// from the last snapshot. It reports whether a broadcast happened.
func (w *Watcher) Poll(ctx context.Context) (bool, error) {
	seq, err := w.svc.List(ctx, Filter{})
	if err != nil {
		return false, err
	}
	all := slices.Collect(seq)
	if all == nil {
		all = []Reservation{}
	}
	payload, err := json.Marshal(Snapshot{Type: "reservations", Reservations: all, Stats: count(all)})
	if err != nil {
		return false, fmt.Errorf("encode snapshot: %w", err)
	}

	w.mu.Lock()
	changed := !bytes.Equal(payload, w.last)
	if changed {
		w.last = payload
	}
	w.mu.Unlock()

	if changed {
		w.out.Broadcast(payload)
	}
	return changed, nil
}

// Latest returns the most recent snapshot, or nil before the first poll.
func (w *Watcher) Latest() []byte {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.last
}
