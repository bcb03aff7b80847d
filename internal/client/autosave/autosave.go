// Package autosave debounces wizard edits into step saves.
//
// Every step has its own trailing-edge timer and at most one save in flight.
// A new edit cancels the in-flight save of that step and restarts its timer.
// Saves whose payload equals the last successfully saved one are skipped.
package autosave

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"github.com/dmitrijs2005/onboarding/internal/logging"
	"github.com/dmitrijs2005/onboarding/internal/steps"
	"github.com/goccy/go-json"
)

// DefaultDelay is the debounce window used when none is given.
const DefaultDelay = time.Second

// ErrClosed is returned by Flush after Close.
var ErrClosed = errors.New("autosave: closed")

// Saver persists the full local state of one step.
type Saver interface {
	UpdateStep(ctx context.Context, n steps.Number, data map[string]any) (map[string]any, error)
}

type stepState struct {
	local  map[string]any
	saved  string // snapshot of the last successful save
	timer  *time.Timer
	gen    uint64 // bumps invalidate pending timers
	cancel context.CancelFunc
	done   chan struct{}
}

type Syncer struct {
	saver  Saver
	delay  time.Duration
	logger logging.Logger

	mu     sync.Mutex
	steps  map[steps.Number]*stepState
	root   context.Context
	stop   context.CancelFunc
	wg     sync.WaitGroup
	closed bool
}

func New(saver Saver, delay time.Duration, logger logging.Logger) *Syncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	root, stop := context.WithCancel(context.Background())
	return &Syncer{
		saver:  saver,
		delay:  delay,
		logger: logger.With("module", "autosave"),
		steps:  make(map[steps.Number]*stepState),
		root:   root,
		stop:   stop,
	}
}

func (s *Syncer) state(n steps.Number) *stepState {
	st, ok := s.steps[n]
	if !ok {
		st = &stepState{}
		s.steps[n] = st
	}
	return st
}

// snapshot is the canonical JSON of a step state. Map keys are sorted so
// equal states produce equal snapshots.
func snapshot(fields map[string]any) (string, error) {
	b, err := json.Marshal(fields)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Seed records fields as both the local and the last saved state of step n,
// typically right after loading it from the server. Nothing is sent.
func (s *Syncer) Seed(n steps.Number, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state(n)
	st.local = maps.Clone(fields)
	if snap, err := snapshot(st.local); err == nil && len(st.local) > 0 {
		st.saved = snap
	} else {
		st.saved = ""
	}
}

// Local returns a copy of the current local state of step n.
func (s *Syncer) Local(n steps.Number) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.steps[n]; ok && st.local != nil {
		return maps.Clone(st.local)
	}
	return map[string]any{}
}

// Edit replaces the local state of step n and schedules a save after the
// debounce delay. Any save of step n still in flight is cancelled.
func (s *Syncer) Edit(n steps.Number, fields map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	st := s.state(n)
	st.local = maps.Clone(fields)
	if st.cancel != nil {
		st.cancel()
	}

	st.gen++
	gen := st.gen
	if st.timer != nil {
		st.timer.Stop()
	}
	st.timer = time.AfterFunc(s.delay, func() { s.fire(n, gen) })
}

// fire runs when the debounce timer of step n expires.
func (s *Syncer) fire(n steps.Number, gen uint64) {
	s.mu.Lock()
	st := s.state(n)
	if s.closed || st.gen != gen {
		s.mu.Unlock()
		return
	}
	st.timer = nil

	snap, data, ok := s.pending(st)
	if !ok {
		s.mu.Unlock()
		return
	}
	ctx, done := s.begin(st, s.root)
	s.mu.Unlock()

	err := s.save(ctx, n, st, snap, data, done)
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn(ctx, "autosave failed", "step", int(n), "error", err.Error())
	}
}

// pending reports whether st has something new to send. Callers hold s.mu.
func (s *Syncer) pending(st *stepState) (string, map[string]any, bool) {
	if len(st.local) == 0 {
		return "", nil, false
	}
	snap, err := snapshot(st.local)
	if err != nil {
		s.logger.Error(context.Background(), "autosave snapshot failed", "error", err.Error())
		return "", nil, false
	}
	if snap == st.saved {
		return "", nil, false
	}
	return snap, maps.Clone(st.local), true
}

// begin registers a new in-flight save derived from parent. Callers hold s.mu.
func (s *Syncer) begin(st *stepState, parent context.Context) (context.Context, chan struct{}) {
	if st.cancel != nil {
		st.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	st.cancel = cancel
	st.done = done
	s.wg.Add(1)
	return ctx, done
}

// save sends data and, if this save is still the current one, records its
// snapshot on success and clears the in-flight slot.
func (s *Syncer) save(ctx context.Context, n steps.Number, st *stepState, snap string, data map[string]any, done chan struct{}) error {
	defer s.wg.Done()

	_, err := s.saver.UpdateStep(ctx, n, data)

	s.mu.Lock()
	if st.done == done {
		if err == nil {
			st.saved = snap
		}
		st.cancel()
		st.cancel = nil
		st.done = nil
	}
	s.mu.Unlock()
	close(done)

	if err == nil {
		s.logger.Debug(ctx, "step autosaved", "step", int(n))
	}
	return err
}

// Flush stops the pending timer of step n, waits for the in-flight save to
// be cancelled, then saves the local state synchronously. It returns nil
// when there is nothing new to save.
func (s *Syncer) Flush(ctx context.Context, n steps.Number) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	st := s.state(n)
	st.gen++
	if st.timer != nil {
		st.timer.Stop()
		st.timer = nil
	}

	for st.done != nil {
		done := st.done
		st.cancel()
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return ErrClosed
		}
	}

	snap, data, ok := s.pending(st)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	saveCtx, done := s.begin(st, ctx)
	s.mu.Unlock()

	return s.save(saveCtx, n, st, snap, data, done)
}

// Close cancels all pending and in-flight saves and waits for them to end.
func (s *Syncer) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for _, st := range s.steps {
		st.gen++
		if st.timer != nil {
			st.timer.Stop()
			st.timer = nil
		}
		if st.cancel != nil {
			st.cancel()
		}
	}
	s.stop()
	s.mu.Unlock()

	s.wg.Wait()
}
