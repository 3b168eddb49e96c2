package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

const DefaultPollInterval = 5 * time.Second

type StatusSynchronizerParams struct {
	Gateway ControlGateway
	Cache   *StatusCache

	Interval time.Duration

	// OnUpdate, when set, is called after every applied fetch result with
	// the resulting snapshot. Stale results do not trigger it.
	OnUpdate func(Snapshot)

	Log zerolog.Logger
}

func (p *StatusSynchronizerParams) EnsureDefaults() {
	if p.Interval == 0 {
		p.Interval = DefaultPollInterval
	}
}

// StatusSynchronizer keeps the cache in step with the control service by
// polling on a fixed cadence. Ticks issue independent fetches; the cache's
// sequence guard settles whichever order the responses come back in.
type StatusSynchronizer struct {
	params StatusSynchronizerParams

	log zerolog.Logger
}

func NewStatusSynchronizer(params StatusSynchronizerParams) (*StatusSynchronizer, error) {
	params.EnsureDefaults()

	if params.Gateway == nil {
		return nil, fmt.Errorf("Gateway is nil")
	}
	if params.Cache == nil {
		return nil, fmt.Errorf("Cache is nil")
	}
	return &StatusSynchronizer{params: params, log: params.Log}, nil
}

// Run fetches immediately, then on every interval tick, until ctx is done.
// The ticker is owned by this call, so stopping the consuming view's ctx
// stops polling deterministically.
func (s *StatusSynchronizer) Run(ctx context.Context) error {
	s.log.Info().Dur("interval", s.params.Interval).Msg("status polling started")
	defer s.log.Info().Msg("status polling stopped")

	ticker := time.NewTicker(s.params.Interval)
	defer ticker.Stop()

	wg := conc.WaitGroup{}
	wg.Go(func() { s.Fetch(ctx) })

PollLoop:
	for {
		select {
		case <-ctx.Done():
			break PollLoop
		case <-ticker.C:
			wg.Go(func() { s.Fetch(ctx) })
		}
	}

	wg.Wait()
	return nil
}

// Fetch performs a single status fetch and applies the result to the cache.
// On failure the previously cached status stays visible and only the error
// text changes.
func (s *StatusSynchronizer) Fetch(ctx context.Context) {
	seq := s.params.Cache.Next()

	s.params.Cache.BeginFetch()
	defer s.params.Cache.EndFetch()

	status, err := s.params.Gateway.Status(ctx)
	if err != nil {
		s.log.Warn().Uint64("seq", seq).Err(err).Msg("status fetch failed")
		if s.params.Cache.Fail(seq, err.Error()) {
			s.notify()
		}
		return
	}

	if s.params.Cache.Commit(seq, status) {
		s.notify()
	} else {
		s.log.Debug().Uint64("seq", seq).Msg("stale status fetch discarded")
	}
}

func (s *StatusSynchronizer) notify() {
	if s.params.OnUpdate != nil {
		s.params.OnUpdate(s.params.Cache.Snapshot())
	}
}
