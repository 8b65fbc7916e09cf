// Package engine wires configuration, logging and metrics around the event
// serializer and translates batches of native events.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	goical "github.com/emersion/go-ical"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sonroyaalmerol/w32ical/internal/cache"
	"github.com/sonroyaalmerol/w32ical/internal/config"
	"github.com/sonroyaalmerol/w32ical/internal/logging"
	"github.com/sonroyaalmerol/w32ical/internal/metrics"
	"github.com/sonroyaalmerol/w32ical/pkg/ical"
	"github.com/sonroyaalmerol/w32ical/pkg/native"
)

const defaultWorkers = 4

type Options struct {
	// Zone of native local timestamps. Required.
	Zone *time.Location
	// Policy names the active filter policy. Empty selects full.
	Policy   string
	Policies ical.Policies
	Workers  int
	ProdID   string
	// CacheTTL enables memoizing translations per event revision.
	CacheTTL time.Duration
	Logger   zerolog.Logger
	// Registerer receives the metrics. nil keeps them unregistered.
	Registerer prometheus.Registerer
	// OnWarning observes consistency warnings in addition to logging and
	// counting them.
	OnWarning func(ical.ConsistencyWarning)
}

type Engine struct {
	serializer *ical.Serializer
	workers    int
	prodID     string
	logger     zerolog.Logger
	metrics    *metrics.Metrics
	onWarning  func(ical.ConsistencyWarning)
	memo       *cache.Cache[memoKey, memoEntry]
}

// Result is the outcome of translating one event of a batch.
type Result struct {
	EventID    string
	Components []*goical.Component
	Err        error
}

func New(opts Options) (*Engine, error) {
	norm, err := ical.NewNormalizer(opts.Zone)
	if err != nil {
		return nil, err
	}

	policies := opts.Policies
	if policies == nil {
		policies = ical.NewPolicies()
	}
	policy, err := policies.Lookup(opts.Policy)
	if err != nil {
		return nil, err
	}

	m, err := metrics.New(opts.Registerer)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers
	}

	s, err := ical.NewSerializer(norm,
		ical.WithPolicy(policy),
		ical.WithLogger(opts.Logger),
	)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug().
		Str("zone", opts.Zone.String()).
		Str("policy", policy.Name()).
		Int("workers", workers).
		Msg("translation engine ready")

	e := &Engine{
		serializer: s,
		workers:    workers,
		prodID:     opts.ProdID,
		logger:     opts.Logger,
		metrics:    m,
		onWarning:  opts.OnWarning,
	}
	if opts.CacheTTL > 0 {
		e.memo = cache.New[memoKey, memoEntry](opts.CacheTTL)
	}
	return e, nil
}

// FromConfig builds an engine from loaded configuration, registering the
// custom policies it declares.
func FromConfig(cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer) (*Engine, error) {
	custom := make([]*ical.Policy, 0, len(cfg.Policies))
	for _, pc := range cfg.Policies {
		p, err := ical.NewPolicy(pc.Name, pc.Include())
		if err != nil {
			return nil, err
		}
		custom = append(custom, p)
	}

	return New(Options{
		Zone:       cfg.Location,
		Policy:     cfg.Filter,
		Policies:   ical.NewPolicies(custom...),
		Workers:    cfg.Workers,
		ProdID:     cfg.ICS.BuildProdID(),
		CacheTTL:   cfg.CacheTTL,
		Logger:     logger,
		Registerer: reg,
	})
}

// FromEnv loads configuration from the environment and logs to stdout.
func FromEnv(reg prometheus.Registerer) (*Engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, logging.New(cfg.LogLevel), reg)
}

func (e *Engine) Metrics() *metrics.Metrics {
	return e.metrics
}

func (e *Engine) ProdID() string {
	return e.prodID
}

// Translate serializes one event. With a cache TTL set, an unchanged
// revision of an event is served from memory and the consistency warnings
// of its first translation are raised again.
func (e *Engine) Translate(ev *native.Event) ([]*goical.Component, error) {
	key, memoizable := keyOf(ev)
	if e.memo != nil && memoizable {
		if hit, ok := e.memo.Get(key); ok {
			for _, w := range hit.warnings {
				e.logger.Warn().
					Str("master_uid", w.MasterUID).
					Str("override_uid", w.OverrideUID).
					Msg("cached translation carries a UID mismatch")
				e.raise(w)
			}
			e.metrics.ObserveSuccess(len(hit.comps))
			return cloneComponents(hit.comps), nil
		}
	}

	comps, warnings, err := e.serializer.SerializeReport(ev)
	for _, w := range warnings {
		e.raise(w)
	}
	if err != nil {
		e.metrics.ObserveFailure(err)
		return nil, err
	}
	e.metrics.ObserveSuccess(len(comps))

	if e.memo != nil && memoizable {
		e.memo.Put(key, memoEntry{comps: cloneComponents(comps), warnings: warnings})
	}
	return comps, nil
}

func (e *Engine) raise(w ical.ConsistencyWarning) {
	e.metrics.ObserveUIDMismatch(w)
	if e.onWarning != nil {
		e.onWarning(w)
	}
}

// PruneCache drops expired memoized translations.
func (e *Engine) PruneCache() int {
	if e.memo == nil {
		return 0
	}
	return e.memo.Prune()
}

// TranslateAll translates events concurrently. Results are in input order
// and one failing event never affects the others. Events not yet started
// when ctx is done are reported with ctx's error.
func (e *Engine) TranslateAll(ctx context.Context, events []*native.Event) []Result {
	results := make([]Result, len(events))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, ev := range events {
		if ev != nil {
			results[i].EventID = ev.ID
		}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			if ev == nil {
				results[i].Err = errors.New("nil event")
				return nil
			}
			comps, err := e.Translate(ev)
			if err != nil {
				e.logger.Error().Err(err).Str("uid", ev.ID).Msg("failed to translate event")
			}
			results[i].Components = comps
			results[i].Err = err
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Calendar assembles the components of every successful result.
func (e *Engine) Calendar(results []Result) *goical.Calendar {
	var comps []*goical.Component
	for _, r := range results {
		if r.Err == nil {
			comps = append(comps, r.Components...)
		}
	}
	return ical.NewCalendarOf(e.prodID, comps)
}

// Export translates events and writes the resulting VCALENDAR to w. Events
// that fail are skipped; their errors are joined into the returned error
// after the calendar has been written.
func (e *Engine) Export(ctx context.Context, w io.Writer, events []*native.Event) error {
	results := e.TranslateAll(ctx, events)
	if err := ical.Encode(w, e.Calendar(results)); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", r.EventID, r.Err))
		}
	}
	return errors.Join(errs...)
}

// FreeBusy translates events and reports the busy time in [start, end) as
// a VFREEBUSY calendar.
func (e *Engine) FreeBusy(ctx context.Context, events []*native.Event, start, end time.Time) (*goical.Calendar, error) {
	var comps []*goical.Component
	for _, r := range e.TranslateAll(ctx, events) {
		if r.Err != nil {
			return nil, fmt.Errorf("event %s: %w", r.EventID, r.Err)
		}
		comps = append(comps, r.Components...)
	}
	instances, err := ical.ExpandInstances(comps, start, end)
	if err != nil {
		return nil, err
	}
	return ical.BuildFreeBusy(start, end, ical.FreeBusyOf(instances), e.prodID), nil
}
