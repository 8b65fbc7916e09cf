package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sonroyaalmerol/w32ical/pkg/ical"
)

// Failure kinds used as the kind label.
const (
	KindValidation = "validation"
	KindParse      = "parse"
	KindOther      = "other"
)

// Metrics counts translation outcomes. The zero value is not usable; build
// it with New.
type Metrics struct {
	Translated  prometheus.Counter
	Failures    *prometheus.CounterVec
	UIDMismatch prometheus.Counter
	Components  prometheus.Counter
}

// New creates the collectors and registers them on reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Translated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "w32ical",
			Name:      "events_translated_total",
			Help:      "Native events translated successfully",
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "w32ical",
			Name:      "translation_failures_total",
			Help:      "Native events that failed to translate, by error kind",
		}, []string{"kind"}),
		UIDMismatch: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "w32ical",
			Name:      "uid_mismatch_total",
			Help:      "Recurrence overrides whose UID differed from the master's",
		}),
		Components: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "w32ical",
			Name:      "components_emitted_total",
			Help:      "VEVENT components produced",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Translated, m.Failures, m.UIDMismatch, m.Components} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveSuccess(components int) {
	m.Translated.Inc()
	m.Components.Add(float64(components))
}

func (m *Metrics) ObserveFailure(err error) {
	m.Failures.WithLabelValues(Kind(err)).Inc()
}

func (m *Metrics) ObserveUIDMismatch(ical.ConsistencyWarning) {
	m.UIDMismatch.Inc()
}

// Kind classifies a translation error for the kind label.
func Kind(err error) string {
	switch {
	case errors.Is(err, ical.ErrParse):
		return KindParse
	case errors.Is(err, ical.ErrValidation):
		return KindValidation
	}
	return KindOther
}
