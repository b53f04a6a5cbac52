package card

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks card reads, threshold sweep effort and validation failures.
// All methods are safe to call on a nil *Metrics.
type Metrics struct {
	registry         *prometheus.Registry
	Reads            *prometheus.CounterVec
	ReadDuration     *prometheus.HistogramVec
	FieldAttempts    *prometheus.HistogramVec
	FieldsUnknown    *prometheus.CounterVec
	ValidationErrors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered on its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Reads: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "card_reader_reads_total",
			Help: "Total number of card reads by card kind and outcome",
		}, []string{"kind", "outcome"}),
		ReadDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "card_reader_read_duration_seconds",
			Help:    "Duration of whole card reads including image cleanup",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		FieldAttempts: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "card_reader_field_attempts",
			Help:    "OCR rounds needed per field extraction",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 8, 10},
		}, []string{"field"}),
		FieldsUnknown: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "card_reader_fields_unknown_total",
			Help: "Total number of field extractions that yielded no usable value",
		}, []string{"field"}),
		ValidationErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "card_reader_validation_errors_total",
			Help: "Total number of ID card cross-source validation errors",
		}, []string{"field"}),
	}
}

// ObserveField records the rounds a field extraction took and whether it produced a value
func (m *Metrics) ObserveField(field string, attempts int, known bool) {
	if m == nil {
		return
	}
	m.FieldAttempts.WithLabelValues(field).Observe(float64(attempts))
	if !known {
		m.FieldsUnknown.WithLabelValues(field).Inc()
	}
}

// ObserveValidationError records a cross-source validation error
func (m *Metrics) ObserveValidationError(field string) {
	if m == nil {
		return
	}
	m.ValidationErrors.WithLabelValues(field).Inc()
}

// ObserveRead records the outcome and duration of a card read.
// Call with time.Now() at the start of the read.
func (m *Metrics) ObserveRead(kind Kind, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.Reads.WithLabelValues(string(kind), outcome).Inc()
	m.ReadDuration.WithLabelValues(string(kind)).Observe(time.Since(start).Seconds())
}

// WriteToTextfile writes the current metric values in the node exporter textfile format
func (m *Metrics) WriteToTextfile(path string) error {
	if m == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
