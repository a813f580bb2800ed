package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the person module.
type Metrics struct {
	PersonsCreated  prometheus.Counter
	PersonsUpdated  prometheus.Counter
	PersonsDeleted  prometheus.Counter
	PersonsStored   prometheus.Gauge
	NotFoundTotal   *prometheus.CounterVec
	OperationLength *prometheus.HistogramVec
}

// New registers the person metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PersonsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "usermgmt_persons_created_total",
			Help: "Total number of persons created",
		}),
		PersonsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "usermgmt_persons_updated_total",
			Help: "Total number of persons updated",
		}),
		PersonsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "usermgmt_persons_deleted_total",
			Help: "Total number of persons deleted",
		}),
		PersonsStored: factory.NewGauge(prometheus.GaugeOpts{
			Name: "usermgmt_persons_stored",
			Help: "Number of persons currently held in memory",
		}),
		NotFoundTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "usermgmt_persons_not_found_total",
			Help: "Update or delete calls naming an unknown id",
		}, []string{"operation"}),
		OperationLength: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "usermgmt_person_operation_duration_seconds",
			Help:    "Duration of person store operations",
			Buckets: []float64{0.00001, 0.0001, 0.001, 0.005, 0.01, 0.05},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.PersonsCreated.Inc()
	m.PersonsStored.Inc()
}

func (m *Metrics) IncrementUpdated() {
	if m == nil {
		return
	}
	m.PersonsUpdated.Inc()
}

func (m *Metrics) IncrementDeleted() {
	if m == nil {
		return
	}
	m.PersonsDeleted.Inc()
	m.PersonsStored.Dec()
}

func (m *Metrics) IncrementNotFound(operation string) {
	if m == nil {
		return
	}
	m.NotFoundTotal.WithLabelValues(operation).Inc()
}

// ObserveOperation records how long a store call took.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	if m == nil {
		return
	}
	m.OperationLength.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
