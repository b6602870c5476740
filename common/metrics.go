package common

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	MetricNameSpace = "appstore"
)

var (
	operationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "operations_total",
			Help:      "registry and ledger operations by result",
		},
		[]string{"component", "operation", "result"},
	)

	settledAmount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "settled_amount_total",
			Help:      "token units settled, smallest unit",
		},
		[]string{"kind"},
	)

	transferFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "transfer_failures_total",
			Help:      "failed calls to the token transfer gateway",
		},
	)

	eventSinkErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: MetricNameSpace,
			Name:      "event_sink_errors_total",
			Help:      "events a sink failed to deliver",
		},
		[]string{"sink"},
	)

	auditMismatch = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: MetricNameSpace,
			Name:      "revenue_audit_mismatch",
			Help:      "1 when the last revenue audit found totals out of sync with the ledger",
		},
	)
)

func init() {
	prometheus.MustRegister(
		operationTotal,
		settledAmount,
		transferFailures,
		eventSinkErrors,
		auditMismatch,
	)
}

func MetricOperation(component, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	operationTotal.WithLabelValues(component, operation, result).Inc()
}

func MetricSettled(kind string, amount uint64) {
	settledAmount.WithLabelValues(kind).Add(float64(amount))
}

func MetricTransferFailure() {
	transferFailures.Inc()
}

func MetricEventSinkError(sink string) {
	eventSinkErrors.WithLabelValues(sink).Inc()
}

func MetricAuditMismatch(mismatch bool) {
	if mismatch {
		auditMismatch.Set(1)
		return
	}
	auditMismatch.Set(0)
}
