package metrics

import (
    "net/http"

    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/collectors"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Coordinator metrics, exposed on /metrics.
var (
    registry = prometheus.NewRegistry()

    ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
        Name: "avalia_active_connections",
        Help: "Currently admitted student connections.",
    })
    ConnectsAdmitted = prometheus.NewCounter(prometheus.CounterOpts{
        Name: "avalia_connects_admitted_total",
        Help: "Connection attempts admitted.",
    })
    ConnectsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
        Name: "avalia_connects_rejected_total",
        Help: "Connection attempts rejected, by reason.",
    }, []string{"reason"})
    ViolationsProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
        Name: "avalia_violations_processed_total",
        Help: "Violation reports processed, by violation type.",
    }, []string{"type"})
    PenaltiesApplied = prometheus.NewCounterVec(prometheus.CounterOpts{
        Name: "avalia_penalties_applied_total",
        Help: "Escalation penalties applied, by penalty type.",
    }, []string{"penalty"})
)

func init() {
    registry.MustRegister(
        collectors.NewGoCollector(),
        collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
        ActiveConnections,
        ConnectsAdmitted,
        ConnectsRejected,
        ViolationsProcessed,
        PenaltiesApplied,
    )
}

// Handler serves the metric registry in prometheus exposition format.
func Handler() http.Handler {
    return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
