package metrics

import (
    "time"

    "github.com/prometheus/client_golang/prometheus"
)

// Metrics records shipping option resolutions. It satisfies rate.Recorder.
type Metrics struct {
    resolutions *prometheus.CounterVec
    duration    prometheus.Histogram
    methods     *prometheus.CounterVec
}

// New registers the collectors on registerer; nil means the default registerer.
func New(registerer prometheus.Registerer) *Metrics {
    if registerer == nil {
        registerer = prometheus.DefaultRegisterer
    }
    m := &Metrics{
        resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
            Name: "shipping_options_resolutions_total",
            Help: "Shipping option resolutions by outcome.",
        }, []string{"outcome"}),
        duration: prometheus.NewHistogram(prometheus.HistogramOpts{
            Name:    "shipping_options_resolution_seconds",
            Help:    "Time spent resolving shipping options, including store reads.",
            Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
        }),
        methods: prometheus.NewCounterVec(prometheus.CounterOpts{
            Name: "shipping_options_methods_total",
            Help: "Candidate shipping methods by result.",
        }, []string{"result"}),
    }
    registerer.MustRegister(m.resolutions, m.duration, m.methods)
    return m
}

func (m *Metrics) ObserveResolution(outcome string, elapsed time.Duration, offered, unavailable int) {
    m.resolutions.WithLabelValues(outcome).Inc()
    m.duration.Observe(elapsed.Seconds())
    if offered > 0 {
        m.methods.WithLabelValues("offered").Add(float64(offered))
    }
    if unavailable > 0 {
        m.methods.WithLabelValues("unavailable").Add(float64(unavailable))
    }
}
