package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the instrument's prometheus collectors. Each set has its own
// registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	Samples        prometheus.Counter
	StaleSamples   prometheus.Counter
	SensorErrors   prometheus.Counter
	Altitude       prometheus.Gauge
	VSI            prometheus.Gauge
	Pressure       prometheus.Gauge
	Kollsman       prometheus.Gauge
	Inop           prometheus.Gauge
	StreamClients  prometheus.Gauge
	WheelSessions  prometheus.Gauge
	WheelFrames    prometheus.Counter
	RenderDuration *prometheus.HistogramVec
}

// NewMetrics registers a fresh set of collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Samples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "altimeter_samples_total",
			Help: "Pressure samples applied to the filter.",
		}),
		StaleSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "altimeter_stale_samples_total",
			Help: "Samples whose timestamp did not advance.",
		}),
		SensorErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "altimeter_sensor_errors_total",
			Help: "Sensor source failures.",
		}),
		Altitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "altimeter_altitude_meters",
			Help: "Filtered altitude.",
		}),
		VSI: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "altimeter_vertical_speed_mps",
			Help: "Filtered vertical speed.",
		}),
		Pressure: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "altimeter_pressure_mb",
			Help: "Last sampled static pressure.",
		}),
		Kollsman: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "altimeter_kollsman_mb",
			Help: "Reference pressure setting.",
		}),
		Inop: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "altimeter_inop",
			Help: "1 while the INOP flag shows.",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "altimeter_stream_clients",
			Help: "Connected reading stream clients.",
		}),
		WheelSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "altimeter_wheel_sessions",
			Help: "Open Kollsman wheel sessions.",
		}),
		WheelFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "altimeter_wheel_frames_total",
			Help: "Wheel animation frames ticked.",
		}),
		RenderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "altimeter_render_seconds",
			Help:    "Time spent rasterizing images.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}, []string{"image"}),
	}

	m.Registry.MustRegister(
		m.Samples, m.StaleSamples, m.SensorErrors,
		m.Altitude, m.VSI, m.Pressure, m.Kollsman, m.Inop,
		m.StreamClients, m.WheelSessions, m.WheelFrames, m.RenderDuration,
		collectors.NewGoCollector(),
	)
	return m
}

// Handler serves the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
