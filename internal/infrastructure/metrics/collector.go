package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"webshop-env/internal/application/port/input"
	"webshop-env/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const Namespace = "webshop_env"

// Collector держит метрики окружения в собственном реестре.
type Collector struct {
	registry *prometheus.Registry

	resetsTotal   *prometheus.CounterVec
	stepsTotal    *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	rewards       prometheus.Histogram
	episodesDone  prometheus.Counter
	httpRequests  *prometheus.CounterVec
	httpDurations *prometheus.HistogramVec
}

func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = Namespace
	}
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		resetsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resets_total",
			Help:      "Total number of environment resets",
		}, []string{"status"}),
		stepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "steps_total",
			Help:      "Total number of steps by action verb",
		}, []string{"verb", "status"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "step_duration_seconds",
			Help:      "Step duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"verb"}),
		rewards: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "episode_reward",
			Help:      "Reward observed on terminal steps",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		episodesDone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "episodes_done_total",
			Help:      "Total number of terminal steps",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		httpDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		c.resetsTotal,
		c.stepsTotal,
		c.stepDuration,
		c.rewards,
		c.episodesDone,
		c.httpRequests,
		c.httpDurations,
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) RecordReset(err error) {
	c.resetsTotal.WithLabelValues(status(err)).Inc()
}

func (c *Collector) RecordStep(verb entity.ActionVerb, d time.Duration, res *entity.StepResult, err error) {
	c.stepsTotal.WithLabelValues(string(verb), status(err)).Inc()
	c.stepDuration.WithLabelValues(string(verb)).Observe(d.Seconds())
	if err == nil && res != nil && res.Done {
		c.episodesDone.Inc()
		c.rewards.Observe(res.Reward)
	}
}

func (c *Collector) RecordHTTPRequest(method, path string, code int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, path, strconv.Itoa(code)).Inc()
	c.httpDurations.WithLabelValues(method, path).Observe(d.Seconds())
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

var _ input.Environment = (*InstrumentedEnvironment)(nil)

// InstrumentedEnvironment считает сбросы и шаги обёрнутого окружения.
type InstrumentedEnvironment struct {
	input.Environment
	collector *Collector
}

func Instrument(env input.Environment, c *Collector) *InstrumentedEnvironment {
	return &InstrumentedEnvironment{Environment: env, collector: c}
}

func (e *InstrumentedEnvironment) Reset(ctx context.Context) (*entity.Observation, error) {
	obs, err := e.Environment.Reset(ctx)
	e.collector.RecordReset(err)
	return obs, err
}

func (e *InstrumentedEnvironment) Step(ctx context.Context, action string) (*entity.StepResult, error) {
	start := time.Now()
	res, err := e.Environment.Step(ctx, action)
	e.collector.RecordStep(entity.ParseAction(action).Verb, time.Since(start), res, err)
	return res, err
}
