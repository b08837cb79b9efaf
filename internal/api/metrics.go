package api

import (
	"context"
	"sync"
	"time"

	"chat-shim/internal/service"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	rpcCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rpc_calls_total",
			Help: "Total number of RPC calls by procedure and outcome",
		},
		[]string{"procedure", "outcome"},
	)

	rpcCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rpc_call_duration_seconds",
			Help:    "RPC call duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"procedure"},
	)

	streamChunksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stream_chunks_total",
			Help: "Total number of stream chunks handed to callers",
		},
	)

	streamsCompletedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streams_completed_total",
			Help: "Total number of streams drained to the end",
		},
	)

	registerOnce sync.Once
)

func registerMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			rpcCallsTotal,
			rpcCallDuration,
			streamChunksTotal,
			streamsCompletedTotal,
		)
	})
}

// Instrument wraps svc so every transport reports the same RPC metrics.
func Instrument(svc service.ChatService) service.ChatService {
	registerMetrics()
	return &instrumentedService{next: svc}
}

type instrumentedService struct {
	next service.ChatService
}

func observe(procedure string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	rpcCallsTotal.WithLabelValues(procedure, outcome).Inc()
	rpcCallDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
}

func (s *instrumentedService) Query(ctx context.Context, text string) (string, error) {
	start := time.Now()
	answer, err := s.next.Query(ctx, text)
	observe("query", start, err)
	return answer, err
}

func (s *instrumentedService) QueryStream(ctx context.Context, text string) (string, bool, error) {
	start := time.Now()
	chunk, ok, err := s.next.QueryStream(ctx, text)
	observe("querystream", start, err)
	switch {
	case err != nil:
	case ok:
		streamChunksTotal.Inc()
	default:
		streamsCompletedTotal.Inc()
	}
	return chunk, ok, err
}

func (s *instrumentedService) SwitchToChat(ctx context.Context, id string) (string, error) {
	start := time.Now()
	result, err := s.next.SwitchToChat(ctx, id)
	observe("switch_to_chat", start, err)
	return result, err
}

func (s *instrumentedService) Abandon() {
	s.next.Abandon()
}

func (s *instrumentedService) Close() error {
	return s.next.Close()
}
