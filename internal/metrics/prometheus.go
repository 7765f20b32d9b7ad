package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ChatDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nbc_assist_chat_duration_seconds",
			Help:    "Chat pipeline duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
		},
	)

	ChatTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbc_assist_chat_total",
			Help: "Total number of chat requests processed",
		},
		[]string{"status"},
	)

	PassagesSelected = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nbc_assist_passages_selected",
			Help:    "Number of passages selected per chat request",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	FilterFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nbc_assist_filter_fallbacks_total",
			Help: "Collections where the relevance filter matched nothing and all candidates were returned",
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbc_assist_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbc_assist_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	OrderOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbc_assist_order_operations_total",
			Help: "Total order ledger operations",
		},
		[]string{"operation", "status"},
	)

	InvoicesRendered = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nbc_assist_invoices_rendered_total",
			Help: "Total invoices rendered",
		},
		[]string{"format"},
	)

	PassagesIngested = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "nbc_assist_passages_ingested_total",
			Help: "Total passages ingested into the vector store",
		},
	)
)

func Register() {
	prometheus.MustRegister(
		ChatDuration,
		ChatTotal,
		PassagesSelected,
		FilterFallbacks,
		CacheHits,
		CacheMisses,
		OrderOperations,
		InvoicesRendered,
		PassagesIngested,
	)
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
