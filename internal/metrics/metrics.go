package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ChatRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otakushelf_chat_requests_total",
		Help: "Chat messages processed.",
	})

	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otakushelf_recommendation_cache_hits_total",
		Help: "Recommendation requests served from Redis.",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otakushelf_recommendation_cache_misses_total",
		Help: "Recommendation requests that went through the full pipeline.",
	})

	MetadataFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otakushelf_metadata_fetches_total",
		Help: "Anime metadata lookups by source.",
	}, []string{"source"})

	ImportJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "otakushelf_import_jobs_total",
		Help: "MAL import jobs by outcome.",
	}, []string{"status"})
)
