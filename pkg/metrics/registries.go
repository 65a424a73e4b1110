package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PullRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_pull_ops_total",
		Help: "The total number of started pulls",
	})
	PagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_pages_fetched_total",
		Help: "The total number of fetched pull pages",
	})
	PullErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_pull_errors_total",
		Help: "The total number of pulls that failed on transport",
	})
	PaginationCutoffs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_pagination_cutoffs_total",
		Help: "The total number of pulls stopped on a repeated or over-limit next link",
	})
	PostRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_post_ops_total",
		Help: "The total number of posts",
	})
	PostErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_post_errors_total",
		Help: "The total number of failed posts",
	})
	Notifications = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_notifications_total",
		Help: "The total number of feed change notifications",
	})
	NotificationFlushes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_notification_flushes_total",
		Help: "The total number of debounced notification flushes",
	})
	PollTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_poll_ticks_total",
		Help: "The total number of pollster pulls",
	})
	ActivePollsters = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trsst_client_active_pollsters",
		Help: "Current number of running pollsters",
	})
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_cache_hits_ops_total",
		Help: "The total number of cache hits",
	})
	CacheMiss = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trsst_client_cache_miss_ops_total",
		Help: "The total number of cache misses",
	})
	AppErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trsst_client_errors_total",
		Help: "Number of errors for the app.",
	}, []string{"type"})
)
