package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsIngested = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediamail_records_ingested_total",
		Help: "Records written to the search index",
	})
	IngestErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediamail_ingest_errors_total",
		Help: "Firehose ingestion errors",
	})
	CyclesRun = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediamail_cycles_total",
		Help: "Aggregation cycles completed",
	})
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mediamail_cycle_duration_seconds",
		Help:    "Aggregation cycle duration in seconds",
		Buckets: prometheus.DefBuckets,
	})
	Admissions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediamail_admissions_total",
		Help: "Bucket admission attempts by outcome",
	}, []string{"outcome"})
	MalformedHits = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediamail_malformed_hits_total",
		Help: "Search hits dropped for not matching the record shape",
	})
	RetrievalErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediamail_retrieval_errors_total",
		Help: "Per-topic search retrieval failures",
	})
	TopicsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediamail_topics_skipped_total",
		Help: "Topics skipped for invalid configuration",
	})
	MailSends = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediamail_mail_sends_total",
		Help: "Digest emails delivered",
	})
	MailErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediamail_mail_errors_total",
		Help: "Digest email delivery failures after retries",
	})
	RepliesProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mediamail_replies_processed_total",
		Help: "Reply commands dispatched to the platform",
	})
)

func init() {
	prometheus.MustRegister(
		RecordsIngested, IngestErrors,
		CyclesRun, CycleDuration, Admissions,
		MalformedHits, RetrievalErrors, TopicsSkipped,
		MailSends, MailErrors, RepliesProcessed,
	)
}

// StartServer exposes /metrics and /health on addr. No-op when addr is empty.
func StartServer(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}
