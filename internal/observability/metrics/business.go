package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Fetch results recorded by RecordSourceFetch.
const (
	FetchResultOK      = "ok"
	FetchResultEmpty   = "empty"
	FetchResultError   = "error"
	FetchResultSkipped = "skipped"
)

// RecordSourceFetch records the outcome of fetching one source.
func RecordSourceFetch(source, result string, articles int) {
	SourceFetchTotal.WithLabelValues(source, result).Inc()
	if articles > 0 {
		ArticlesFetchedTotal.WithLabelValues(source).Add(float64(articles))
	}
}

// RecordDelivery records one webhook call. kind is "article" or "status".
func RecordDelivery(channel, kind string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	DeliveriesTotal.WithLabelValues(channel, kind, status).Inc()
	DeliveryDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordNewEntries adds n to the count of entries recorded as seen.
func RecordNewEntries(n int) {
	if n > 0 {
		NewEntriesTotal.Add(float64(n))
	}
}

// RecordRun records a finished sweep.
func RecordRun(duration time.Duration, success bool) {
	RunDuration.Observe(duration.Seconds())
	if success {
		RunsTotal.WithLabelValues("success").Inc()
		LastSuccessTimestamp.SetToCurrentTime()
		return
	}
	RunsTotal.WithLabelValues("failure").Inc()
}

// Push sends the default registry to a Pushgateway under the given job name.
// An empty url is a no-op.
func Push(ctx context.Context, url, job string) error {
	return pushGatherer(ctx, url, job, prometheus.DefaultGatherer)
}

func pushGatherer(ctx context.Context, url, job string, g prometheus.Gatherer) error {
	if url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
