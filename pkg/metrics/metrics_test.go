package metrics

import (
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a metrics manager on its own registry", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(
			WithPrometheusRegistry(registry),
			WithNamespace("test"),
			WithSubsystem("rank"),
			WithHistogramBuckets([]float64{1, 10}),
			WithCustomLabels(map[string]string{"env": "test"}),
		)

		Convey("When recording ranking activity", func() {
			m.RecordRankRequest("/rank", "balanced")
			m.RecordRankRequest("/rank", "balanced")
			m.RecordRankRequest("/rank/merge", "quality")
			m.RecordCandidatesScored(40)
			m.RecordWeightFallback("weights")
			m.RecordCacheLookup(true)
			m.RecordCacheLookup(false)
			m.RecordCacheLookup(false)
			m.RecordStoreQuery(3.5, 8, 2)

			Convey("Then the counters reflect it", func() {
				So(testutil.ToFloat64(m.rankRequests.WithLabelValues("/rank", "balanced")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.rankRequests.WithLabelValues("/rank/merge", "quality")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.candidatesScored), ShouldEqual, 40)
				So(testutil.ToFloat64(m.weightFallbacks.WithLabelValues("weights")), ShouldEqual, 1)
				So(testutil.ToFloat64(m.cacheLookups.WithLabelValues("miss")), ShouldEqual, 2)
				So(testutil.ToFloat64(m.storeHydrated), ShouldEqual, 8)
				So(testutil.ToFloat64(m.storeMissing), ShouldEqual, 2)
			})

			Convey("Then metric names carry the namespace and subsystem", func() {
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := map[string]bool{}
				for _, f := range families {
					names[f.GetName()] = true
				}
				So(names["test_rank_requests_total"], ShouldBeTrue)
				So(names["test_rank_candidates_scored_total"], ShouldBeTrue)
			})
		})

		Convey("When registering an identical manager on the same registry", func() {
			Convey("Then it panics on duplicate registration", func() {
				So(func() {
					NewManager(
						WithPrometheusRegistry(registry),
						WithNamespace("test"),
						WithSubsystem("rank"),
						WithHistogramBuckets([]float64{1, 10}),
						WithCustomLabels(map[string]string{"env": "test"}),
					)
				}, ShouldPanic)
			})
		})

		Convey("When registering a manager under another namespace", func() {
			Convey("Then both live on the registry", func() {
				So(func() {
					NewManager(WithPrometheusRegistry(registry), WithNamespace("other"))
				}, ShouldNotPanic)
			})
		})
	})
}

func TestGlobalRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording through the package functions", func() {
			So(func() {
				RecordRankRequest("/rank", "semantic")
				RecordRankingLatency("/rank", 0.4)
				RecordCandidatesScored(3)
				RecordMergeSources(2)
				RecordWeightFallback("set_weights")
				RecordPersonalizedRequest()
				RecordCacheLookup(true)
				RecordCacheError()
				RecordStoreQuery(1.2, 3, 0)
				UpdateQueueSize(4)
				UpdateQueueCapacity(1024)
				UpdateQueueUtilization(0.004)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordQueueProcessingLatency(0.2)
				UpdateWorkerCount(4)
				UpdateWorkerActiveCount(4)
				UpdateWorkerIdleCount(0)
				RecordWorkerChunk(0.3)
				RecordInlineChunk()
				RecordHTTPRequest("/rank", "POST", "200")
				RecordHTTPRequestDuration("/rank", "POST", "200", 2)
				RecordErrorByComponent("cache", "timeout")
				RecordErrorByEndpoint("/rank", "POST", "validation_error")
				UpdateSystemMemoryUsage(1 << 20)
				UpdateSystemGoroutineCount(12)
				RecordSystemGCPauseTime(0.5)
			}, ShouldNotPanic)

			Convey("Then the custom registry exposes them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})

		Convey("When recording concurrently", func() {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						RecordCandidatesScored(1)
						RecordHTTPRequest("/rank", "POST", "200")
					}
				}()
			}
			wg.Wait()

			Convey("Then nothing panics", func() {
				So(true, ShouldBeTrue)
			})
		})
	})
}
