package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/reciperank/internal/config"
	"github.com/okian/reciperank/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const rankBody = `{"mode":"semantic","candidates":[{"id":"a","similarity":0.2},{"id":"b","similarity":0.9}]}`

func post(h http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestWire(t *testing.T) {
	convey.Convey("Given the default configuration", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.WorkerCount = 2

		a, err := wire(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer a.close(ctx)

		convey.Convey("Then the API and docs routes are served", func() {
			for _, path := range []string{"/", "/healthz", "/modes", "/stats", "/openapi.yaml", "/api-docs"} {
				rec := httptest.NewRecorder()
				a.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
				convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			}
		})

		convey.Convey("Then ranking responses are cached in memory", func() {
			first := post(a.handler, "/rank", rankBody)
			convey.So(first.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(first.Header().Get("X-Cache"), convey.ShouldEqual, "MISS")

			second := post(a.handler, "/rank", rankBody)
			convey.So(second.Header().Get("X-Cache"), convey.ShouldEqual, "HIT")
			convey.So(second.Body.String(), convey.ShouldEqual, first.Body.String())
		})

		convey.Convey("Then /rank/hits is unavailable without a store", func() {
			rec := post(a.handler, "/rank/hits", `{"hits":[{"id":"a","similarity":0.5}]}`)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})

		convey.Convey("Then the service is running", func() {
			convey.So(a.svc.GetStats()["started"], convey.ShouldEqual, true)
		})
	})

	convey.Convey("Given a Redis address", t, func() {
		mr, err := miniredis.Run()
		convey.So(err, convey.ShouldBeNil)
		defer mr.Close()

		ctx := context.Background()
		cfg := config.New()
		cfg.RedisAddr = mr.Addr()

		a, err := wire(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer a.close(ctx)

		convey.Convey("Then ranking responses land in Redis", func() {
			rec := post(a.handler, "/rank", rankBody)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(mr.Keys(), convey.ShouldHaveLength, 1)
		})
	})

	convey.Convey("Given a caching TTL of zero", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.CacheTTLSeconds = 0

		a, err := wire(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer a.close(ctx)

		convey.Convey("Then responses are not cached", func() {
			rec := post(a.handler, "/rank", rankBody)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(rec.Header().Get("X-Cache"), convey.ShouldBeEmpty)
		})
	})

	convey.Convey("Given a Postgres DSN that cannot be reached", t, func() {
		ctx := context.Background()
		cfg := config.New()
		cfg.CacheTTLSeconds = 0
		cfg.PostgresDSN = "postgres://reciperank@127.0.0.1:1/recipes?sslmode=disable&connect_timeout=1"

		a, err := wire(ctx, cfg, logger.Get())
		convey.So(err, convey.ShouldBeNil)
		defer a.close(ctx)

		convey.Convey("Then hit ranking reports the store unavailable", func() {
			rec := post(a.handler, "/rank/hits", `{"hits":[{"id":"a","similarity":0.5}]}`)
			convey.So(rec.Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the background metric updaters", t, func() {
		convey.Convey("Then they return once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)

			cfg := config.New()
			a, err := wire(context.Background(), cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			defer a.close(context.Background())
			convey.So(func() { startServiceMetricsUpdater(ctx, a.svc) }, convey.ShouldNotPanic)
		})

		convey.Convey("Then a system metrics update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
