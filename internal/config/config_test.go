package config_test

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/okian/reciperank/internal/config"
	"github.com/okian/reciperank/internal/domain/scoring"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.WorkerCount, convey.ShouldEqual, runtime.NumCPU())
			convey.So(cfg.QueueSize, convey.ShouldEqual, 4096)
			convey.So(cfg.DefaultMode, convey.ShouldEqual, "balanced")
			convey.So(cfg.RecencyHalfLifeDays, convey.ShouldEqual, 30)
			convey.So(cfg.CacheTTL(), convey.ShouldEqual, time.Minute)
			convey.So(cfg.Overrides(), convey.ShouldBeNil)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New()

		convey.Convey("When the default mode is unknown", func() {
			cfg.DefaultMode = "spicy"

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg.Mode(), convey.ShouldEqual, scoring.ModeBalanced)
			})
		})

		convey.Convey("When the mode is written in upper case", func() {
			cfg.DefaultMode = "QUALITY"

			convey.Convey("Then it parses", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.Mode(), convey.ShouldEqual, scoring.ModeQuality)
			})
		})

		convey.Convey("When weight overrides name an unknown component", func() {
			cfg.WeightOverrides = map[string]float64{"spice": 1}

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When weight overrides are negative", func() {
			cfg.WeightOverrides = map[string]float64{"quality": -1}

			convey.Convey("Then validation fails", func() {
				convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When weight overrides are valid", func() {
			cfg.WeightOverrides = map[string]float64{"quality": 0.7}

			convey.Convey("Then they convert to scoring overrides", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				o := cfg.Overrides()
				convey.So(o, convey.ShouldNotBeNil)
				convey.So(*o.Quality, convey.ShouldEqual, 0.7)
				convey.So(o.Similarity, convey.ShouldBeNil)
			})
		})

		convey.Convey("When numeric limits are out of range", func() {
			cases := []func(*config.Config){
				func(c *config.Config) { c.RecencyHalfLifeDays = 0 },
				func(c *config.Config) { c.MaxCandidates = 0 },
				func(c *config.Config) { c.MaxRequestBytes = -1 },
				func(c *config.Config) { c.ChunkSize = 0 },
				func(c *config.Config) { c.QueueSize = 0 },
				func(c *config.Config) { c.CacheTTLSeconds = -5 },
				func(c *config.Config) { c.TracingSampleRate = 1.5 },
				func(c *config.Config) { c.Addr = "  " },
			}

			convey.Convey("Then each one fails validation", func() {
				for _, mutate := range cases {
					c := config.New()
					mutate(c)
					convey.So(errors.Is(c.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				}
			})
		})
	})
}
