package probe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/reciperank/internal/domain/model"
	"github.com/okian/reciperank/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrInvalidResponses reports that at least one response failed verification.
var ErrInvalidResponses = errors.New("invalid ranking responses")

type resultSetBody struct {
	Name       string            `json:"name" cbor:"name"`
	Weight     float64           `json:"weight" cbor:"weight"`
	Candidates []model.Candidate `json:"candidates" cbor:"candidates"`
}

type requestBody struct {
	Mode       string            `json:"mode,omitempty" cbor:"mode,omitempty"`
	Compact    bool              `json:"compact" cbor:"compact"`
	Candidates []model.Candidate `json:"candidates,omitempty" cbor:"candidates,omitempty"`
	ResultSets []resultSetBody   `json:"result_sets,omitempty" cbor:"result_sets,omitempty"`
}

// Run executes a complete probe and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	log := logger.Named("probe")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting ranking probe",
		logger.String("baseURL", config.BaseURL),
		logger.Int("requests", config.Requests),
		logger.Int("candidates", config.Candidates),
		logger.Int("workers", config.Workers),
		logger.String("mode", config.Mode),
		logger.Bool("cbor", config.CBOR),
		logger.Bool("merge", config.Merge),
	)

	client := newHTTPClient(config.Timeout, config.CBOR)
	if err := checkServiceHealth(ctx, client, config.BaseURL); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	lists := generateLists(config.Requests, config.Candidates, time.Now())
	stats.RequestsGenerated = len(lists)

	send(ctx, log, client, config, lists, stats)

	if config.OutputFile != "" {
		if err := saveLists(config.OutputFile, lists); err != nil {
			log.Warn(ctx, "failed to save generated lists", logger.Error(err))
		} else {
			log.Info(ctx, "generated lists saved", logger.String("filename", config.OutputFile))
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, log, stats)

	if stats.ResponsesInvalid > 0 || stats.RequestsFailed > 0 {
		return stats, fmt.Errorf("%w: %d invalid, %d failed", ErrInvalidResponses, stats.ResponsesInvalid, stats.RequestsFailed)
	}
	return stats, nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient, baseURL string) error {
	resp, err := client.Get(ctx, baseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// body builds the request for list. In merge mode the list is split into two
// overlapping result sets.
func body(config *Config, list []model.Candidate) (string, requestBody) {
	b := requestBody{Mode: config.Mode, Compact: true}
	if !config.Merge || len(list) < 2 {
		b.Candidates = list
		return "/rank", b
	}
	half := len(list) / 2
	b.ResultSets = []resultSetBody{
		{Name: "vector", Weight: 0.7, Candidates: list[:half+1]},
		{Name: "keyword", Weight: 0.3, Candidates: list[half:]},
	}
	return "/rank/merge", b
}

// send fans the lists out over config.Workers goroutines.
func send(ctx context.Context, log logger.Logger, client *HTTPClient, config *Config, lists [][]model.Candidate, stats *Stats) {
	var sent, ok, failed, invalid, ranked atomic.Int64

	work := make(chan int, config.Workers*2)
	var wg sync.WaitGroup
	for range max(config.Workers, 1) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				path, b := body(config, lists[i])
				sent.Add(1)
				resp, err := client.PostRank(ctx, config.BaseURL+path, b)
				if err != nil {
					failed.Add(1)
					if config.Verbose {
						log.Warn(ctx, "request failed", logger.Int("request", i), logger.Error(err))
					}
					continue
				}
				if err := verifyResponse(lists[i], resp); err != nil {
					invalid.Add(1)
					log.Warn(ctx, "invalid response", logger.Int("request", i), logger.Error(err))
					continue
				}
				ok.Add(1)
				ranked.Add(int64(len(resp.Results)))
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range lists {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()
	wg.Wait()

	stats.RequestsSent = int(sent.Load())
	stats.RequestsSuccessful = int(ok.Load())
	stats.RequestsFailed = int(failed.Load())
	stats.ResponsesInvalid = int(invalid.Load())
	stats.CandidatesRanked = int(ranked.Load())
}

func saveLists(filename string, lists [][]model.Candidate) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(lists, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal lists: %w", err)
	}
	return os.WriteFile(filename, data, filePermission)
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.RequestsSent) / stats.Duration.Seconds()
	}
	log.Info(ctx, "final statistics",
		logger.Int("requestsGenerated", stats.RequestsGenerated),
		logger.Int("requestsSent", stats.RequestsSent),
		logger.Int("requestsSuccessful", stats.RequestsSuccessful),
		logger.Int("requestsFailed", stats.RequestsFailed),
		logger.Int("responsesInvalid", stats.ResponsesInvalid),
		logger.Int("candidatesRanked", stats.CandidatesRanked),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", perSecond),
	)
}
