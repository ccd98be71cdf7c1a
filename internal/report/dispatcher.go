package report

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/prepwise/prepwise/internal/telemetry"
	"github.com/prepwise/prepwise/tools/websearch"
)

// resultsPerCall caps each search at the single top-ranked hit. The
// synthesizer attributes one URL per resource slot, so precision beats recall.
const resultsPerCall = 1

// Dispatcher executes requested search calls through a bounded worker pool.
// Calls are independent of each other, so they run concurrently.
type Dispatcher struct {
	searcher      websearch.Searcher
	logger        *log.Logger
	maxConcurrent int
	callTimeout   time.Duration
}

func NewDispatcher(searcher websearch.Searcher, maxConcurrent int, callTimeout time.Duration, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(log.Writer(), "[DISPATCH] ", log.LstdFlags)
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	if callTimeout <= 0 {
		callTimeout = 15 * time.Second
	}
	return &Dispatcher{searcher: searcher, logger: logger, maxConcurrent: maxConcurrent, callTimeout: callTimeout}
}

// Dispatch runs every call exactly once and returns one ToolResult per call,
// in request order. A failed or empty search produces an empty record; the
// pipeline proceeds and the report renders that slot as unavailable.
func (d *Dispatcher) Dispatch(ctx context.Context, calls []ToolCallRequest) []ToolResult {
	results := make([]ToolResult, len(calls))
	sem := make(chan struct{}, d.maxConcurrent)
	var wg sync.WaitGroup

	for i, call := range calls {
		wg.Add(1)
		go func(i int, call ToolCallRequest) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, d.callTimeout)
			defer cancel()

			record := ToolResult{CallID: call.ID, Query: call.Query}
			hits, err := d.searcher.Search(callCtx, call.Query, resultsPerCall)
			switch {
			case err != nil:
				d.logger.Printf("search failed for %q: %v", call.Query, err)
				telemetry.SearchCalls.WithLabelValues("error").Inc()
			case len(hits) == 0:
				d.logger.Printf("search returned nothing for %q", call.Query)
				telemetry.SearchCalls.WithLabelValues("empty").Inc()
			default:
				if len(hits) > resultsPerCall {
					hits = hits[:resultsPerCall]
				}
				record.Results = hits
				telemetry.SearchCalls.WithLabelValues("ok").Inc()
			}
			results[i] = record
		}(i, call)
	}
	wg.Wait()
	return results
}
