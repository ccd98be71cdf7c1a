package report

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/prepwise/prepwise/internal/llm"
	"github.com/prepwise/prepwise/internal/telemetry"
)

type state int

const (
	stateClassify state = iota
	statePlan
	stateDispatch
	stateSynthesize
	stateDone
)

func (s state) String() string {
	switch s {
	case stateClassify:
		return "CLASSIFY"
	case statePlan:
		return "PLAN"
	case stateDispatch:
		return "DISPATCH"
	case stateSynthesize:
		return "SYNTHESIZE"
	case stateDone:
		return "DONE"
	}
	return "UNKNOWN"
}

// maxSteps bounds the model and tool transitions per run, counted from
// planning onward; classification is pure and free. Synthesis can loop back
// through dispatch when the model answers with more tool calls, and the
// budget leaves room for exactly one such follow-up round
// (plan, dispatch, synthesize, dispatch, synthesize) before terminating.
const maxSteps = 5

// Orchestrator wires classifier, planner, dispatcher and synthesizer into
// the report state machine. One Orchestrator serves concurrent runs; all
// per-run state lives on the stack of GenerateReport.
type Orchestrator struct {
	planner     *Planner
	dispatcher  *Dispatcher
	synthesizer *Synthesizer
	logger      *log.Logger
	tracer      trace.Tracer
}

func NewOrchestrator(planner *Planner, dispatcher *Dispatcher, synthesizer *Synthesizer, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{
		planner:     planner,
		dispatcher:  dispatcher,
		synthesizer: synthesizer,
		logger:      logger,
		tracer:      otel.Tracer("prepwise/report"),
	}
}

// GenerateReport runs the full pipeline for one performance report. It never
// returns an error: every fatal condition is converted into the user-visible
// error sentence inside the response.
func (o *Orchestrator) GenerateReport(ctx context.Context, data PerformanceReport) ReportResponse {
	runID := uuid.NewString()
	started := time.Now()
	ctx, span := o.tracer.Start(ctx, "report.generate",
		trace.WithAttributes(attribute.String("run.id", runID), attribute.Int("topics", len(data.TopicBreakdown))))
	defer span.End()
	defer func() {
		telemetry.ReportDuration.Observe(time.Since(started).Seconds())
	}()

	o.logger.Printf("run %s: starting report generation (%d topics)", runID, len(data.TopicBreakdown))
	text, degraded, err := o.run(ctx, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		telemetry.ReportRuns.WithLabelValues("error").Inc()
		o.logger.Printf("run %s: failed: %v", runID, err)
		return ReportResponse{Analysis: fmt.Sprintf("An error occurred while generating the report: %v", err)}
	}

	outcome := "ok"
	if degraded {
		outcome = "degraded"
	}
	telemetry.ReportRuns.WithLabelValues(outcome).Inc()
	o.logger.Printf("run %s: done in %s (%s)", runID, time.Since(started).Round(time.Millisecond), outcome)
	return ReportResponse{Analysis: text, Degraded: degraded}
}

func (o *Orchestrator) run(ctx context.Context, data PerformanceReport) (string, bool, error) {
	var (
		cls          Classification
		conv         = NewConversation()
		pendingCalls []ToolCallRequest
		allowedURLs  []string
		finalText    string
		degraded     bool
	)

	current := stateClassify
	for steps := 0; current != stateDone; {
		if current != stateClassify {
			steps++
		}
		if steps > maxSteps {
			return "", false, fmt.Errorf("step budget of %d transitions exceeded in state %s", maxSteps, current)
		}

		switch current {
		case stateClassify:
			_, span := o.tracer.Start(ctx, "report.classify")
			cls = Classify(data.TopicBreakdown)
			span.SetAttributes(
				attribute.Int("strengths", len(cls.Strengths)),
				attribute.Int("weaknesses", len(cls.Weaknesses)),
			)
			span.End()
			current = statePlan

		case statePlan:
			planCtx, span := o.tracer.Start(ctx, "report.plan")
			plan, err := o.planner.Plan(planCtx, cls.Weaknesses)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.End()
				return "", false, err
			}
			span.SetAttributes(attribute.Int("tool_calls", len(plan.Calls)))
			span.End()
			conv = conv.Append(plan.Message)
			pendingCalls = plan.Calls
			if len(pendingCalls) > 0 {
				current = stateDispatch
			} else {
				current = stateSynthesize
			}

		case stateDispatch:
			dispatchCtx, span := o.tracer.Start(ctx, "report.dispatch",
				trace.WithAttributes(attribute.Int("calls", len(pendingCalls))))
			results := o.dispatcher.Dispatch(dispatchCtx, pendingCalls)
			span.End()
			pendingCalls = nil
			for _, record := range results {
				payload, _ := json.Marshal(toolPayload(record))
				conv = conv.Append(llm.Message{Role: "tool", ToolCallID: record.CallID, Content: string(payload)})
				for _, hit := range record.Results {
					allowedURLs = append(allowedURLs, hit.URL)
				}
			}
			current = stateSynthesize

		case stateSynthesize:
			synthCtx, span := o.tracer.Start(ctx, "report.synthesize")
			completion, err := o.synthesizer.Synthesize(synthCtx, cls, conv)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				span.End()
				return "", false, err
			}
			span.End()

			// The model may answer with more tool calls instead of a report.
			// Loop back through dispatch; the step budget keeps this finite.
			if calls := ParseSearchCalls(completion.Message.ToolCalls); len(calls) > 0 && strings.TrimSpace(completion.Message.Content) == "" {
				conv = conv.Append(completion.Message)
				pendingCalls = calls
				current = stateDispatch
				continue
			}

			text, clean := VerifyLinks(completion.Message.Content, allowedURLs)
			if !clean {
				o.logger.Printf("stripped hyperlinks not grounded in tool results")
			}
			finalText = text
			degraded = !clean
			current = stateDone
		}
	}
	return finalText, degraded, nil
}

// toolPayload renders a tool result the way the synthesis prompt describes
// it: a list of {url, content} records, empty when the search came up dry.
func toolPayload(record ToolResult) []map[string]string {
	out := make([]map[string]string, 0, len(record.Results))
	for _, hit := range record.Results {
		content := hit.Title
		if content == "" {
			content = hit.Snippet
		}
		out = append(out, map[string]string{"url": hit.URL, "content": content})
	}
	return out
}
