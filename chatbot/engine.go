package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"scm-agent/config"
	"scm-agent/scmerrors"

	"go.uber.org/zap"
)

// Generator produces narrative text for a prompt. Implementations own their
// retry policy and post-processing.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Predictor returns a numeric demand prediction for an item within a project.
type Predictor interface {
	Predict(ctx context.Context, project, item string, date time.Time, inUse int) (float64, error)
}

// Engine composes the final answer for one question: classify, extract,
// aggregate, then answer deterministically or via the generator. It holds no
// per-question state and never mutates the dataset it is handed.
type Engine struct {
	generator     Generator
	predictor     Predictor
	caps          Caps
	forecastWeeks int
	logger        *zap.Logger
	now           func() time.Time
}

func NewEngine(cfg *config.Config, generator Generator, predictor Predictor, logger *zap.Logger) *Engine {
	caps := DefaultCaps()
	if cfg != nil {
		if cfg.TopItems > 0 {
			caps.TopItems = cfg.TopItems
		}
		if cfg.TopProjects > 0 {
			caps.TopProjects = cfg.TopProjects
		}
		if cfg.RecentRecords > 0 {
			caps.Recent = cfg.RecentRecords
		}
		if cfg.InventoryCap > 0 {
			caps.Inventory = cfg.InventoryCap
		}
	}
	weeks := 12
	if cfg != nil && cfg.ForecastWeeks > 0 {
		weeks = cfg.ForecastWeeks
	}
	return &Engine{
		generator:     generator,
		predictor:     predictor,
		caps:          caps,
		forecastWeeks: weeks,
		logger:        logger,
		now:           time.Now,
	}
}

// WithNow overrides the clock. Intended for tests.
func (e *Engine) WithNow(now func() time.Time) *Engine {
	e.now = now
	return e
}

const (
	msgEmptyQuestion = "Please ask a question about inventory, forecasts, or project usage."
	msgGreeting      = "Hi! I can help you analyze inventory levels, forecast demand, summarize project usage, and provide stock insights. What would you like to know?"
	msgHelp          = "I can answer questions like:\n" +
		"• What are the top requested items this month?\n" +
		"• Show me low stock items\n" +
		"• Predict next week demand for an item\n" +
		"• Which items are still unreturned for a project?\n" +
		"Name a project or item to narrow things down."
	msgUnknown = "I'm not sure what you're asking. Try questions like:\n" +
		"• What are the top requested items?\n" +
		"• Show me low stock items\n" +
		"• Forecast demand for an item next week\n" +
		"• Unreturned items for a project"
	msgNameItem    = "Please tell me which item to forecast, e.g. \"predict next week demand for cement\"."
	msgNameProject = "Please tell me which project to check for unreturned items."
	msgNoData      = "I could not find any inventory or request data relevant to your question. Please try a different item or project name."
	msgRateLimited = "The AI service rate limit was reached. Please wait a moment and try again."
	msgQuota       = "AI service access was denied. Please check the API key configuration."
)

// Ask answers one question against the given snapshot. Every path returns a
// readable sentence; failures never surface as raw errors.
func (e *Engine) Ask(ctx context.Context, question string, ds *Dataset, lex Lexicon) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return msgEmptyQuestion
	}

	project := FindProject(question, lex)
	item := FindItem(question, lex)
	intent := Classify(question, project != "", item != "")

	e.logger.Debug("classified question",
		zap.String("intent", intent.String()),
		zap.String("project", project),
		zap.String("item", item))

	switch intent {
	case IntentGreeting:
		return msgGreeting
	case IntentHelp:
		return msgHelp
	case IntentUnknown:
		return msgUnknown
	case IntentForecast:
		return e.answerForecast(ctx, ds, project, item)
	case IntentUnreturned:
		return e.answerUnreturned(ds, project)
	case IntentInventoryStatus:
		return e.answerStockStatus(ds, item)
	default:
		return e.answerAnalysis(ctx, question, ds, project, item, intent)
	}
}

func (e *Engine) answerForecast(ctx context.Context, ds *Dataset, project, item string) string {
	now := e.now()

	if item == "" {
		if project != "" {
			items, months, err := LikelyItems(ds, project, now)
			if err == nil {
				if len(items) > 5 {
					items = items[:5]
				}
				return fmt.Sprintf("Based on the past %d months, project %s is likely to need: %s. Name a specific item for a numeric forecast.",
					months, strings.ToUpper(project), strings.Join(items, ", "))
			}
		}
		return msgNameItem
	}

	if e.predictor != nil && project != "" {
		predicted, err := e.predictor.Predict(ctx, project, item, now, 1)
		if err == nil {
			return fmt.Sprintf("Predicted next week demand for %s (project %s): %.2f units.", item, strings.ToUpper(project), predicted)
		}
		e.logger.Warn("prediction service failed, using local heuristic",
			zap.String("item", item), zap.Error(err))
	}

	avg, weeks, err := WeeklyAverage(ds, item, now, e.forecastWeeks)
	if err != nil {
		return fmt.Sprintf("There is not enough request history for %s to estimate next week's demand.", item)
	}
	return fmt.Sprintf("Based on the weekly average over the last %d weeks with activity, expect around %.1f units of %s next week.", weeks, avg, item)
}

func (e *Engine) answerUnreturned(ds *Dataset, project string) string {
	if project == "" {
		return msgNameProject
	}
	alert, err := UnreturnedReport(ds, project, e.now())
	if err != nil {
		return fmt.Sprintf("No unreturned or unconsumed items for project %s.", strings.ToUpper(project))
	}
	msg := fmt.Sprintf("Longest unreturned/unconsumed item for project %s: %s requested %s on %s (%d days ago).",
		strings.ToUpper(project), orUnknown(alert.Requester), orUnknown(alert.Item),
		formatDate(alert.Since), alert.DaysOutstanding)
	if alert.Count > 1 {
		msg += fmt.Sprintf(" %d unreturned requests in total.", alert.Count)
	}
	return msg
}

func (e *Engine) answerStockStatus(ds *Dataset, item string) string {
	summary, err := Aggregate(ds, Filter{Item: item}, e.caps)
	if err != nil {
		return msgNoData
	}
	var b strings.Builder
	b.WriteString("Inventory status:\n")
	fmt.Fprintf(&b, "• Critical items (≤%d units): %d\n", criticalStockMax, summary.Stock.Critical)
	fmt.Fprintf(&b, "• Low stock items (≤%d units): %d\n", lowStockMax, summary.Stock.Low)
	fmt.Fprintf(&b, "• Sufficient items: %d\n", summary.Stock.Sufficient)
	fmt.Fprintf(&b, "• Total items tracked: %d\n", summary.InventoryCount)
	if summary.InventoryValue > 0 {
		fmt.Fprintf(&b, "• Total inventory value: %.2f", summary.InventoryValue)
	}
	return strings.TrimRight(b.String(), "\n")
}

// answerAnalysis handles Summary, RequirementsList, and ItemLookup: aggregate
// the relevant slice, then either hand it to the generator or render the
// deterministic summary. The local rendering is always available, so the
// system can answer without the generator entirely.
func (e *Engine) answerAnalysis(ctx context.Context, question string, ds *Dataset, project, item string, intent Intent) string {
	now := e.now()

	filter := Filter{Project: project, Item: item}
	if window, ok := ResolveWindow(question, now); ok {
		filter.Window = &window
	} else if project == "" && item == "" && intent == IntentSummary {
		// A generic trend question with no named scope defaults to the
		// trailing quarter.
		window := DefaultWindow(now)
		filter.Window = &window
	}

	summary, err := Aggregate(ds, filter, e.caps)
	if err != nil {
		if filter.Window != nil {
			return fmt.Sprintf("No data available for the requested period (%s).", filter.Window.Label)
		}
		return msgNoData
	}

	if e.generator != nil {
		prompt := BuildPrompt(now, question, summary)
		text, genErr := e.generator.Generate(ctx, prompt)
		if genErr == nil && strings.TrimSpace(text) != "" {
			return text
		}
		switch {
		case errors.Is(genErr, scmerrors.ErrRateLimited):
			return msgRateLimited
		case errors.Is(genErr, scmerrors.ErrQuotaExceeded):
			return msgQuota
		}
		e.logger.Warn("narrative generation failed, using local summary", zap.Error(genErr))
	}

	return renderLocalSummary(summary)
}

// renderLocalSummary is the deterministic templated answer used when the
// generator is unavailable or fails transiently.
func renderLocalSummary(s *Summary) string {
	var b strings.Builder

	scope := "the available data"
	if s.Window != nil {
		scope = s.Window.Label
	} else if !s.DateMin.IsZero() {
		scope = fmt.Sprintf("%s to %s", formatDate(s.DateMin), formatDate(s.DateMax))
	}
	fmt.Fprintf(&b, "Here is what the data shows (%s):\n", scope)
	fmt.Fprintf(&b, "• %d requests totaling %s units across %d items and %d projects\n",
		s.TotalRequests, formatQty(s.TotalQuantity), s.UniqueItems, s.UniqueProjects)

	if len(s.TopItems) > 0 {
		names := make([]string, 0, 3)
		for i, entry := range s.TopItems {
			if i == 3 {
				break
			}
			names = append(names, fmt.Sprintf("%s (%s)", entry.Item, formatQty(entry.Quantity)))
		}
		fmt.Fprintf(&b, "• Top items by quantity: %s\n", strings.Join(names, ", "))
	}
	if len(s.TopProjects) > 0 {
		names := make([]string, 0, 2)
		for i, entry := range s.TopProjects {
			if i == 2 {
				break
			}
			names = append(names, fmt.Sprintf("%s (%d requests)", entry.Project, entry.Count))
		}
		fmt.Fprintf(&b, "• Most active projects: %s\n", strings.Join(names, ", "))
	}
	if s.InventoryCount > 0 {
		fmt.Fprintf(&b, "• Inventory: %d items tracked (%d critical, %d low stock, %d sufficient)\n",
			s.InventoryCount, s.Stock.Critical, s.Stock.Low, s.Stock.Sufficient)
	}
	b.WriteString("• Recommendation: verify stock for critical items and monitor high-demand equipment to prevent disruption.")

	return b.String()
}
