package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"khata/internal/core"
	"khata/internal/intent"
	"khata/internal/log"
	"khata/internal/services"
)

type voiceRequest struct {
	Text string `json:"text"`
}

// voiceResponse flattens the execution result next to the parsed intent,
// so clients see both what was understood and what happened.
type voiceResponse struct {
	Intent map[string]any `json:"intent"`
	services.Result
}

// handleVoiceCommand interprets a transcribed utterance and executes it.
func (s *Server) handleVoiceCommand(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req voiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	parsed := intent.Parse(req.Text)
	s.logger.InfoContext(r.Context(), "Voice command parsed",
		log.FieldAction, string(parsed.Action),
		log.FieldTranscript, req.Text)

	result, err := s.commands.Execute(r.Context(), parsed)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Command execution failed",
			log.FieldAction, string(parsed.Action), log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "command failed")
		return
	}

	writeJSON(w, http.StatusOK, voiceResponse{Intent: parsed.Fields(), Result: result})
}

type addRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Description string  `json:"description"`
}

// handleAdd records an expense from structured JSON, for clients that
// already know the fields and skip the interpreter.
func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	now := time.Now()
	date := core.NewDate(now.Year(), int(now.Month()), now.Day())
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := core.ParseDate(req.Date)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	category := strings.ToLower(strings.TrimSpace(req.Category))
	if category == "" {
		category = intent.CategoryFallback
	}

	expense := core.Expense{
		Date:        date,
		TimeOfDay:   now.Format("15:04:05"),
		Amount:      core.FromRupees(req.Amount),
		Category:    category,
		Description: strings.TrimSpace(req.Description),
	}
	if err := expense.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.store.Add(r.Context(), expense)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Expense insert failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not save expense")
		return
	}
	expense.ID = id
	s.summaries.Invalidate()

	writeJSON(w, http.StatusCreated, expense)
}

// handleRecent lists the newest expenses, clamped by safeLimit.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	limit := safeLimit(r.URL.Query().Get("limit"))
	expenses, err := s.store.Recent(r.Context(), limit)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Recent query failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not list expenses")
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"expenses": expenses, "limit": limit})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	s.renderSummary(w, r, s.summaries.BalanceText)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	s.renderSummary(w, r, s.summaries.WeeklyText)
}

func (s *Server) handleMonthly(w http.ResponseWriter, r *http.Request) {
	s.renderSummary(w, r, s.summaries.MonthlyText)
}

func (s *Server) renderSummary(w http.ResponseWriter, r *http.Request, render func(ctx context.Context, now time.Time) (string, error)) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	text, err := render(r.Context(), time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Summary failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not build summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"reply": text})
}

// handleBudgets reports budget status, for one category or all of them.
func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	in := intent.Intent{Action: intent.ActionShowBudgets}
	if category := strings.TrimSpace(r.URL.Query().Get("category")); category != "" {
		in.Category = strings.ToLower(category)
	}

	result, err := s.commands.Execute(r.Context(), in)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Budget query failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not read budgets")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleChart returns the aggregates the dashboard draws from.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}

	series, err := s.summaries.ChartSeries(r.Context(), time.Now())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Chart query failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "could not build chart data")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chart_series": series})
}
