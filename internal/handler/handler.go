package handler

import (
	"embed"
	"encoding/json"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/angeloszaimis/statusboard/internal/board"
	"github.com/angeloszaimis/statusboard/internal/poller"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// busyReloadSeconds is how soon a page rendered mid-cycle reloads to pick up
// the outcome.
const busyReloadSeconds = 1

// BoardReader exposes the current view state.
type BoardReader interface {
	Snapshot() board.Snapshot
}

// Refresher starts a refresh cycle without waiting for it. Trigger reports
// false when no cycle can be started.
type Refresher interface {
	Trigger(trigger poller.Trigger) bool
}

type StatusPageHandler struct {
	logger        *slog.Logger
	board         BoardReader
	refresher     Refresher
	limiter       *rate.Limiter
	reloadSeconds int
}

type pageData struct {
	board.Snapshot
	ReloadSeconds int
}

// NewStatusPageHandler wires the page to the board and the poller. limiter
// throttles manual refreshes; nil disables throttling. The rendered page
// reloads itself every reload interval.
func NewStatusPageHandler(logger *slog.Logger, b BoardReader, refresher Refresher, limiter *rate.Limiter, reload time.Duration) *StatusPageHandler {
	seconds := int(reload / time.Second)
	if seconds < 1 {
		seconds = 1
	}

	return &StatusPageHandler{
		logger:        logger,
		board:         b,
		refresher:     refresher,
		limiter:       limiter,
		reloadSeconds: seconds,
	}
}

// ServePage renders the HTML status page. While a cycle is in flight the
// page reloads after a second instead of waiting for the next interval.
func (h *StatusPageHandler) ServePage(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Snapshot:      h.board.Snapshot(),
		ReloadSeconds: h.reloadSeconds,
	}
	if data.Trigger.Disabled {
		data.ReloadSeconds = busyReloadSeconds
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pageTemplate.Execute(w, data); err != nil {
		h.logger.Error("Failed to render status page", slog.Any("err", err))
	}
}

// ServeBoard returns the board snapshot as JSON.
func (h *StatusPageHandler) ServeBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.board.Snapshot())
}

// ServeRefresh activates the manual trigger. Browsers posting the form are
// redirected back to the page; JSON clients get 202.
func (h *StatusPageHandler) ServeRefresh(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow() {
		h.logger.Warn("Manual refresh rate limited", slog.String("from", extractClientIP(r)))
		w.Header().Set("Retry-After", "1")
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": "too many refresh requests",
		})
		return
	}

	if !h.refresher.Trigger(poller.TriggerManual) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"error": "poller is not running",
		})
		return
	}

	h.logger.Info("Manual refresh requested", slog.String("from", extractClientIP(r)))

	if wantsJSON(r) {
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "refreshing"})
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ServeHealth reports that the process is serving.
func (h *StatusPageHandler) ServeHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
