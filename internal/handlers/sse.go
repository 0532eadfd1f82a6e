package handlers

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/starfederation/datastar-go/datastar"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/ui/templates"
)

var summaryDownloads = []templates.Download{
	{Label: "Download Chart", Href: "/export/monthly-sales.html"},
	{Label: "Download Chart Image", Href: "/export/monthly-sales.png"},
	{Label: "Download Data", Href: "/export/sales-data.xlsx"},
}

type SSEHandlers struct {
	analytics *services.Analytics
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, metrics *observability.Metrics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		metrics:   metrics,
		logger:    logger,
	}
}

// flexInt accepts both 5 and "5"; number inputs may send either.
type flexInt int

func (n *flexInt) UnmarshalJSON(b []byte) error {
	v, err := parseTopN(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*n = flexInt(v)
	return nil
}

// flexList accepts an array, a single string or null. An empty string is an
// empty selection; null leaves the selection unset.
type flexList []string

func (l *flexList) UnmarshalJSON(b []byte) error {
	switch {
	case bytes.Equal(b, []byte("null")):
		*l = nil
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = flexList(splitList(s))
		return nil
	}
	var items []string
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	if items == nil {
		items = []string{}
	}
	*l = items
	return nil
}

// viewSignals mirrors the client-side signal store.
type viewSignals struct {
	View      string   `json:"view"`
	TopN      flexInt  `json:"topN"`
	Country   string   `json:"country"`
	Regions   flexList `json:"regions"`
	Countries flexList `json:"countries"`
}

func (s viewSignals) params() services.ViewParams {
	return services.ViewParams{
		TopN:      int(s.TopN),
		Country:   s.Country,
		Regions:   []string(s.Regions),
		Countries: []string(s.Countries),
	}
}

// HandleView recomputes the selected view and patches #view-content, then
// echoes the normalized control values back into the signal store.
func (h *SSEHandlers) HandleView(w http.ResponseWriter, r *http.Request) {
	requestID := observability.GetRequestID(r.Context())

	var signals viewSignals
	if err := datastar.ReadSignals(r, &signals); err != nil {
		errors.WriteError(w, h.logger, errors.BadRequestWrap(err, "Invalid signals"), requestID)
		return
	}

	view := models.ViewSummary
	if signals.View != "" {
		v, err := models.ParseView(signals.View)
		if err != nil {
			h.patchError(w, r, err)
			return
		}
		view = v
	}

	vm, err := renderView(r.Context(), h.analytics, h.metrics, view, signals.params())
	if err != nil {
		h.patchError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := templates.ViewPanel(vm, summaryDownloads).Render(r.Context(), &buf); err != nil {
		h.patchError(w, r, err)
		return
	}

	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(buf.String()); err != nil {
		h.logger.Error("patch view", "error", err, "request_id", requestID)
		return
	}

	normalized, err := json.Marshal(map[string]any{
		"view":      view.Slug(),
		"topN":      vm.Params.TopN,
		"country":   vm.Params.Country,
		"regions":   vm.Params.Regions,
		"countries": vm.Params.Countries,
	})
	if err != nil {
		h.logger.Error("marshal signals", "error", err, "request_id", requestID)
		return
	}
	if err := sse.PatchSignals(normalized); err != nil {
		h.logger.Error("patch signals", "error", err, "request_id", requestID)
	}
}

func (h *SSEHandlers) patchError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := observability.GetRequestID(r.Context())
	h.logger.Warn("view failed", "error", err, "request_id", requestID)

	var buf bytes.Buffer
	if tmplErr := templates.ErrorPanel(appError(err).Message).Render(r.Context(), &buf); tmplErr != nil {
		h.logger.Error("render error panel", "error", tmplErr, "request_id", requestID)
		return
	}
	sse := datastar.NewSSE(w, r)
	if err := sse.PatchElements(buf.String()); err != nil {
		h.logger.Error("patch error panel", "error", err, "request_id", requestID)
	}
}
