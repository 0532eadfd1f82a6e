package handlers

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sales-dashboard/internal/errors"
	"sales-dashboard/internal/models"
	"sales-dashboard/internal/observability"
	"sales-dashboard/internal/services"
)

const cacheMaxAge = "public, max-age=300"

// Renderer is the slice of Analytics the handlers need.
type Renderer interface {
	Render(ctx context.Context, view models.View, params services.ViewParams) (services.ViewModel, error)
}

func renderView(ctx context.Context, r Renderer, m *observability.Metrics, view models.View, params services.ViewParams) (services.ViewModel, error) {
	ctx, span := observability.StartSpan(ctx, "render "+view.Slug())
	span.SetTag("view", view.Slug())

	start := time.Now()
	vm, err := r.Render(ctx, view, params)
	m.ObserveRender(view.Slug(), time.Since(start), err)

	if err != nil {
		span.SetError(err)
	}
	span.Finish()
	return vm, err
}

// appError maps service and model errors onto the HTTP error envelope.
func appError(err error) *errors.AppError {
	var (
		appErr  *errors.AppError
		loadErr *services.LoadError
		empty   *services.EmptyDatasetError
	)
	switch {
	case stderrors.As(err, &appErr):
		return appErr
	case stderrors.Is(err, models.ErrUnknownView):
		return errors.NotFoundWrap(err, "Unknown view")
	case stderrors.Is(err, models.ErrUnknownDimension):
		return errors.BadRequestWrap(err, "Unknown dimension")
	case stderrors.Is(err, models.ErrUnknownMetric):
		return errors.BadRequestWrap(err, "Unknown metric")
	case stderrors.As(err, &empty):
		return errors.NoData(err, "No rows match the request")
	case stderrors.As(err, &loadErr), stderrors.Is(err, services.ErrNotLoaded):
		return errors.ServiceUnavailable(err, "Dataset is not available")
	case stderrors.Is(err, context.DeadlineExceeded), stderrors.Is(err, context.Canceled):
		return errors.ServiceUnavailable(err, "Request timed out")
	default:
		return errors.InternalWrap(err, "An unexpected error occurred")
	}
}

// paramsFromQuery reads view parameters from a query string. An absent
// regions or countries key leaves the default selection in place; a present
// but empty one selects everything.
func paramsFromQuery(q url.Values) (services.ViewParams, error) {
	var p services.ViewParams
	n, err := parseTopN(q.Get("top_n"))
	if err != nil {
		return p, errors.BadRequestWrap(err, "top_n must be a number")
	}
	p.TopN = n
	p.Country = strings.TrimSpace(q.Get("country"))
	if q.Has("regions") {
		p.Regions = splitList(q.Get("regions"))
	}
	if q.Has("countries") {
		p.Countries = splitList(q.Get("countries"))
	}
	return p, nil
}

// parseTopN reads a top-N control value the same way for query strings and
// signals. Empty, zero and fractional values stay unset so the view default
// applies; anything else is clamped to [MinTopN, MaxTopN].
func parseTopN(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("top-N %q: %w", raw, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("top-N %q is not a finite number", raw)
	}
	if v == 0 || v != math.Trunc(v) {
		return 0, nil
	}
	return int(min(max(v, services.MinTopN), services.MaxTopN)), nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
