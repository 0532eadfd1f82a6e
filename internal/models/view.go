package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrUnknownView = errors.New("unknown view")

// View is one of the dashboard's analysis modes.
type View int

const (
	ViewSummary View = iota + 1
	ViewTopProducts
	ViewSalesByRegion
	ViewProfitByCategory
)

func Views() []View {
	return []View{ViewSummary, ViewTopProducts, ViewSalesByRegion, ViewProfitByCategory}
}

// Slug is the URL and signal form of the view.
func (v View) Slug() string {
	switch v {
	case ViewSummary:
		return "summary"
	case ViewTopProducts:
		return "top-products"
	case ViewSalesByRegion:
		return "sales-by-region"
	case ViewProfitByCategory:
		return "profit-by-category"
	default:
		return ""
	}
}

// Label is the name shown in the view selector.
func (v View) Label() string {
	switch v {
	case ViewSummary:
		return "Summary"
	case ViewTopProducts:
		return "Top Products"
	case ViewSalesByRegion:
		return "Sales by Region"
	case ViewProfitByCategory:
		return "Profit by Category"
	default:
		return ""
	}
}

func (v View) String() string {
	return v.Slug()
}

func (v View) MarshalText() ([]byte, error) {
	if v.Slug() == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownView, int(v))
	}
	return []byte(v.Slug()), nil
}

// ParseView accepts a slug or a selector label, case-insensitively.
func ParseView(s string) (View, error) {
	s = strings.TrimSpace(s)
	for _, v := range Views() {
		if strings.EqualFold(s, v.Slug()) || strings.EqualFold(s, v.Label()) {
			return v, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownView, s)
}
