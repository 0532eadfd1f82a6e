package render

import (
	"strconv"

	"sales-dashboard/internal/models"
)

var previewColumns = []string{
	"Order Date", "Ship Date", "Sales", "Profit", "Quantity", "Category",
	"Sub-Category", "Region", "Segment", "Country", "Product Name",
}

// PreviewTable shows the first limit records of ds.
func PreviewTable(id, title string, ds *models.Dataset, limit int) Table {
	t := Table{
		ID:        id,
		Title:     title,
		Columns:   previewColumns,
		TotalRows: ds.Len(),
	}
	for i, r := range ds.All() {
		if i >= limit {
			break
		}
		t.Rows = append(t.Rows, []string{
			r.OrderDate.Format("2006-01-02"),
			shipDateCell(r),
			FormatCurrency(r.Sales),
			FormatCurrency(r.Profit),
			strconv.Itoa(r.Quantity),
			r.Category,
			r.SubCategory,
			r.Region,
			r.Segment,
			r.Country,
			r.ProductName,
		})
	}
	return t
}

// AggregateTable lists buckets as rows of key and formatted value.
func AggregateTable(id, title string, agg models.Aggregate) Table {
	t := Table{
		ID:        id,
		Title:     title,
		Columns:   []string{agg.Dimension.Name(), agg.Metric.Name()},
		TotalRows: agg.Len(),
	}
	for _, b := range agg.Buckets {
		value := FormatNumber(b.Value)
		if agg.Metric.IsCurrency() {
			value = FormatCurrency(b.Value)
		}
		t.Rows = append(t.Rows, []string{b.Key, value})
	}
	return t
}
