package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/internal/models"
)

const (
	WorkbookFileName    = "sales_data.xlsx"
	WorkbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	dataSheet           = "Sales Data"
	summarySheet        = "Summary"
)

var workbookHeaders = []string{
	"Order Date", "Ship Date", "Sales", "Profit", "Quantity", "Category",
	"Sub-Category", "Region", "Segment", "Country", "Product Name",
	"Order Month", "Order Year",
}

// WriteWorkbook writes the dataset as a spreadsheet with a summary sheet
// holding the headline cards.
func WriteWorkbook(w io.Writer, ds *models.Dataset, cards []MetricCard) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", dataSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(dataSheet, "A1", &workbookHeaders); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, r := range ds.All() {
		row := []any{
			r.OrderDate.Format("2006-01-02"),
			shipDateCell(r),
			r.Sales.InexactFloat64(),
			r.Profit.InexactFloat64(),
			r.Quantity,
			r.Category,
			r.SubCategory,
			r.Region,
			r.Segment,
			r.Country,
			r.ProductName,
			r.OrderMonth,
			r.OrderYear,
		}
		if err := f.SetSheetRow(dataSheet, fmt.Sprintf("A%d", i+2), &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("add summary sheet: %w", err)
	}
	for i, c := range cards {
		value := c.Value
		if c.NoData {
			value = "no data"
		}
		row := []any{c.Label, value}
		if err := f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+1, err)
		}
	}

	for _, cw := range []struct {
		from, to string
		width    float64
	}{{"A", "B", 12}, {"K", "K", 40}} {
		if err := f.SetColWidth(dataSheet, cw.from, cw.to, cw.width); err != nil {
			return fmt.Errorf("set column width %s: %w", cw.from, err)
		}
	}

	return f.Write(w)
}

func shipDateCell(r models.Record) string {
	if r.ShipDate.IsZero() {
		return ""
	}
	return r.ShipDate.Format("2006-01-02")
}
