package services

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"sales-dashboard/internal/models"
)

// DefaultCategoricalRatio is the distinct/total ratio below which a string
// column is stored as categorical.
const DefaultCategoricalRatio = 0.5

// inferColumns classifies every column of df. Date columns are reported as
// such; the rest follow the detected series type and, for strings, the
// distinct-value ratio.
func inferColumns(df dataframe.DataFrame, ratio float64) []models.ColumnInfo {
	if ratio <= 0 {
		ratio = DefaultCategoricalRatio
	}

	names := df.Names()
	types := df.Types()
	rows := df.Nrow()
	out := make([]models.ColumnInfo, 0, len(names))

	for i, name := range names {
		col := df.Col(name)
		info := models.ColumnInfo{Name: name, Distinct: distinctCount(col)}

		switch {
		case dateColumns[name]:
			info.Kind = models.KindDate
		case types[i] == series.Int:
			info.Kind = models.KindInteger
		case types[i] == series.Float:
			info.Kind = models.KindFloat
		case rows > 0 && float64(info.Distinct)/float64(rows) < ratio:
			info.Kind = models.KindCategorical
		default:
			info.Kind = models.KindText
		}
		out = append(out, info)
	}
	return out
}

func distinctCount(s series.Series) int {
	seen := make(map[string]struct{}, s.Len())
	for _, v := range s.Records() {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func columnKind(cols []models.ColumnInfo, name string) models.ColumnKind {
	for _, c := range cols {
		if c.Name == name {
			return c.Kind
		}
	}
	return ""
}
