package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/models"
	"sales-dashboard/internal/testutil"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertBuckets(t *testing.T, agg models.Aggregate, want map[string]string) {
	t.Helper()
	require.Len(t, agg.Buckets, len(want))
	for key, value := range want {
		got, ok := agg.Get(key)
		require.True(t, ok, "missing bucket %q", key)
		assert.True(t, got.Equal(dec(value)), "bucket %q: got %s, want %s", key, got, value)
	}
}

func TestGroupSum_SmallDataset(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		{Category: "A", Sales: dec("100")},
		{Category: "B", Sales: dec("50")},
		{Category: "A", Sales: dec("25")},
	})

	agg := GroupSum(ds, models.DimensionCategory, models.MetricSales, nil)

	assert.Equal(t, []string{"A", "B"}, agg.Keys())
	assertBuckets(t, agg, map[string]string{"A": "125", "B": "50"})
	assert.True(t, ScalarSum(ds, models.MetricSales, nil).Equal(dec("175")))
}

func TestGroupSum_UnknownBucket(t *testing.T) {
	agg := GroupSum(testutil.Dataset(), models.DimensionRegion, models.MetricSales, nil)

	assert.Equal(t, []string{"East", "West", "South", models.UnknownKey}, agg.Keys())
	assertBuckets(t, agg, map[string]string{
		"East":            "125",
		"West":            "250",
		"South":           "10.5",
		models.UnknownKey: "15",
	})
}

func TestGroupSum_Years(t *testing.T) {
	agg := GroupSum(testutil.Dataset(), models.DimensionOrderYear, models.MetricSales, nil)
	assertBuckets(t, agg, map[string]string{"2023": "175", "2024": "225.5"})
}

func TestScalarSum_Fixture(t *testing.T) {
	ds := testutil.Dataset()

	assert.True(t, ScalarSum(ds, models.MetricSales, nil).Equal(dec("400.5")))
	assert.True(t, ScalarSum(ds, models.MetricProfit, nil).Equal(dec("65.25")))
	assert.True(t, ScalarSum(ds, models.MetricQuantity, nil).Equal(dec("25")))
	assert.True(t, ScalarSum(ds, models.MetricSales, WhereEquals(models.DimensionCountry, "Canada")).Equal(dec("65")))
}

func TestScalarMean(t *testing.T) {
	ds := testutil.Dataset()

	mean, err := ScalarMean(ds, models.MetricSales, nil)
	require.NoError(t, err)
	assert.True(t, mean.Equal(dec("66.75")), "got %s", mean)

	_, err = ScalarMean(ds, models.MetricSales, WhereEquals(models.DimensionCountry, "Atlantis"))
	var empty *EmptyDatasetError
	require.ErrorAs(t, err, &empty)

	_, err = ScalarMean(models.NewDataset(nil), models.MetricSales, nil)
	require.ErrorAs(t, err, &empty)
}

func TestTopN(t *testing.T) {
	ds := testutil.Dataset()

	tests := []struct {
		name   string
		metric models.Metric
		n      int
		filter Filter
		want   []string
	}{
		{"ties keep first-seen order", models.MetricQuantity, 2, nil, []string{"Paper D", "Phone B"}},
		{"tie broken by order", models.MetricQuantity, 3, nil, []string{"Paper D", "Phone B", "Mouse E"}},
		{"n beyond cardinality", models.MetricQuantity, 10, nil, []string{"Paper D", "Phone B", "Mouse E", "Table C", "Chair A"}},
		{"filtered by country", models.MetricSales, 5, WhereEquals(models.DimensionCountry, "United States"), []string{"Phone B", "Chair A", "Table C"}},
		{"profit", models.MetricProfit, 1, nil, []string{"Phone B"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, err := TopN(ds, models.DimensionProduct, tt.metric, tt.n, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, agg.Keys())
		})
	}
}

func TestTopN_FewerDistinctThanN(t *testing.T) {
	ds := models.NewDataset([]models.Record{
		{ProductName: "a", Quantity: 1},
		{ProductName: "b", Quantity: 7},
		{ProductName: "c", Quantity: 3},
		{ProductName: "a", Quantity: 1},
	})

	agg, err := TopN(ds, models.DimensionProduct, models.MetricQuantity, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c", "a"}, agg.Keys())
}

func TestTopN_NoMatchingRows(t *testing.T) {
	_, err := TopN(testutil.Dataset(), models.DimensionProduct, models.MetricSales, 5,
		WhereEquals(models.DimensionCountry, "Atlantis"))

	var empty *EmptyDatasetError
	require.ErrorAs(t, err, &empty)
	assert.Contains(t, err.Error(), "Product Name")
}

func TestWhereIn(t *testing.T) {
	ds := testutil.Dataset()

	n := Count(ds, WhereIn(models.DimensionRegion, []string{"West", models.UnknownKey}))
	assert.Equal(t, 3, n)
	assert.Equal(t, 0, Count(ds, WhereIn(models.DimensionRegion, nil)))
	assert.Equal(t, 6, Count(ds, nil))
}

func TestMonthlySeries(t *testing.T) {
	ds := testutil.Dataset()

	s := MonthlySeries(ds, models.MetricSales, models.DimensionNone, nil)
	require.Len(t, s.Lines, 1)
	assert.Equal(t, "Sales", s.Lines[0].Key)

	want := map[int]string{1: "100", 2: "75", 3: "210.5", 7: "15"}
	for m := 1; m <= 12; m++ {
		expected := dec("0")
		if v, ok := want[m]; ok {
			expected = dec(v)
		}
		assert.True(t, s.Lines[0].Month(m).Equal(expected), "month %d: got %s", m, s.Lines[0].Month(m))
	}

	byCategory := MonthlySeries(ds, models.MetricProfit, models.DimensionCategory, nil)
	keys := make([]string, len(byCategory.Lines))
	for i, l := range byCategory.Lines {
		keys[i] = l.Key
	}
	assert.Equal(t, []string{"Furniture", "Technology", "Office Supplies"}, keys)
	assert.True(t, byCategory.Lines[1].Month(3).Equal(dec("40")))
}

func TestMonthlySeries_EmptyDataset(t *testing.T) {
	s := MonthlySeries(models.NewDataset(nil), models.MetricSales, models.DimensionNone, nil)

	require.Len(t, s.Lines, 1)
	for _, v := range s.Lines[0].Months {
		assert.True(t, v.IsZero())
	}
	assert.Empty(t, MonthlySeries(models.NewDataset(nil), models.MetricSales, models.DimensionRegion, nil).Lines)
}

func TestSortedByKey(t *testing.T) {
	agg := models.Aggregate{Buckets: []models.Bucket{{Key: "2024"}, {Key: "999"}, {Key: "2021"}}}
	assert.Equal(t, []string{"999", "2021", "2024"}, SortedByKey(agg).Keys())
	assert.Equal(t, []string{"2024", "999", "2021"}, agg.Keys())
}

func TestGroupSumMatchesScalarSum(t *testing.T) {
	ds := models.NewDataset(testutil.FakeRecords(42, 1000))

	for _, m := range models.Metrics() {
		total := ScalarSum(ds, m, nil)
		for _, dim := range models.Dimensions() {
			agg := GroupSum(ds, dim, m, nil)
			assert.True(t, agg.Total().Equal(total), "%s by %s: %s != %s", m, dim, agg.Total(), total)

			rows := 0
			for _, b := range agg.Buckets {
				rows += b.Rows
			}
			assert.Equal(t, ds.Len(), rows, "%s by %s", m, dim)
		}
	}
}

func TestTopNIsPrefixOfSortedGroupSum(t *testing.T) {
	ds := models.NewDataset(testutil.FakeRecords(8, 500))

	for _, dim := range []models.Dimension{models.DimensionRegion, models.DimensionCountry, models.DimensionSubCategory} {
		full := GroupSum(ds, dim, models.MetricProfit, nil).SortedDesc()
		for n := 1; n <= 10; n++ {
			top, err := TopN(ds, dim, models.MetricProfit, n, nil)
			require.NoError(t, err)
			require.Len(t, top.Buckets, min(n, full.Len()))
			for i := range top.Buckets {
				assert.Equal(t, full.Buckets[i].Key, top.Buckets[i].Key)
				if i > 0 {
					assert.True(t, top.Buckets[i-1].Value.GreaterThanOrEqual(top.Buckets[i].Value))
				}
			}
		}
	}
}

func TestMonthlySeriesAlwaysHasTwelveMonths(t *testing.T) {
	only := models.NewDataset([]models.Record{
		{OrderDate: time.Date(2023, time.May, 2, 0, 0, 0, 0, time.UTC), Sales: dec("9"), Category: "A"},
	})
	fake := models.NewDataset(testutil.FakeRecords(1, 50))

	for _, ds := range []*models.Dataset{only, fake} {
		s := MonthlySeries(ds, models.MetricSales, models.DimensionCategory, nil)
		for _, l := range s.Lines {
			assert.Len(t, l.Months, 12)
		}
		var sum decimal.Decimal
		for _, v := range s.Totals() {
			sum = sum.Add(v)
		}
		assert.True(t, sum.Equal(ScalarSum(ds, models.MetricSales, nil)))
	}
}
