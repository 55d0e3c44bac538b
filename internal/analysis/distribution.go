package analysis

import (
	"math"
	"sort"

	"github.com/KaramelBytes/sheetdash/internal/table"
	"github.com/montanaflynn/stats"
)

// whiskerIQR is the Tukey fence multiplier used for box plots.
const whiskerIQR = 1.5

// CategoryCount is the number of rows holding one display value.
type CategoryCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Frequencies counts rows per distinct non-missing value of a column in
// order of first appearance.
func Frequencies(t *table.Table, column string) ([]CategoryCount, error) {
	vals, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	pos := map[string]int{}
	var out []CategoryCount
	for _, v := range vals {
		if v.IsMissing() {
			continue
		}
		if i, ok := pos[v.Raw]; ok {
			out[i].Count++
			continue
		}
		pos[v.Raw] = len(out)
		out = append(out, CategoryCount{Value: v.Raw, Count: 1})
	}
	return out, nil
}

// TopValues returns the n most frequent values, ties broken by value.
func TopValues(freq []CategoryCount, n int) []CategoryCount {
	tops := append([]CategoryCount(nil), freq...)
	sort.SliceStable(tops, func(i, j int) bool {
		if tops[i].Count == tops[j].Count {
			return tops[i].Value < tops[j].Value
		}
		return tops[i].Count > tops[j].Count
	})
	if n > 0 && len(tops) > n {
		tops = tops[:n]
	}
	return tops
}

// BoxSummary describes the distribution of a numeric column the way a box
// plot draws it.
type BoxSummary struct {
	Column      string    `json:"column"`
	Count       int       `json:"count"`
	Min         float64   `json:"min"`
	Q1          float64   `json:"q1"`
	Median      float64   `json:"median"`
	Q3          float64   `json:"q3"`
	Max         float64   `json:"max"`
	Mean        float64   `json:"mean"`
	WhiskerLow  float64   `json:"whisker_low"`
	WhiskerHigh float64   `json:"whisker_high"`
	Outliers    []float64 `json:"outliers,omitempty"`
}

// Numbers returns the numeric cells of a column, skipping everything else.
func Numbers(t *table.Table, column string) ([]float64, error) {
	vals, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	var out []float64
	for _, v := range vals {
		if v.Kind == table.Number {
			out = append(out, v.Num)
		}
	}
	return out, nil
}

// Box computes quartiles with linear interpolation, whiskers at the most
// extreme values inside 1.5 IQR of the box, and the points beyond them.
// ok is false when the column holds no numbers.
func Box(t *table.Table, column string) (BoxSummary, bool, error) {
	nums, err := Numbers(t, column)
	if err != nil {
		return BoxSummary{}, false, err
	}
	if len(nums) == 0 {
		return BoxSummary{Column: column}, false, nil
	}
	sorted := append([]float64(nil), nums...)
	sort.Float64s(sorted)

	b := BoxSummary{Column: column, Count: len(sorted)}
	b.Min, _ = stats.Min(sorted)
	b.Max, _ = stats.Max(sorted)
	b.Mean, _ = stats.Mean(sorted)
	b.Q1 = linearQuantile(sorted, 0.25)
	b.Median = linearQuantile(sorted, 0.5)
	b.Q3 = linearQuantile(sorted, 0.75)

	iqr := b.Q3 - b.Q1
	lo, hi := b.Q1-whiskerIQR*iqr, b.Q3+whiskerIQR*iqr
	b.WhiskerLow, b.WhiskerHigh = b.Max, b.Min
	for _, v := range sorted {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.WhiskerLow = math.Min(b.WhiskerLow, v)
		b.WhiskerHigh = math.Max(b.WhiskerHigh, v)
	}
	return b, true, nil
}

// linearQuantile interpolates between closest ranks, the default method of
// pandas and numpy. stats.Percentile and stats.Quartile use other rules and
// would shift the box edges.
func linearQuantile(sorted []float64, q float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[n-1]
	}
	whole, frac := math.Modf(q * float64(n-1))
	i := int(whole)
	if frac == 0 {
		return sorted[i]
	}
	return sorted[i] + frac*(sorted[i+1]-sorted[i])
}
