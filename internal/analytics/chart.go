package analytics

import "strconv"

var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// ChartSeries holds parallel label and value arrays in major units.
type ChartSeries struct {
	Labels  []string  `json:"labels"`
	Income  []float64 `json:"income"`
	Expense []float64 `json:"expense"`
}

// BuildChart maps monthly buckets onto localized labels and major-unit values.
func BuildChart(buckets []MonthBucket) ChartSeries {
	cs := ChartSeries{
		Labels:  make([]string, 0, len(buckets)),
		Income:  make([]float64, 0, len(buckets)),
		Expense: make([]float64, 0, len(buckets)),
	}
	for _, b := range buckets {
		cs.Labels = append(cs.Labels, monthLabel(b.Key))
		cs.Income = append(cs.Income, float64(b.Income)/100)
		cs.Expense = append(cs.Expense, float64(b.Expense)/100)
	}
	return cs
}

// monthLabel picks the abbreviation for a YYYY-MM key, falling back to the key itself.
func monthLabel(key string) string {
	if len(key) != 7 {
		return key
	}
	m, err := strconv.Atoi(key[5:])
	if err != nil || m < 1 || m > 12 {
		return key
	}
	return monthLabels[m-1]
}
