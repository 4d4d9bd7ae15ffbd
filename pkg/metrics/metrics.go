package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	QueryLabel     = "query"
	Outcome        = "outcome"
	ColorsLabel    = "colors"
	DimensionLabel = "dimension"

	ColorsDimension  = "colors"
	NumbersDimension = "numbers"
)

// To add new metrics:
// 1. Register new metrics in RegisterSchur() below.
// 2. Add an Emit function and call it where the value changes.
var (
	queryDurationSummary = prometheus.NewSummaryVec(
		prometheus.SummaryOpts{
			Name:       "schur_query_duration_seconds",
			Help:       "The duration of a coloring query",
			Objectives: map[float64]float64{0.95: 0.05, 0.9: 0.01, 0.99: 0.001},
		},
		[]string{QueryLabel, Outcome},
	)

	schurNumber = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "schur_number",
			Help: "First count of numbers with no valid coloring, by number of colors",
		},
		[]string{ColorsLabel},
	)

	searchCursor = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "schur_search_cursor",
			Help: "Position of the search driver. The colors dimension is the color count being searched, the numbers dimension the size of the last query.",
		},
		[]string{DimensionLabel},
	)
)

func RegisterSchur() {
	prometheus.MustRegister(queryDurationSummary)
	prometheus.MustRegister(schurNumber)
	prometheus.MustRegister(searchCursor)
}

func EmitQuery(query, outcome string, duration time.Duration) {
	queryDurationSummary.WithLabelValues(query, outcome).Observe(duration.Seconds())
}

func EmitSchurNumber(colors, numbers int) {
	schurNumber.WithLabelValues(strconv.Itoa(colors)).Set(float64(numbers))
}

func EmitCursor(colors, numbers int) {
	searchCursor.WithLabelValues(ColorsDimension).Set(float64(colors))
	searchCursor.WithLabelValues(NumbersDimension).Set(float64(numbers))
}
