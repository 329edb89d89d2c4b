package metrics

import "github.com/prometheus/client_golang/prometheus"

// CostMetrics tracks recipe cost previews.
type CostMetrics struct {
	previews   prometheus.Counter
	lines      prometheus.Histogram
	unresolved prometheus.Counter
}

func NewCostMetrics(reg prometheus.Registerer) *CostMetrics {
	if reg == nil {
		return &CostMetrics{}
	}
	previews := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recipe_cost_previews_total",
		Help: "Cost previews computed.",
	})
	lines := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "recipe_cost_preview_lines",
		Help:    "Ingredient lines per cost preview.",
		Buckets: []float64{1, 2, 5, 10, 20, 50},
	})
	unresolved := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "recipe_cost_unresolved_lines_total",
		Help: "Preview lines whose product had no offer and cost zero.",
	})
	reg.MustRegister(previews, lines, unresolved)
	return &CostMetrics{previews: previews, lines: lines, unresolved: unresolved}
}

// ObserveCostPreview records one preview.
func (c *CostMetrics) ObserveCostPreview(lines, unresolved int) {
	if c == nil || c.previews == nil {
		return
	}
	c.previews.Inc()
	c.lines.Observe(float64(lines))
	c.unresolved.Add(float64(unresolved))
}
