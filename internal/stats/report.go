// Package stats contains correction statistics and table rendering.
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/anprowh/LanguageCorrector/internal/model"
	"github.com/anprowh/LanguageCorrector/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Aggregates []model.LayoutAggregate
	Tokens     int
	Changed    int
}

// BuildReport loads per-layout token counts since the given time.
func BuildReport(ctx context.Context, st *store.Store, since time.Time) (Report, error) {
	aggs, err := st.LayoutAggregates(ctx, since)
	if err != nil {
		return Report{}, fmt.Errorf("failed to load layout stats: %w", err)
	}
	r := Report{Aggregates: aggs}
	for _, a := range aggs {
		r.Tokens += a.Tokens
		r.Changed += a.Changed
	}
	return r, nil
}

// ChangedRatio returns the share of tokens that were converted.
func (r Report) ChangedRatio() float64 {
	if r.Tokens == 0 {
		return 0
	}
	return float64(r.Changed) / float64(r.Tokens)
}

// Lines renders the report as an aligned table with a total row.
func (r Report) Lines() []string {
	if len(r.Aggregates) == 0 {
		return []string{"No corrections recorded yet."}
	}
	headers := []string{"From", "To", "Tokens", "Converted", "Share"}
	rows := make([][]string, 0, len(r.Aggregates)+1)
	for _, a := range r.Aggregates {
		rows = append(rows, []string{a.Source, a.Target, fmt.Sprint(a.Tokens), fmt.Sprint(a.Changed), percent(a.Changed, a.Tokens)})
	}
	rows = append(rows, []string{"total", "", fmt.Sprint(r.Tokens), fmt.Sprint(r.Changed), percent(r.Changed, r.Tokens)})
	return formatTable(headers, rows, map[int]bool{2: true, 3: true, 4: true})
}

func percent(part, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(part)/float64(total))
}
