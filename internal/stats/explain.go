package stats

import (
	"strconv"
	"strings"

	"github.com/anprowh/LanguageCorrector/internal/corrector"
	"github.com/anprowh/LanguageCorrector/internal/model"
)

// TokenLines renders a per-token explanation table.
func TokenLines(tokens []corrector.Token) []string {
	headers := []string{"Token", "Letters", "From", "To", "Output"}
	rows := make([][]string, 0, len(tokens))
	for _, t := range tokens {
		from, to := string(t.Source), string(t.Target)
		if t.Err != nil {
			from, to = "?", "-"
		}
		letters := t.Normalized
		if letters == "" {
			letters = "-"
		}
		output := t.Output
		if !t.Changed() {
			output += " (kept)"
		}
		rows = append(rows, []string{t.Input, letters, from, to, output})
	}
	return formatTable(headers, rows, nil)
}

// TokenRecordLines renders stored tokens in position order.
func TokenRecordLines(records []model.TokenRecord) []string {
	if len(records) == 0 {
		return nil
	}
	headers := []string{"#", "Token", "From", "To", "Output"}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{strconv.Itoa(r.Position + 1), r.Input, r.Source, r.Target, r.Output})
	}
	return formatTable(headers, rows, map[int]bool{0: true})
}

// HistoryLine renders one stored correction on a single line.
func HistoryLine(input, output string) string {
	if input == output {
		return input
	}
	return strings.Join([]string{input, "→", output}, " ")
}
