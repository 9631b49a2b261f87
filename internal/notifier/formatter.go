package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"MomentumScreener/internal/model"
)

var hundred = decimal.NewFromInt(100)

// pct renders a fractional return as a signed percentage with two decimals.
func pct(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	d := decimal.NewFromFloat(v).Mul(hundred).Round(2)
	s := d.StringFixed(2) + "%"
	if d.IsPositive() {
		s = "+" + s
	}
	return s
}

// FormatRanking formats the top n entries of a ranking into a Telegram message.
// Tickers absent from previous are marked as new; previous may be nil.
func FormatRanking(run *model.RunSummary, ranking, previous []model.RankedEntry, n int) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📈 <b>Momentum ranking</b> | %s\n", run.FinishedAt.Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("tickers: %d | ranked: %d | failed batches: %d/%d\n\n",
		run.Tickers, run.Ranked, run.BatchesFailed, run.BatchesTotal))

	if len(ranking) == 0 {
		b.WriteString("no ranking produced\n")
		return b.String()
	}

	seen := make(map[string]bool, len(previous))
	for _, e := range topN(previous, n) {
		seen[e.Ticker] = true
	}

	for i, e := range topN(ranking, n) {
		writeEntry(&b, i+1, e, previous != nil && !seen[e.Ticker])
	}
	return b.String()
}

// FormatTop formats the top n entries of a stored ranking.
func FormatTop(ranking []model.RankedEntry, n int) string {
	var b strings.Builder
	b.WriteString("📈 <b>Latest momentum ranking</b>\n\n")
	for i, e := range topN(ranking, n) {
		writeEntry(&b, i+1, e, false)
	}
	return b.String()
}

func writeEntry(b *strings.Builder, pos int, e model.RankedEntry, isNew bool) {
	marker := ""
	if isNew {
		marker = " 🆕"
	}
	b.WriteString(fmt.Sprintf("%2d. <b>%s</b> %s (avg %s, ↑%d)%s\n",
		pos, html.EscapeString(e.Ticker), pct(e.TotalReturn), pct(e.AverageReturn), e.Increases, marker))
}

// FormatNoData formats the warning sent when a run collected nothing.
func FormatNoData(run *model.RunSummary) string {
	return fmt.Sprintf("⚠️ <b>No data was collected</b> | %s\n\n%d of %d batches failed. Check the ticker list or connectivity.",
		time.Now().Format("2006-01-02 15:04"), run.BatchesFailed, run.BatchesTotal)
}

func topN(ranking []model.RankedEntry, n int) []model.RankedEntry {
	if n > 0 && len(ranking) > n {
		return ranking[:n]
	}
	return ranking
}
