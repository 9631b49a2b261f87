package notifier

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MomentumScreener/internal/model"
)

func TestPct(t *testing.T) {
	assert.Equal(t, "+16.42%", pct(0.164224))
	assert.Equal(t, "-2.00%", pct(-0.02))
	assert.Equal(t, "0.00%", pct(0))
	assert.Equal(t, "n/a", pct(math.Inf(1)))
	assert.Equal(t, "n/a", pct(math.NaN()))
}

func TestFormatTop_NonFiniteAndEscaped(t *testing.T) {
	ranking := []model.RankedEntry{{Ticker: "A&B<1>", TotalReturn: math.Inf(1), AverageReturn: math.NaN()}}

	msg := FormatTop(ranking, 5)
	assert.Contains(t, msg, " 1. <b>A&amp;B&lt;1&gt;</b> n/a (avg n/a, ↑0)")
}

func TestFormatRanking(t *testing.T) {
	run := &model.RunSummary{
		FinishedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		Tickers:    3, Ranked: 3, BatchesTotal: 1,
	}
	ranking := []model.RankedEntry{
		{Ticker: "A", TotalReturn: 0.164224, AverageReturn: 0.0533, Increases: 0},
		{Ticker: "B", TotalReturn: 0.030301, AverageReturn: 0.01, Increases: 0},
		{Ticker: "C", TotalReturn: -0.1, AverageReturn: -0.03, Increases: 1},
	}
	previous := []model.RankedEntry{{Ticker: "B"}, {Ticker: "Z"}}

	msg := FormatRanking(run, ranking, previous, 2)
	assert.Contains(t, msg, "2025-06-01")
	assert.Contains(t, msg, " 1. <b>A</b> +16.42% (avg +5.33%, ↑0) 🆕")
	assert.Contains(t, msg, " 2. <b>B</b> +3.03% (avg +1.00%, ↑0)\n")
	assert.NotContains(t, msg, "<b>C</b>", "limited to top n")

	noHistory := FormatRanking(run, ranking, nil, 10)
	assert.NotContains(t, noHistory, "🆕")
	assert.Contains(t, noHistory, "<b>C</b> -10.00%")
}

func TestSendWithRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/bottoken/sendMessage"))
		var payload map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "42", payload["chat_id"])
		assert.Equal(t, "HTML", payload["parse_mode"])

		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "", zap.NewNop())
	tn.BaseURL = srv.URL

	require.NoError(t, tn.SendWithRetry(context.Background(), "hello", 1))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSendWithRetry_Exhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("token", "42", "", zap.NewNop())
	tn.BaseURL = srv.URL

	err := tn.SendWithRetry(context.Background(), "hello", 0)
	assert.ErrorContains(t, err, "status 401")
}
