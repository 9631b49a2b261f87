package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"MomentumScreener/internal/model"
	"MomentumScreener/internal/notifier"
	"MomentumScreener/internal/pipeline"
	"MomentumScreener/internal/recorder"
	"MomentumScreener/internal/tickers"
)

// Notifier delivers run reports. nil disables notifications.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs the pipeline once or on a cron schedule, recording and reporting each run.
type Scheduler struct {
	Cron        *cron.Cron
	Pipeline    *pipeline.Pipeline
	Recorder    recorder.Recorder
	Notifier    Notifier
	TickersFile string
	TopN        int
	Logger      *zap.Logger
	Ctx         context.Context

	mu sync.Mutex // one run at a time across cron and commands
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, p *pipeline.Pipeline, rec recorder.Recorder, n Notifier, tickersFile string, topN int, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		Cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		Pipeline:    p,
		Recorder:    rec,
		Notifier:    n,
		TickersFile: tickersFile,
		TopN:        topN,
		Logger:      logger,
		Ctx:         ctx,
	}
}

// Register adds the recurring run.
func (s *Scheduler) Register(spec string) error {
	if _, err := s.Cron.AddFunc(spec, s.scheduledRun); err != nil {
		return fmt.Errorf("register run task %q: %w", spec, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

func (s *Scheduler) scheduledRun() {
	if _, err := s.RunNow(s.Ctx, model.TriggerSchedule); err != nil && !errors.Is(err, pipeline.ErrNoData) {
		s.Logger.Error("scheduled run failed", zap.Error(err))
	}
}

// RunNow loads the ticker list and executes one pipeline pass, then records and reports it.
// Recording and notification failures are logged, never returned.
func (s *Scheduler) RunNow(ctx context.Context, trigger model.TriggerType) (*pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	symbols, err := tickers.LoadFile(s.TickersFile)
	if err != nil {
		return nil, err
	}
	s.Logger.Info("loaded tickers", zap.Int("count", len(symbols)), zap.Strings("sample", sample(symbols, 10)))

	_, previous, err := s.Recorder.LatestRanking()
	if err != nil {
		s.Logger.Warn("read previous ranking", zap.Error(err))
	}

	res, runErr := s.Pipeline.Run(ctx, symbols, trigger)
	if res == nil {
		return nil, runErr
	}

	if err := s.Recorder.RecordRun(res.Summary); err != nil {
		s.Logger.Error("record run", zap.Error(err))
	}
	if runErr == nil {
		if err := s.Recorder.RecordRanking(res.Summary.ID, res.Ranking); err != nil {
			s.Logger.Error("record ranking", zap.Error(err))
		}
	}

	switch {
	case errors.Is(runErr, pipeline.ErrNoData):
		s.Logger.Warn("no data was collected, check the ticker list or internet connection",
			zap.Int("failed_batches", res.Summary.BatchesFailed))
		s.notify(ctx, notifier.FormatNoData(res.Summary))
	case runErr == nil:
		s.notify(ctx, notifier.FormatRanking(res.Summary, res.Ranking, previous, s.TopN))
	}
	return res, runErr
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	switch command {
	case "/run":
		go func() {
			if _, err := s.RunNow(ctx, model.TriggerManual); err != nil && !errors.Is(err, pipeline.ErrNoData) {
				s.Logger.Error("manual run failed", zap.Error(err))
			}
		}()
		return "run started"
	case "/top":
		_, ranking, err := s.Recorder.LatestRanking()
		if err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		if len(ranking) == 0 {
			return "no recorded ranking yet"
		}
		return notifier.FormatTop(ranking, s.TopN)
	default:
		return "commands:\n• /run\n• /top"
	}
}

func (s *Scheduler) notify(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}

func sample(symbols []string, n int) []string {
	if len(symbols) > n {
		return symbols[:n]
	}
	return symbols
}
