package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"TrendSignal/internal/advisor"
	"TrendSignal/internal/notifier"
	"TrendSignal/internal/recorder"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const sendRetries = 3

// Scheduler runs the cron watchlist and answers chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Advisor  *advisor.Advisor
	Notifier notifier.Notifier // nil disables pushes
	Recorder recorder.Recorder
	Logger   *zap.Logger
	Ctx      context.Context
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, adv *advisor.Advisor, n notifier.Notifier, rec recorder.Recorder, logger *zap.Logger) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Advisor:  adv,
		Notifier: n,
		Recorder: rec,
		Logger:   logger,
		Ctx:      ctx,
	}
}

// RegisterWatch schedules the watchlist evaluation.
func (s *Scheduler) RegisterWatch(watchCron string) error {
	if _, err := s.Cron.AddFunc(watchCron, s.watchTask); err != nil {
		return fmt.Errorf("register watch task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	s.Logger.Info("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.Logger.Info("scheduler stopped")
}

// RunWatchNow executes the watchlist task immediately (RUN_ON_START).
func (s *Scheduler) RunWatchNow() {
	s.watchTask()
}

func (s *Scheduler) watchTask() {
	cfg := s.Advisor.Config()
	s.Logger.Info("running watchlist", zap.Strings("symbols", cfg.Schedule.Watchlist))
	for _, symbol := range cfg.Schedule.Watchlist {
		if s.Ctx.Err() != nil {
			return
		}
		s.trySend(s.evaluate(s.Ctx, advisor.Request{Symbol: symbol}))
	}
}

// evaluate runs one analysis, records the outcome and returns the message.
func (s *Scheduler) evaluate(ctx context.Context, req advisor.Request) string {
	report, err := s.Advisor.Analyze(ctx, req)
	if err != nil {
		kind := advisor.Classify(err)
		if rerr := s.Recorder.RecordFailure(&recorder.FailureEvent{
			Symbol:  req.Symbol,
			Range:   req.Range,
			Kind:    string(kind),
			Message: err.Error(),
		}); rerr != nil {
			s.Logger.Error("record failure", zap.Error(rerr))
		}
		return notifier.FormatFailure(req.Symbol, kind.Message())
	}
	if err := s.Recorder.RecordSignal(report); err != nil {
		s.Logger.Error("record signal", zap.Error(err))
	}
	return notifier.FormatSignalReport(report)
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	name := strings.ToLower(fields[0])
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	cfg := s.Advisor.Config()

	switch name {
	case "/signal":
		req, err := parseSignalArgs(fields[1:])
		if err != nil {
			return notifier.FormatFailure("", err.Error())
		}
		return s.evaluate(ctx, req)
	case "/instruments":
		return notifier.FormatInstruments(cfg.Instruments)
	case "/ranges":
		return notifier.FormatRanges(cfg.Ranges, cfg.Analysis.DefaultRange)
	default:
		return notifier.FormatHelp()
	}
}

// parseSignalArgs reads SYMBOL [RANGE] [AMOUNT]. A lone numeric second
// argument is taken as the amount.
func parseSignalArgs(args []string) (advisor.Request, error) {
	if len(args) == 0 {
		return advisor.Request{}, fmt.Errorf("usage: /signal SYMBOL [RANGE] [AMOUNT]")
	}
	if len(args) > 3 {
		return advisor.Request{}, fmt.Errorf("too many arguments; usage: /signal SYMBOL [RANGE] [AMOUNT]")
	}
	req := advisor.Request{Symbol: strings.ToUpper(args[0])}
	rest := args[1:]
	if len(rest) == 1 {
		if amount, err := strconv.ParseFloat(rest[0], 64); err == nil {
			req.Amount = amount
			return req, nil
		}
	}
	if len(rest) >= 1 {
		req.Range = rest[0]
	}
	if len(rest) == 2 {
		amount, err := strconv.ParseFloat(rest[1], 64)
		if err != nil {
			return advisor.Request{}, fmt.Errorf("amount %q is not a number", rest[1])
		}
		req.Amount = amount
	}
	return req, nil
}

func (s *Scheduler) trySend(text string) {
	if s.Notifier == nil || text == "" {
		return
	}
	if err := s.Notifier.SendWithRetry(s.Ctx, text, sendRetries); err != nil {
		s.Logger.Error("send notification", zap.Error(err))
	}
}
