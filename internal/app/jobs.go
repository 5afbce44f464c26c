package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	jobCompleteClasses   = "complete_classes"
	jobSettleWithdrawals = "settle_withdrawals"
	jobPurgeDrafts       = "purge_drafts"
	jobCleanupSessions   = "cleanup_sessions"
	jobSweepFiles        = "sweep_statement_files"

	jobTimeout = time.Minute
)

// cronLogger routes robfig/cron logs through zap.
type cronLogger struct {
	sugar *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, append(keysAndValues, "error", err)...)
}

// periodicJob reports how many records a run touched.
type periodicJob func(ctx context.Context) (int64, error)

type scheduledJob struct {
	name string
	spec string
	run  periodicJob
}

func (a *App) buildScheduler() error {
	if !a.cfg.Jobs.Enabled {
		a.logger.Info("background jobs disabled")
		return nil
	}

	logger := cronLogger{sugar: a.logger.Named("cron").Sugar()}
	a.cron = cron.New(
		cron.WithLocation(a.loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	svc := a.services
	entries := []scheduledJob{
		{jobCompleteClasses, a.cfg.Jobs.CompleteClassesSpec, func(ctx context.Context) (int64, error) {
			n, err := svc.Schedule.CompleteFinished(ctx)
			return int64(n), err
		}},
		{jobSettleWithdrawals, a.cfg.Jobs.SettleWithdrawalSpec, svc.Wallets.SettlePending},
		{jobCleanupSessions, a.cfg.Jobs.CleanupSessionsSpec, svc.Auth.CleanupSessions},
		{jobSweepFiles, a.cfg.Jobs.SweepFilesSpec, func(ctx context.Context) (int64, error) {
			n, err := svc.Statements.Sweep(ctx)
			return int64(n), err
		}},
	}
	if !a.stores.DraftsExpire {
		entries = append(entries, scheduledJob{jobPurgeDrafts, a.cfg.Jobs.PurgeDraftsSpec, func(ctx context.Context) (int64, error) {
			n, err := svc.Booking.PurgeExpiredDrafts(ctx)
			return int64(n), err
		}})
	}

	for _, entry := range entries {
		if entry.spec == "" {
			continue
		}
		if _, err := a.cron.AddFunc(entry.spec, a.runJob(entry.name, entry.run)); err != nil {
			return fmt.Errorf("schedule %s (%q): %w", entry.name, entry.spec, err)
		}
		a.logger.Info("job scheduled", zap.String("job", entry.name), zap.String("spec", entry.spec))
	}
	return nil
}

// runJob wraps a periodic job with a timeout, metrics and logging.
func (a *App) runJob(name string, run periodicJob) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		start := time.Now()
		n, err := run(ctx)
		a.services.Metrics.RecordJobRun(name, err)
		if err != nil {
			a.logger.Error("job failed", zap.String("job", name), zap.Error(err))
			return
		}
		a.logger.Info("job finished",
			zap.String("job", name),
			zap.Int64("affected", n),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
