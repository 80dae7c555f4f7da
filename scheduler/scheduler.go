package scheduler

import (
	"context"
	"fmt"
	"time"

	"agrimarket/logger"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled unit of work. It gets a context bounded by the job
// timeout and cancelled on Stop.
type Job func(ctx context.Context) error

// Scheduler runs jobs on standard five-field cron specs. A run still in
// progress makes the next tick a no-op.
type Scheduler struct {
	cron   *cron.Cron
	log    *logger.Entry
	ctx    context.Context
	cancel context.CancelFunc
}

func New(log *logger.Log) *Scheduler {
	entry := log.WithComponent("scheduler")
	cl := cronLogger{entry}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		log:    entry,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Scheduler) Add(name, spec string, timeout time.Duration, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.run(name, timeout, job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", name, err)
	}
	s.log.WithFields(logger.Fields{"job": name, "spec": spec}).Info("⏰ job scheduled")
	return nil
}

func (s *Scheduler) run(name string, timeout time.Duration, job Job) {
	ctx := s.ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	log := s.log.WithField("job", name)
	if err := job(ctx); err != nil {
		log.WithError(err).Error("❌ scheduled job failed")
		return
	}
	log.WithField("duration_ms", time.Since(start).Milliseconds()).Info("✅ scheduled job finished")
}

// Next reports when the next job fires, or the zero time with no jobs.
func (s *Scheduler) Next() time.Time {
	var next time.Time
	for _, e := range s.cron.Entries() {
		if next.IsZero() || (!e.Next.IsZero() && e.Next.Before(next)) {
			next = e.Next
		}
	}
	return next
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop cancels running jobs and waits for them to return or ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) {
	s.cancel()
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("⚠️ scheduler stop timed out")
	}
}

// cronLogger routes cron's own messages into logrus.
type cronLogger struct {
	entry *logger.Entry
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.entry.WithFields(fields(keysAndValues)).Debug(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.entry.WithError(err).WithFields(fields(keysAndValues)).Error(msg)
}

func fields(keysAndValues []interface{}) logger.Fields {
	f := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		f[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return f
}
