package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Simplici0/spicebooks/internal/archive"
	"github.com/Simplici0/spicebooks/internal/books"
	"github.com/Simplici0/spicebooks/internal/export"
	"github.com/Simplici0/spicebooks/internal/ledger"
)

// RegisterSource provides monthly register views.
type RegisterSource interface {
	MonthlyRegister(ctx context.Context, register ledger.Register, monthRef time.Time) (books.Result[books.RegisterMonth], error)
}

// Archiver stores closed register months.
type Archiver interface {
	SaveRegisterSnapshot(ctx context.Context, snap archive.Snapshot) error
}

// Uploader stores the CSV export of a register month.
type Uploader interface {
	UploadRegisterCSV(ctx context.Context, sheet export.RegisterSheet) (string, error)
}

// Options configures a Scheduler. Archive and Uploader are optional.
type Options struct {
	Spec     string
	Location *time.Location
	Source   RegisterSource
	Archive  Archiver
	Uploader Uploader
	Logger   *zap.Logger
	Now      func() time.Time
}

// Scheduler runs the monthly register snapshot job.
type Scheduler struct {
	cron     *cron.Cron
	spec     string
	loc      *time.Location
	source   RegisterSource
	archive  Archiver
	uploader Uploader
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a scheduler instance. Nothing runs until Start.
func New(opts Options) *Scheduler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		spec:     opts.Spec,
		loc:      loc,
		source:   opts.Source,
		archive:  opts.Archive,
		uploader: opts.Uploader,
		logger:   logger,
		now:      now,
	}
}

// Start registers the snapshot job and starts the cron loop.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.runJob); err != nil {
		return fmt.Errorf("schedule monthly snapshot %q: %w", s.spec, err)
	}
	s.logger.Info("starting scheduler", zap.String("monthly_snapshot", s.spec), zap.String("timezone", s.loc.String()))
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runJob() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.RunMonthlySnapshot(ctx); err != nil {
		s.logger.Error("monthly snapshot finished with errors", zap.Error(err))
		return
	}
	s.logger.Info("monthly snapshot completed")
}

// RunMonthlySnapshot exports and archives the previous month of every register.
// A failing register does not stop the others; all failures are returned joined.
func (s *Scheduler) RunMonthlySnapshot(ctx context.Context) error {
	month := ledger.PreviousMonth(s.now().In(s.loc))

	var errs []error
	for _, register := range ledger.Registers {
		if err := s.snapshotRegister(ctx, register, month); err != nil {
			s.logger.Error("register snapshot failed", zap.String("register", string(register)), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Scheduler) snapshotRegister(ctx context.Context, register ledger.Register, month time.Time) error {
	res, err := s.source.MonthlyRegister(ctx, register, month)
	if err != nil {
		return fmt.Errorf("load %s register: %w", register, err)
	}
	if res.Stale {
		return fmt.Errorf("load %s register: store unavailable, refusing to archive a cached copy", register)
	}
	view := res.Value
	sheet := export.RegisterSheet{Register: view.Register, Month: view.Month, Entries: view.Entries, Summary: view.Summary}

	var key string
	if s.uploader != nil {
		if key, err = s.uploader.UploadRegisterCSV(ctx, sheet); err != nil {
			return err
		}
		s.logger.Info("register exported", zap.String("register", string(register)), zap.String("key", key))
	}

	if s.archive != nil {
		snap := archive.NewSnapshot(register, view.Month, view.Entries, view.Summary, s.now())
		snap.ExportKey = key
		if err := s.archive.SaveRegisterSnapshot(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}
