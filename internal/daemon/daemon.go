package daemon

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/eventlife/eventlife/internal/bridge"
	"github.com/eventlife/eventlife/internal/config"
	"github.com/eventlife/eventlife/internal/engine"
	"github.com/eventlife/eventlife/internal/logging"
	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/notify"
	"github.com/eventlife/eventlife/internal/schedule"
	"github.com/eventlife/eventlife/internal/storage"
)

// Daemon runs the reminder engine as a long-lived background process. It
// arms reminders for every stored event, re-arms them on a cron schedule so
// each new day gets fresh triggers, delivers fired reminders to configured
// webhooks, and serves engine state to other processes over the bridge.
type Daemon struct {
	cfg        *config.Config
	pidFile    *PIDFile
	db         *storage.DB
	eventRepo  *storage.EventRepo
	eng        *engine.Engine
	dispatcher *notify.Dispatcher
	cron       *cron.Cron
	bridge     *bridge.Server
	startedAt  time.Time
}

// NewDaemon creates a daemon manager for the given configuration.
func NewDaemon(cfg *config.Config) *Daemon {
	return &Daemon{
		cfg:     cfg,
		pidFile: NewPIDFile(),
	}
}

// IsRunning returns true if a daemon process is already running.
func (d *Daemon) IsRunning() bool {
	return d.pidFile.IsRunning()
}

// RunningPID returns the PID of the running daemon, or 0.
func (d *Daemon) RunningPID() int {
	return d.pidFile.GetRunningPID()
}

// Run starts the daemon in the foreground and blocks until a shutdown
// signal arrives or ctx is cancelled.
func (d *Daemon) Run(ctx context.Context) error {
	if d.IsRunning() {
		return ErrAlreadyRunning
	}

	if err := d.pidFile.Write(); err != nil {
		return err
	}
	defer d.pidFile.Remove()

	loc, err := d.cfg.Location()
	if err != nil {
		return err
	}

	d.db, err = storage.Open(storage.Options{
		Path:     d.cfg.Storage.Path,
		InMemory: d.cfg.Storage.InMemory,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer d.db.Close()
	d.eventRepo = storage.NewEventRepo(d.db)

	d.dispatcher = notify.NewDispatcher(d.cfg.Webhooks)

	timer := schedule.NewTimerCapability(d.onFired)
	d.eng = engine.New(timer, engine.Options{
		Location:    loc,
		LeadMinutes: d.cfg.LeadMinutes,
	})
	defer d.eng.Close()

	d.eng.CheckPermission(ctx)

	if err := d.rearm(ctx); err != nil {
		logging.Warn("initial arm failed", logging.KeyError, err)
	}

	d.cron = cron.New(cron.WithSeconds())
	if _, err := d.cron.AddFunc(d.cfg.Daemon.RefreshCron, func() {
		if err := d.rearm(context.Background()); err != nil {
			logging.Warn("scheduled re-arm failed", logging.KeyError, err)
		}
	}); err != nil {
		return fmt.Errorf("invalid refresh cron %q: %w", d.cfg.Daemon.RefreshCron, err)
	}
	d.cron.Start()
	defer func() {
		stopCtx := d.cron.Stop()
		<-stopCtx.Done()
	}()

	d.bridge = bridge.NewServer(d.eng, d.cfg.Daemon.Listen, d.rearm)
	bridgeErr := make(chan error, 1)
	go func() {
		bridgeErr <- d.bridge.Start()
	}()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		d.bridge.Shutdown(shutCtx)
	}()

	d.startedAt = time.Now()
	logging.Info("daemon started",
		"pid", os.Getpid(),
		logging.KeyConn, d.cfg.Daemon.Listen,
		logging.KeyCount, d.eng.ScheduledCount())

	sigHandler := NewSignalHandler()
	sigHandler.Setup()
	defer sigHandler.Cleanup()

	sigCh := make(chan os.Signal, 1)
	go func() {
		sigCh <- sigHandler.Wait(ctx)
	}()

	select {
	case err := <-bridgeErr:
		if err != nil {
			return fmt.Errorf("bridge server: %w", err)
		}
	case sig := <-sigCh:
		if sig != nil {
			logging.Info("received signal", "signal", sig.String())
		}
	}

	logging.Info("daemon stopping", "uptime", time.Since(d.startedAt).Round(time.Second).String())
	return nil
}

// rearm replaces every scheduled reminder with a fresh batch built from the
// stored events.
func (d *Daemon) rearm(ctx context.Context) error {
	events, err := d.eventRepo.List()
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	batch := make([]model.Event, 0, len(events))
	for _, ev := range events {
		batch = append(batch, *ev)
	}

	if err := d.eng.ScheduleForEvents(ctx, batch); err != nil {
		return err
	}

	logging.Info("reminders armed",
		logging.KeyCount, d.eng.ScheduledCount(),
		"events", len(batch))
	return nil
}

// onFired delivers a fired reminder to the configured webhooks and records
// the delivery on the engine state.
func (d *Daemon) onFired(r model.Reminder) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logging.Info("reminder fired",
		logging.KeyReminderID, r.ID,
		logging.KeyEventID, r.EventID)

	d.eng.MarkFired(r.ID)
	d.dispatcher.Send(ctx, notify.FromReminder(r, time.Now()))
}

// Stop signals a running daemon process to shut down.
func (d *Daemon) Stop() error {
	pid := d.pidFile.GetRunningPID()
	if pid == 0 {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}

	if err := process.Signal(os.Interrupt); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}
	}

	// Wait for the process to exit and release the PID file.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if !IsProcessRunning(pid) {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}

	return fmt.Errorf("daemon did not stop within timeout (PID: %d)", pid)
}
