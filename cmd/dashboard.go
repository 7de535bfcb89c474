package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/eventlife/eventlife/internal/engine"
	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/schedule"
	"github.com/eventlife/eventlife/internal/storage"
	"github.com/eventlife/eventlife/internal/tui"
)

// dashboardCmd shows the live reminder dashboard.
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash", "ui"},
	Short:   "Live reminder dashboard",
	Long: `Open an interactive dashboard showing armed reminders as they update.

The dashboard runs its own reminder engine over the stored events, so stop
the daemon first if it holds the database open.`,
	RunE: runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	var eng *engine.Engine
	timer := schedule.NewTimerCapability(func(r model.Reminder) {
		eng.MarkFired(r.ID)
	})
	eng = engine.New(timer, engine.Options{
		Location:    loc,
		LeadMinutes: cfg.LeadMinutes,
	})
	defer eng.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	eng.CheckPermission(ctx)

	repo := storage.NewEventRepo(db)
	events, err := repo.List()
	if err != nil {
		return err
	}
	batch := make([]model.Event, 0, len(events))
	for _, ev := range events {
		batch = append(batch, *ev)
	}
	if err := eng.ScheduleForEvents(ctx, batch); err != nil {
		return err
	}

	return tui.Run(tui.DashboardConfig{
		Engine:   eng,
		Events:   repo,
		Location: loc,
	})
}
