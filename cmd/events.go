package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	apperrors "github.com/eventlife/eventlife/internal/errors"
	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/output"
	"github.com/eventlife/eventlife/internal/parser"
	"github.com/eventlife/eventlife/internal/storage"
	"github.com/eventlife/eventlife/internal/timeutil"
)

// Event command flags.
var (
	eventAddFlagAt       string
	eventAddFlagSubtitle string
	eventAddFlagDesc     string
	eventAddFlagPlace    string
	eventAddFlagCategory string
)

// eventsCmd groups event schedule management.
var eventsCmd = &cobra.Command{
	Use:     "events [command]",
	Aliases: []string{"ev", "event"},
	Short:   "Manage the event schedule",
	Long: `Manage the events that reminders are armed for.

Examples:
  eventlife events add "Morning standup" --at 9:30 --place "Room 2"
  eventlife events add "Lunch" --at noon --category Social
  eventlife events list
  eventlife events remove <id>`,
	RunE: runEventsList,
}

// eventsAddCmd adds an event to the schedule.
var eventsAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add an event",
	Long: `Add an event to the schedule.

The --at value accepts a clock label ("9:30", "14:00") or natural language
("5pm", "noon", "in 2 hours"). Events without a parseable time are kept in
the schedule but never get a reminder.`,
	Args: cobra.ExactArgs(1),
	RunE: runEventsAdd,
}

// eventsListCmd lists the schedule.
var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled events",
	RunE:  runEventsList,
}

// eventsRemoveCmd removes an event.
var eventsRemoveCmd = &cobra.Command{
	Use:     "remove <id>",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove an event",
	Args:    cobra.ExactArgs(1),
	RunE:    runEventsRemove,
}

func init() {
	eventsAddCmd.Flags().StringVar(&eventAddFlagAt, "at", "",
		"Event start time (clock label or natural language)")
	eventsAddCmd.Flags().StringVar(&eventAddFlagSubtitle, "subtitle", "",
		"Short secondary line")
	eventsAddCmd.Flags().StringVar(&eventAddFlagDesc, "desc", "",
		"Longer description")
	eventsAddCmd.Flags().StringVar(&eventAddFlagPlace, "place", "",
		"Where the event happens")
	eventsAddCmd.Flags().StringVar(&eventAddFlagCategory, "category", "",
		"Feed section the event belongs to")

	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsRemoveCmd)

	rootCmd.AddCommand(eventsCmd)
}

func runEventsAdd(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	label := ""
	if eventAddFlagAt != "" {
		label, err = parser.TimeLabel(eventAddFlagAt, time.Now())
		if err != nil {
			return apperrors.NewUserError(err.Error(),
				"use a clock label like 9:30 or an expression like '5pm'")
		}
	}

	ev := &model.Event{
		Title:       args[0],
		Subtitle:    eventAddFlagSubtitle,
		Description: eventAddFlagDesc,
		TimeLabel:   label,
		Place:       eventAddFlagPlace,
		Category:    eventAddFlagCategory,
	}

	if err := storage.NewEventRepo(db).Create(ev); err != nil {
		return err
	}

	if fmtr.Format == output.FormatJSON {
		return fmtr.JSON(ev)
	}

	fmtr.Printf("Added event %s\n", fmtr.Bold(ev.Title))
	fmtr.Printf("  id: %s\n", ev.ID)
	if ev.TimeLabel != "" {
		fmtr.Printf("  at: %s\n", ev.TimeLabel)
	} else {
		fmtr.Println("  at: unscheduled (no reminder will be armed)")
	}
	return nil
}

func runEventsList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := storage.NewEventRepo(db)

	if fmtr.Format == output.FormatJSON {
		events, err := repo.List()
		if err != nil {
			return err
		}
		return fmtr.JSON(events)
	}

	sections, err := repo.Sections()
	if err != nil {
		return err
	}

	if len(sections) == 0 {
		fmtr.Println("No events scheduled.")
		fmtr.Println("Add one with: eventlife events add <title> --at <time>")
		return nil
	}

	for _, section := range sections {
		fmtr.Println(fmtr.Bold(section.Title))
		for _, ev := range section.Events {
			label := ev.TimeLabel
			if label == "" {
				label = "--:--"
			}
			line := fmt.Sprintf("  %s  %s", label, ev.Title)
			if ev.Place != "" {
				line += fmtr.Dim("  @ " + ev.Place)
			}
			fmtr.Println(line)
			fmtr.Println(fmtr.Dim("         " + ev.ID))
		}
		fmtr.Println()
	}
	return nil
}

func runEventsRemove(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	repo := storage.NewEventRepo(db)
	ev, err := repo.Get(args[0])
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return apperrors.NewUserError(
				fmt.Sprintf("no event with id %q", args[0]),
				"list ids with: eventlife events list")
		}
		return err
	}

	if err := repo.Delete(ev.ID); err != nil {
		return err
	}

	fmtr.Printf("Removed event %s\n", fmtr.Bold(ev.Title))
	if ev.TimeLabel != "" {
		if _, _, ok := timeutil.ParseTimeOfDay(ev.TimeLabel); ok {
			fmtr.Println(fmtr.Dim("Run 'eventlife notify schedule' to drop its reminder."))
		}
	}
	return nil
}
