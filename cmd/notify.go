package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	cws "github.com/coder/websocket"
	"github.com/spf13/cobra"

	"github.com/eventlife/eventlife/internal/bridge"
	apperrors "github.com/eventlife/eventlife/internal/errors"
	"github.com/eventlife/eventlife/internal/model"
	"github.com/eventlife/eventlife/internal/output"
	"github.com/eventlife/eventlife/internal/timeutil"
)

// notifyCmd groups reminder operations against the running daemon.
var notifyCmd = &cobra.Command{
	Use:     "notify [command]",
	Aliases: []string{"n", "reminders"},
	Short:   "Manage armed reminders",
	Long: `Inspect and control the reminders held by the running daemon.

Examples:
  eventlife notify list
  eventlife notify schedule
  eventlife notify dismiss <event-id>
  eventlife notify watch`,
	RunE: runNotifyList,
}

var notifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List armed reminders",
	RunE:  runNotifyList,
}

var notifyScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Re-arm reminders from the stored events",
	Long: `Ask the daemon to rebuild its reminder batch from the event schedule.

Existing reminders are cancelled first; events whose time already passed for
today get no reminder.`,
	RunE: runNotifySchedule,
}

var notifyDismissCmd = &cobra.Command{
	Use:   "dismiss <id>",
	Short: "Dismiss a reminder",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifyDismiss,
}

var notifyReadCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Mark a reminder as read",
	Args:  cobra.ExactArgs(1),
	RunE:  runNotifyRead,
}

var notifyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Cancel and remove every reminder",
	RunE:  runNotifyClear,
}

var notifyPermissionCmd = &cobra.Command{
	Use:   "permission",
	Short: "Show or request scheduling permission",
	Long: `Show whether the daemon's scheduling backend has permission to arm
reminders. With --request, run the backend's permission flow first.`,
	RunE: runNotifyPermission,
}

var flagRequestPermission bool

var notifyWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream reminder state transitions",
	Long:  `Connect to the daemon and print every state transition as it happens.`,
	RunE:  runNotifyWatch,
}

func init() {
	notifyCmd.AddCommand(notifyListCmd)
	notifyCmd.AddCommand(notifyScheduleCmd)
	notifyCmd.AddCommand(notifyDismissCmd)
	notifyCmd.AddCommand(notifyReadCmd)
	notifyCmd.AddCommand(notifyClearCmd)
	notifyCmd.AddCommand(notifyPermissionCmd)
	notifyCmd.AddCommand(notifyWatchCmd)

	notifyPermissionCmd.Flags().BoolVar(&flagRequestPermission, "request", false,
		"run the permission flow before reporting")

	rootCmd.AddCommand(notifyCmd)
}

// daemonURL builds an endpoint URL on the daemon bridge.
func daemonURL(path string) string {
	return "http://" + cfg.Daemon.Listen + path
}

// daemonUnreachable wraps a connection failure with a start hint.
func daemonUnreachable(err error) error {
	return apperrors.NewUserError(
		fmt.Sprintf("cannot reach daemon at %s: %v", cfg.Daemon.Listen, err),
		"start it with: eventlife daemon start")
}

// normalizeReminderID accepts either a reminder ID or a bare event ID.
func normalizeReminderID(id string) string {
	if strings.HasPrefix(id, model.PrefixReminder+":") {
		return id
	}
	return model.ReminderID(id)
}

func daemonState() (*bridge.StateSnapshot, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(daemonURL("/v1/state"))
	if err != nil {
		return nil, daemonUnreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var snap bridge.StateSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode daemon state: %w", err)
	}
	return &snap, nil
}

func daemonPost(path string, body any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Post(daemonURL(path), "application/json", reader)
	if err != nil {
		return daemonUnreachable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("daemon returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

func printReminders(reminders []model.Reminder, loc *time.Location) {
	if len(reminders) == 0 {
		fmtr.Println("No reminders armed.")
		fmtr.Println("Arm them with: eventlife notify schedule")
		return
	}

	for _, r := range reminders {
		var flags []string
		if r.IsFired {
			flags = append(flags, "fired")
		}
		if r.IsRead {
			flags = append(flags, "read")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = "  [" + strings.Join(flags, ", ") + "]"
		}

		fmtr.Printf("%s  %s%s\n",
			fmtr.Bold(timeutil.FormatClock(r.ScheduledTime, loc)), r.Title, suffix)
		fmtr.Printf("       %s\n", r.Message)
		fmtr.Println(fmtr.Dim("       " + r.ID))
	}
}

func runNotifyList(cmd *cobra.Command, args []string) error {
	snap, err := daemonState()
	if err != nil {
		return err
	}

	if fmtr.Format == output.FormatJSON {
		return fmtr.JSON(snap)
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	fmtr.Printf("%d reminder(s) armed, permission %s\n\n",
		snap.Count, permissionWord(snap.Permission))
	printReminders(snap.Reminders, loc)
	return nil
}

func permissionWord(granted bool) string {
	if granted {
		return "granted"
	}
	return "denied"
}

func runNotifySchedule(cmd *cobra.Command, args []string) error {
	if err := daemonPost("/v1/rearm", nil); err != nil {
		return err
	}
	return runNotifyList(cmd, args)
}

func runNotifyDismiss(cmd *cobra.Command, args []string) error {
	id := normalizeReminderID(args[0])
	if err := daemonPost("/v1/reminders/dismiss", map[string]string{"id": id}); err != nil {
		return err
	}
	fmtr.Printf("Dismissed %s\n", id)
	return nil
}

func runNotifyRead(cmd *cobra.Command, args []string) error {
	id := normalizeReminderID(args[0])
	if err := daemonPost("/v1/reminders/read", map[string]string{"id": id}); err != nil {
		return err
	}
	fmtr.Printf("Marked %s as read\n", id)
	return nil
}

func runNotifyClear(cmd *cobra.Command, args []string) error {
	if err := daemonPost("/v1/reminders/clear", nil); err != nil {
		return err
	}
	fmtr.Println("Cleared all reminders")
	return nil
}

func runNotifyPermission(cmd *cobra.Command, args []string) error {
	if flagRequestPermission {
		client := &http.Client{Timeout: 2 * time.Minute}
		resp, err := client.Post(daemonURL("/v1/permission/request"), "application/json", nil)
		if err != nil {
			return daemonUnreachable(err)
		}
		defer resp.Body.Close()

		var result struct {
			Granted bool `json:"granted"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decode permission result: %w", err)
		}
		fmtr.Printf("Permission %s\n", permissionWord(result.Granted))
		return nil
	}

	snap, err := daemonState()
	if err != nil {
		return err
	}
	if fmtr.Format == output.FormatJSON {
		return fmtr.JSON(map[string]bool{"granted": snap.Permission})
	}
	fmtr.Printf("Permission %s\n", permissionWord(snap.Permission))
	return nil
}

func runNotifyWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	wsURL := "ws://" + cfg.Daemon.Listen + "/v1/stream"
	conn, _, err := cws.Dial(ctx, wsURL, nil)
	if err != nil {
		return daemonUnreachable(err)
	}
	defer conn.Close(cws.StatusNormalClosure, "")

	fmtr.Printf("Watching %s (ctrl+c to stop)\n\n", cfg.Daemon.Listen)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("stream closed: %w", err)
		}

		var frame bridge.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			continue
		}
		printFrame(frame, loc)
	}
}

func printFrame(frame bridge.Frame, loc *time.Location) {
	stamp := fmtr.Dim(time.Now().In(loc).Format("15:04:05"))

	switch frame.Type {
	case bridge.FrameReminders:
		raw, err := json.Marshal(frame.Data)
		if err != nil {
			return
		}
		var reminders []model.Reminder
		if err := json.Unmarshal(raw, &reminders); err != nil {
			return
		}
		fmtr.Printf("%s reminders (%d)\n", stamp, len(reminders))
		for _, r := range reminders {
			fmtr.Printf("  %s  %s\n", timeutil.FormatClock(r.ScheduledTime, loc), r.Title)
		}
	case bridge.FramePermission:
		granted, _ := frame.Data.(bool)
		fmtr.Printf("%s permission %s\n", stamp, permissionWord(granted))
	case bridge.FrameCount:
		fmtr.Printf("%s count %v\n", stamp, frame.Data)
	}
}
