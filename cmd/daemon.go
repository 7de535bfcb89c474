package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"

	"github.com/eventlife/eventlife/internal/daemon"
)

// Daemon command flags.
var (
	daemonStartFlagForeground bool
	daemonLogsFlagTail        int
)

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:     "daemon [command]",
	Aliases: []string{"d", "bg"},
	Short:   "Manage the background daemon",
	Long: `Manage the Eventlife background daemon that arms reminders, delivers
them to webhooks, and serves state to other eventlife processes.

Examples:
  eventlife daemon start
  eventlife daemon status
  eventlife daemon stop
  eventlife daemon logs --tail 20`,
	RunE: runDaemonStatus,
}

var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background daemon",
	Long: `Start the Eventlife background daemon.

Examples:
  eventlife daemon start           # Start in background
  eventlife daemon start -f        # Start in foreground (for debugging)`,
	RunE: runDaemonStart,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	RunE:  runDaemonStop,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runDaemonStatus,
}

var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	RunE:  runDaemonLogs,
}

func init() {
	daemonStartCmd.Flags().BoolVarP(&daemonStartFlagForeground, "foreground", "f", false,
		"Run in foreground (don't daemonize)")
	daemonLogsCmd.Flags().IntVarP(&daemonLogsFlagTail, "tail", "n", 20,
		"Number of lines to show")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonLogsCmd)

	rootCmd.AddCommand(daemonCmd)
}

// daemonLogPath returns the daemon log file path.
func daemonLogPath() string {
	return filepath.Join(xdg.StateHome, daemon.AppName, "daemon.log")
}

func runDaemonStart(cmd *cobra.Command, args []string) error {
	d := daemon.NewDaemon(cfg)

	if d.IsRunning() {
		return fmt.Errorf("daemon is already running (PID: %d)", d.RunningPID())
	}

	if daemonStartFlagForeground {
		fmtr.Println("Starting eventlife daemon (foreground mode)...")
		if len(cfg.Webhooks) == 0 {
			fmtr.Println("Warning: no webhooks configured; fired reminders are only logged.")
		}
		return d.Run(context.Background())
	}

	// Background mode spawns a foreground child detached from the terminal.
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	childArgs := []string{"daemon", "start", "--foreground"}
	if flagDebug {
		childArgs = append(childArgs, "--debug")
	}
	if flagConfig != "" {
		childArgs = append(childArgs, "--config", flagConfig)
	}

	child := exec.Command(executable, childArgs...)
	child.Stdin = nil

	logPath := daemonLogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err == nil {
		logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err == nil {
			child.Stdout = logFile
			child.Stderr = logFile
		}
	}

	if err := child.Start(); err != nil {
		return fmt.Errorf("failed to start daemon: %w", err)
	}

	// Give the child a moment to write its PID file.
	time.Sleep(500 * time.Millisecond)
	if !d.IsRunning() {
		return fmt.Errorf("daemon failed to start (check logs: %s)", logPath)
	}

	fmtr.Printf("Daemon started (PID: %d)\n", child.Process.Pid)
	return nil
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	d := daemon.NewDaemon(cfg)

	if !d.IsRunning() {
		fmtr.Println("Daemon is not running")
		return nil
	}

	pid := d.RunningPID()
	fmtr.Println("Stopping eventlife daemon...")

	if err := d.Stop(); err != nil {
		return err
	}

	fmtr.Printf("Daemon stopped (was PID: %d)\n", pid)
	return nil
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	d := daemon.NewDaemon(cfg)

	fmtr.Println("Eventlife Daemon Status")
	fmtr.Println()

	if pid := d.RunningPID(); pid > 0 {
		fmtr.Println("  Status:    running")
		fmtr.Printf("  PID:       %d\n", pid)
		fmtr.Printf("  Bridge:    %s\n", cfg.Daemon.Listen)

		if snap, err := daemonState(); err == nil {
			fmtr.Printf("  Armed:     %d reminder(s)\n", snap.Count)
		}
	} else {
		fmtr.Println("  Status:    stopped")
		fmtr.Println()
		fmtr.Println("Start with: eventlife daemon start")
	}

	return nil
}

func runDaemonLogs(cmd *cobra.Command, args []string) error {
	logPath := daemonLogPath()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmtr.Println("No log file found.")
		fmtr.Printf("Log path: %s\n", logPath)
		return nil
	}

	lines, err := tailFile(logPath, daemonLogsFlagTail)
	if err != nil {
		return err
	}

	for _, line := range lines {
		fmtr.Println(line)
	}
	return nil
}

// tailFile reads the last n lines from a file.
func tailFile(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return lines, nil
}
