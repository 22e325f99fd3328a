package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"example.com/compost/console/internal/cache"
	"example.com/compost/console/internal/client"
	"example.com/compost/console/internal/core"
)

var commandCmd = &cobra.Command{
	Use:   "command",
	Short: "Send commands to devices and inspect dispatch history",
}

var (
	sendJSON string
	sendFile string
)

var commandSendCmd = &cobra.Command{
	Use:   "send <device-id>",
	Short: "Dispatch structured commands to a device",
	Long: `Sends a non-empty list of structured commands. The backend records the
dispatch, publishes it to the broker, and updates the record's status
(queued, sent, acked, failed) as delivery progresses; watch it with
'command history --watch'.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid device id: %s", args[0])
		}

		raw := []byte(sendJSON)
		if sendFile != "" {
			raw, err = os.ReadFile(sendFile)
			if err != nil {
				return err
			}
		}
		if len(raw) == 0 {
			return fmt.Errorf("one of --json or --file is required")
		}

		commands, err := parseCommands(raw)
		if err != nil {
			// Malformed input is rejected before any network call.
			return err
		}

		store := newStore()
		rec, err := store.SendCommands(cmd.Context(), deviceID, commands)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to send commands"))
		}
		fmt.Printf("command %d dispatched, status=%s\n", rec.CommandID, rec.Status)
		return nil
	},
}

// parseCommands accepts either one JSON object or a JSON array of
// objects.
func parseCommands(raw []byte) ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var one map[string]any
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, fmt.Errorf("invalid command JSON: %w", err)
	}
	return []map[string]any{one}, nil
}

var (
	historyLimit  int
	historyStatus string
	historyWatch  bool
)

var commandHistoryCmd = &cobra.Command{
	Use:   "history <device-id>",
	Short: "Show a device's command dispatch history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid device id: %s", args[0])
		}

		store := newStore()

		if !historyWatch {
			records, err := store.DeviceCommands(cmd.Context(), deviceID, historyLimit, historyStatus)
			if err != nil {
				return fmt.Errorf("%s", client.ErrorMessage(err, "failed to load history"))
			}
			printCommands(records)
			return nil
		}

		// Status transitions happen backend-side from broker and device
		// activity, so watching means polling; each tick reprints the
		// table and poll failures are transient, not terminal.
		poller := cache.NewPoller(cfg.Poll.Interval, logger)
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

		cache.Watch(poller, cmd.Context(), "command-history",
			func(ctx context.Context) ([]core.DeviceCommand, error) {
				return store.Client().DeviceCommands(ctx, deviceID, historyLimit, historyStatus)
			},
			func(records []core.DeviceCommand, err error) {
				if err != nil {
					fmt.Fprintln(os.Stderr, client.ErrorMessage(err, "poll failed"))
					return
				}
				fmt.Print("\033[H\033[2J")
				printCommands(records)
			})

		<-stop
		poller.Stop()
		return nil
	},
}

func printCommands(records []core.DeviceCommand) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tCOMMAND\tCREATED\tSENT\tACKED")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.CommandID, r.Status, r.Command, r.CreatedAt, r.SentAt, r.AckedAt)
	}
	w.Flush()
}

func init() {
	commandSendCmd.Flags().StringVar(&sendJSON, "json", "", "command JSON (object or array)")
	commandSendCmd.Flags().StringVar(&sendFile, "file", "", "file containing command JSON")
	commandHistoryCmd.Flags().IntVar(&historyLimit, "limit", 50, "max records")
	commandHistoryCmd.Flags().StringVar(&historyStatus, "status", "", "filter by status (queued|sent|acked|failed)")
	commandHistoryCmd.Flags().BoolVar(&historyWatch, "watch", false, "poll and reprint on an interval")
	commandCmd.AddCommand(commandSendCmd)
	commandCmd.AddCommand(commandHistoryCmd)
	rootCmd.AddCommand(commandCmd)
}
