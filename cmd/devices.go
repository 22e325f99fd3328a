package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"example.com/compost/console/internal/cache"
	"example.com/compost/console/internal/client"
	"example.com/compost/console/internal/core"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices with liveness and alert badges",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore()
		tree, err := store.DevicesTree(cmd.Context(), true)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to list devices"))
		}

		now := time.Now()
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCODE\tNAME\tSTATE\tTEMP\tO2\tALERT\tLAST SEEN")
		for i := range tree {
			d := &tree[i]
			state := core.OnlineStateAt(d.LastSeenAt, now)

			temp := latestValue(d, core.MetricTemperature)
			o2 := latestValue(d, core.MetricO2)
			overall := core.OverallSeverity(core.EvalTemperature(temp).Sev, core.EvalOxygen(o2).Sev)

			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				d.DeviceID, d.Code, d.Name, state,
				formatValue(temp), formatValue(o2), overall, d.LastSeenAt)
		}
		return w.Flush()
	},
}

var showWatch bool

var deviceShowCmd = &cobra.Command{
	Use:   "show <device-id>",
	Short: "Show one device's channels and latest readings",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid device id: %s", args[0])
		}

		store := newStore()

		if showWatch {
			return watchLatest(cmd.Context(), store, deviceID)
		}
		tree, err := store.DevicesTree(cmd.Context(), true)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to load devices"))
		}

		for i := range tree {
			d := &tree[i]
			if d.DeviceID != deviceID {
				continue
			}
			state := core.OnlineStateAt(d.LastSeenAt, time.Now())
			fmt.Printf("%s (%s)  state=%s  last_seen=%s\n\n", d.Name, d.Code, state, d.LastSeenAt)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "CODE\tMETRIC\tUNIT\tACTIVE\tLATEST\tAT\tASSESSMENT")
			for j := range d.Channels {
				ch := &d.Channels[j]
				metric := core.NormalizeMetric(ch.Metric)

				var value *float64
				var at string
				if ch.Latest != nil {
					value = ch.Latest.Value
					at = ch.Latest.TS
				}
				tip := ""
				switch metric {
				case core.MetricTemperature:
					tip = core.EvalTemperature(value).Tip
				case core.MetricO2:
					tip = core.EvalOxygen(value).Tip
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\t%s\t%s\n",
					ch.Code, metric, ch.Unit, ch.Active(), formatValue(value), at, tip)
			}
			return w.Flush()
		}
		return fmt.Errorf("device %d not found", deviceID)
	},
}

// watchLatest polls the newest reading per metric channel and reprints
// the table each tick. Sensor values only change as devices report, so
// freshness comes from polling, same as command history.
func watchLatest(ctx context.Context, store *cache.Store, deviceID int64) error {
	channels, err := store.DeviceChannels(ctx, deviceID)
	if err != nil {
		return fmt.Errorf("%s", client.ErrorMessage(err, "failed to load channels"))
	}
	codes := core.CodesByMetrics(channels, core.Metrics)

	poller := cache.NewPoller(cfg.Poll.Interval, logger)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	cache.Watch(poller, ctx, "device-latest",
		func(ctx context.Context) ([]core.TelemetryPoint, error) {
			return store.Client().DeviceLatest(ctx, deviceID, codes)
		},
		func(points []core.TelemetryPoint, err error) {
			if err != nil {
				fmt.Fprintln(os.Stderr, client.ErrorMessage(err, "poll failed"))
				return
			}
			fmt.Print("\033[H\033[2J")
			printLatest(deviceID, points)
		})

	<-stop
	poller.Stop()
	return nil
}

func printLatest(deviceID int64, points []core.TelemetryPoint) {
	fmt.Printf("device %d  latest readings\n\n", deviceID)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tVALUE\tUNIT\tAT")
	for i := range points {
		p := &points[i]
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Code, formatReading(p.Value), p.Unit, p.TS)
	}
	w.Flush()
}

// formatReading renders a loosely typed reading value for the table.
func formatReading(v any) string {
	switch x := v.(type) {
	case nil:
		return "-"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func latestValue(d *core.DeviceTreeItem, m core.Metric) *float64 {
	if latest := core.LatestByMetric(d, m); latest != nil {
		return latest.Value
	}
	return nil
}

func formatValue(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func init() {
	deviceShowCmd.Flags().BoolVar(&showWatch, "watch", false, "poll latest readings and reprint on an interval")
	devicesCmd.AddCommand(deviceShowCmd)
	rootCmd.AddCommand(devicesCmd)
}
