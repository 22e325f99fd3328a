package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"example.com/compost/console/internal/cache"
	"example.com/compost/console/internal/client"
	"example.com/compost/console/internal/core"
)

var telemetryFlags struct {
	deviceID  int64
	runID     int64
	metric    string
	channels  []string
	from      string
	to        string
	last      time.Duration
	bucket    string
	group     string
	treatment string
}

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Query telemetry and summarize the chart series",
	Long: `Fetches telemetry for a device (--device) or a run (--run), shapes the
flat point list into one series per channel code, and prints per-series
statistics. Channels are selected explicitly (--channels) or derived
from --metric.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := &telemetryFlags
		if (f.deviceID > 0) == (f.runID > 0) {
			return fmt.Errorf("exactly one of --device or --run is required")
		}
		if !core.ValidBucket(f.bucket) {
			return fmt.Errorf("invalid bucket %q, expected 1m, 10m or 1h", f.bucket)
		}

		rng, err := resolveRange(f.from, f.to, f.last)
		if err != nil {
			return err
		}

		store := newStore()
		ctx := cmd.Context()

		codes := f.channels
		metric := core.NormalizeMetric(f.metric)

		var res *client.TelemetryResponse
		if f.deviceID > 0 {
			if len(codes) == 0 && f.metric != "" {
				channels, err := store.DeviceChannels(ctx, f.deviceID)
				if err != nil {
					return fmt.Errorf("%s", client.ErrorMessage(err, "failed to load channels"))
				}
				codes = core.CodesForMetric([]core.DeviceTreeItem{{Channels: channels}}, metric)
			}
			res, err = store.DeviceTelemetry(ctx, f.deviceID, client.TelemetryQuery{
				Range: rng, Channels: codes, Bucket: f.bucket,
			})
		} else {
			if len(codes) == 0 && f.metric != "" {
				codes, err = runMetricCodes(cmd, store, f.runID, f.group, f.treatment, metric)
				if err != nil {
					return err
				}
			}
			res, err = store.RunTelemetry(ctx, f.runID, client.RunTelemetryQuery{
				Range: rng, Channels: codes, Bucket: f.bucket,
				Group: f.group, Treatment: f.treatment,
			})
		}
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "telemetry query failed"))
		}

		series := core.BuildSeries(res.Data)
		if len(series) == 0 {
			fmt.Println("no data for this selection")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "CODE\tPOINTS\tMIN\tMAX\tLAST")
		for _, s := range series {
			st := s.Stats()
			fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\n", st.Code, st.Count, st.Min, st.Max, st.Last)
		}
		return w.Flush()
	},
}

// resolveRange turns either an explicit from/to pair or a trailing
// --last duration into a wire-format range. All empty means the
// backend default window.
func resolveRange(from, to string, last time.Duration) (core.TimeRange, error) {
	if last > 0 {
		if from != "" || to != "" {
			return core.TimeRange{}, fmt.Errorf("--last conflicts with --from/--to")
		}
		return core.LastRange(last, time.Now()), nil
	}
	for _, s := range []string{from, to} {
		if s == "" {
			continue
		}
		if _, err := core.ParseLocalTime(s); err != nil {
			return core.TimeRange{}, fmt.Errorf("invalid timestamp %q, expected %q", s, core.TimeLayout)
		}
	}
	return core.TimeRange{From: from, To: to}, nil
}

// runMetricCodes resolves the channel codes for a metric across the
// devices bound by a run's windows.
func runMetricCodes(cmd *cobra.Command, store *cache.Store, runID int64, group, treatment string, metric core.Metric) ([]string, error) {
	ctx := cmd.Context()
	windows, err := store.RunWindows(ctx, runID, group, treatment)
	if err != nil {
		return nil, fmt.Errorf("%s", client.ErrorMessage(err, "failed to load run windows"))
	}
	tree, err := store.DevicesTree(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%s", client.ErrorMessage(err, "failed to load devices"))
	}

	inScope := make(map[int64]bool, len(windows))
	for _, w := range windows {
		inScope[w.DeviceID] = true
	}
	var scoped []core.DeviceTreeItem
	for _, d := range tree {
		if inScope[d.DeviceID] {
			scoped = append(scoped, d)
		}
	}
	return core.CodesForMetric(scoped, metric), nil
}

func init() {
	f := telemetryCmd.Flags()
	f.Int64Var(&telemetryFlags.deviceID, "device", 0, "device id")
	f.Int64Var(&telemetryFlags.runID, "run", 0, "run id")
	f.StringVar(&telemetryFlags.metric, "metric", "", "semantic metric (temperature|o2|co2|moisture)")
	f.StringSliceVar(&telemetryFlags.channels, "channels", nil, "explicit channel codes")
	f.StringVar(&telemetryFlags.from, "from", "", `range start ("YYYY-MM-DD HH:mm:ss")`)
	f.StringVar(&telemetryFlags.to, "to", "", `range end ("YYYY-MM-DD HH:mm:ss")`)
	f.DurationVar(&telemetryFlags.last, "last", 0, "trailing window (e.g. 24h), alternative to --from/--to")
	f.StringVar(&telemetryFlags.bucket, "bucket", "", "aggregation bucket (1m|10m|1h), empty for raw")
	f.StringVar(&telemetryFlags.group, "group", "", "run window group filter")
	f.StringVar(&telemetryFlags.treatment, "treatment", "", "run window treatment filter")
	rootCmd.AddCommand(telemetryCmd)
}
