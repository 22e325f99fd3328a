package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"example.com/compost/console/internal/client"
	"example.com/compost/console/internal/core"
)

var exportFlags struct {
	channels  []string
	from      string
	to        string
	last      time.Duration
	bucket    string
	group     string
	treatment string
	out       string
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download telemetry as CSV",
}

var exportDeviceCmd = &cobra.Command{
	Use:   "device <device-id>",
	Short: "Export one device's telemetry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deviceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid device id: %s", args[0])
		}
		f := &exportFlags
		if !core.ValidBucket(f.bucket) {
			return fmt.Errorf("invalid bucket %q, expected 1m, 10m or 1h", f.bucket)
		}
		rng, err := resolveRange(f.from, f.to, f.last)
		if err != nil {
			return err
		}

		dest := exportDest("device", args[0], rng, f.channels)
		store := newStore()
		err = store.Client().ExportDevice(cmd.Context(), deviceID, client.TelemetryQuery{
			Range: rng, Channels: f.channels, Bucket: f.bucket,
		}, dest)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "export failed"))
		}
		fmt.Printf("saved %s\n", dest)
		return nil
	},
}

var exportRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Export a run's telemetry, one row per point",
	Args:  cobra.ExactArgs(1),
	RunE:  func(cmd *cobra.Command, args []string) error { return runExport(cmd, args[0], false) },
}

var exportRunWideCmd = &cobra.Command{
	Use:   "run-wide <run-id>",
	Short: "Export a run's telemetry pivoted to one column per channel",
	Long: `The wide layout needs aligned timestamps, so --bucket and an explicit
--channels list are required. Both are checked before any request is
made.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error { return runExport(cmd, args[0], true) },
}

func runExport(cmd *cobra.Command, arg string, wide bool) error {
	runID, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid run id: %s", arg)
	}
	f := &exportFlags
	if !core.ValidBucket(f.bucket) {
		return fmt.Errorf("invalid bucket %q, expected 1m, 10m or 1h", f.bucket)
	}
	rng, err := resolveRange(f.from, f.to, f.last)
	if err != nil {
		return err
	}

	q := client.RunTelemetryQuery{
		Range: rng, Channels: f.channels, Bucket: f.bucket,
		Group: f.group, Treatment: f.treatment,
	}

	scope := "run"
	if wide {
		scope = "run_wide"
	}
	dest := exportDest(scope, arg, rng, f.channels)

	store := newStore()
	if wide {
		err = store.Client().ExportRunWide(cmd.Context(), runID, q, dest)
	} else {
		err = store.Client().ExportRun(cmd.Context(), runID, q, dest)
	}
	if err != nil {
		return fmt.Errorf("%s", client.ErrorMessage(err, "export failed"))
	}
	fmt.Printf("saved %s\n", dest)
	return nil
}

// exportDest picks the output path: --out verbatim, otherwise a
// synthesized name under the configured export directory.
func exportDest(scope, name string, rng core.TimeRange, channels []string) string {
	if exportFlags.out != "" {
		return exportFlags.out
	}
	return filepath.Join(cfg.Export.Dir, core.ExportFilename(scope, name, rng.From, rng.To, channels))
}

func init() {
	for _, c := range []*cobra.Command{exportDeviceCmd, exportRunCmd, exportRunWideCmd} {
		f := c.Flags()
		f.StringSliceVar(&exportFlags.channels, "channels", nil, "channel codes to include")
		f.StringVar(&exportFlags.from, "from", "", `range start ("YYYY-MM-DD HH:mm:ss")`)
		f.StringVar(&exportFlags.to, "to", "", `range end ("YYYY-MM-DD HH:mm:ss")`)
		f.DurationVar(&exportFlags.last, "last", 0, "trailing window (e.g. 24h), alternative to --from/--to")
		f.StringVar(&exportFlags.bucket, "bucket", "", "aggregation bucket (1m|10m|1h)")
		f.StringVar(&exportFlags.out, "out", "", "output file path (default: export dir + generated name)")
	}
	for _, c := range []*cobra.Command{exportRunCmd, exportRunWideCmd} {
		c.Flags().StringVar(&exportFlags.group, "group", "", "run window group filter")
		c.Flags().StringVar(&exportFlags.treatment, "treatment", "", "run window treatment filter")
	}

	exportCmd.AddCommand(exportDeviceCmd, exportRunCmd, exportRunWideCmd)
	rootCmd.AddCommand(exportCmd)
}
