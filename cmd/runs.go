package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"example.com/compost/console/internal/client"
	"example.com/compost/console/internal/core"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Manage experiment runs and their device windows",
}

var runsQuery string

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore()
		runs, err := store.Runs(cmd.Context(), runsQuery)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to list runs"))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tSTART\tEND\tNOTE")
		for _, r := range runs {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", r.RunID, r.Name, r.StartAt, r.EndAt, r.Note)
		}
		return w.Flush()
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show a run and its windows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := parseID(args[0], "run")
		if err != nil {
			return err
		}

		store := newStore()
		run, err := store.RunDetail(cmd.Context(), runID)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to load run"))
		}
		windows, err := store.RunWindows(cmd.Context(), runID, "", "")
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to load windows"))
		}

		fmt.Printf("%s  start=%s end=%s\n", run.Name, run.StartAt, run.EndAt)
		if run.Note != "" {
			fmt.Printf("note: %s\n", run.Note)
		}
		fmt.Println()
		printWindows(windows)
		return nil
	},
}

var runFlags struct {
	name     string
	startAt  string
	endAt    string
	note     string
	recipe   string
	settings string
}

func runBodyFromFlags() (client.RunBody, error) {
	f := &runFlags
	body := client.RunBody{Name: f.name, StartAt: f.startAt}
	if f.endAt != "" {
		body.EndAt = &f.endAt
	}
	if f.note != "" {
		body.Note = &f.note
	}
	var err error
	if body.Recipe, err = parseJSONObject(f.recipe, "--recipe"); err != nil {
		return body, err
	}
	if body.Settings, err = parseJSONObject(f.settings, "--settings"); err != nil {
		return body, err
	}
	return body, nil
}

var runsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runFlags.name == "" {
			return fmt.Errorf("--name is required")
		}
		body, err := runBodyFromFlags()
		if err != nil {
			return err
		}

		store := newStore()
		run, err := store.CreateRun(cmd.Context(), body)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to create run"))
		}
		fmt.Printf("created run %d\n", run.RunID)
		return nil
	},
}

var runsUpdateCmd = &cobra.Command{
	Use:   "update <run-id>",
	Short: "Update a run (only the given flags change)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := parseID(args[0], "run")
		if err != nil {
			return err
		}
		body, err := runBodyFromFlags()
		if err != nil {
			return err
		}

		store := newStore()
		run, err := store.UpdateRun(cmd.Context(), runID, body)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to update run"))
		}
		fmt.Printf("updated run %d\n", run.RunID)
		return nil
	},
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := parseID(args[0], "run")
		if err != nil {
			return err
		}
		store := newStore()
		if err := store.DeleteRun(cmd.Context(), runID); err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to delete run"))
		}
		fmt.Printf("deleted run %d\n", runID)
		return nil
	},
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "Manage the device windows of a run",
}

var windowFlags struct {
	deviceID  int64
	group     string
	treatment string
	followRun bool
	startAt   string
	endAt     string
	note      string
}

func windowBodyFromFlags(cmd *cobra.Command) client.RunWindowBody {
	f := &windowFlags
	body := client.RunWindowBody{}
	if f.deviceID > 0 {
		body.DeviceID = f.deviceID
	}
	if cmd.Flags().Changed("follow-run") {
		body.FollowRun = &f.followRun
	}
	if f.group != "" {
		body.Group = &f.group
	}
	if f.treatment != "" {
		body.Treatment = &f.treatment
	}
	if f.startAt != "" {
		body.StartAt = &f.startAt
	}
	if f.endAt != "" {
		body.EndAt = &f.endAt
	}
	if f.note != "" {
		body.Note = &f.note
	}
	return body
}

var windowsListCmd = &cobra.Command{
	Use:   "list <run-id>",
	Short: "List a run's windows",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := parseID(args[0], "run")
		if err != nil {
			return err
		}
		store := newStore()
		windows, err := store.RunWindows(cmd.Context(), runID, windowFlags.group, windowFlags.treatment)
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to load windows"))
		}
		printWindows(windows)
		return nil
	},
}

var windowsAddCmd = &cobra.Command{
	Use:   "add <run-id>",
	Short: "Bind a device to a run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := parseID(args[0], "run")
		if err != nil {
			return err
		}
		if windowFlags.deviceID <= 0 {
			return fmt.Errorf("--device is required")
		}

		store := newStore()
		win, err := store.CreateRunWindow(cmd.Context(), runID, windowBodyFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to create window"))
		}
		fmt.Printf("created window %d\n", win.WindowID)
		return nil
	},
}

var windowsUpdateCmd = &cobra.Command{
	Use:   "update <run-id> <window-id>",
	Short: "Update a window (only the given flags change)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := parseID(args[0], "run")
		if err != nil {
			return err
		}
		windowID, err := parseID(args[1], "window")
		if err != nil {
			return err
		}

		store := newStore()
		win, err := store.UpdateRunWindow(cmd.Context(), runID, windowID, windowBodyFromFlags(cmd))
		if err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to update window"))
		}
		fmt.Printf("updated window %d\n", win.WindowID)
		return nil
	},
}

var windowsRemoveCmd = &cobra.Command{
	Use:   "remove <run-id> <window-id>",
	Short: "Unbind a device from a run",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, err := parseID(args[0], "run")
		if err != nil {
			return err
		}
		windowID, err := parseID(args[1], "window")
		if err != nil {
			return err
		}

		store := newStore()
		if err := store.DeleteRunWindow(cmd.Context(), runID, windowID); err != nil {
			return fmt.Errorf("%s", client.ErrorMessage(err, "failed to delete window"))
		}
		fmt.Printf("removed window %d\n", windowID)
		return nil
	},
}

func printWindows(windows []core.RunWindow) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "WINDOW\tDEVICE\tGROUP\tTREATMENT\tFOLLOW\tEFFECTIVE START\tEFFECTIVE END")
	for _, win := range windows {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%t\t%s\t%s\n",
			win.WindowID, win.DeviceID, win.Group, win.Treatment, win.FollowRun,
			win.EffectiveStartAt, win.EffectiveEndAt)
	}
	w.Flush()
}

func parseID(arg, name string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id: %s", name, arg)
	}
	return id, nil
}

func parseJSONObject(raw, flag string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("%s: invalid JSON object: %w", flag, err)
	}
	return obj, nil
}

func init() {
	runsListCmd.Flags().StringVarP(&runsQuery, "query", "q", "", "filter runs by name")

	for _, c := range []*cobra.Command{runsCreateCmd, runsUpdateCmd} {
		f := c.Flags()
		f.StringVar(&runFlags.name, "name", "", "run name")
		f.StringVar(&runFlags.startAt, "start", "", `start time ("YYYY-MM-DD HH:mm:ss")`)
		f.StringVar(&runFlags.endAt, "end", "", "end time, empty for open-ended")
		f.StringVar(&runFlags.note, "note", "", "free-text note")
		f.StringVar(&runFlags.recipe, "recipe", "", "recipe JSON object")
		f.StringVar(&runFlags.settings, "settings", "", "settings JSON object")
	}

	windowsListCmd.Flags().StringVar(&windowFlags.group, "group", "", "group filter")
	windowsListCmd.Flags().StringVar(&windowFlags.treatment, "treatment", "", "treatment filter")

	for _, c := range []*cobra.Command{windowsAddCmd, windowsUpdateCmd} {
		f := c.Flags()
		f.Int64Var(&windowFlags.deviceID, "device", 0, "device id")
		f.StringVar(&windowFlags.group, "group", "", "group label")
		f.StringVar(&windowFlags.treatment, "treatment", "", "treatment label")
		f.BoolVar(&windowFlags.followRun, "follow-run", true, "inherit the run's time bounds")
		f.StringVar(&windowFlags.startAt, "start", "", "window start (ignored with --follow-run)")
		f.StringVar(&windowFlags.endAt, "end", "", "window end (ignored with --follow-run)")
		f.StringVar(&windowFlags.note, "note", "", "free-text note")
	}

	windowsCmd.AddCommand(windowsListCmd, windowsAddCmd, windowsUpdateCmd, windowsRemoveCmd)
	runsCmd.AddCommand(runsListCmd, runsShowCmd, runsCreateCmd, runsUpdateCmd, runsDeleteCmd, windowsCmd)
	rootCmd.AddCommand(runsCmd)
}
