package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/edaniels/golog"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/armctl/internal/armsim"
	"github.com/san-kum/armctl/internal/config"
	"github.com/san-kum/armctl/internal/controller"
	"github.com/san-kum/armctl/internal/joint"
	"github.com/san-kum/armctl/internal/loop"
	"github.com/san-kum/armctl/internal/metrics"
	"github.com/san-kum/armctl/internal/msg"
	"github.com/san-kum/armctl/internal/store"
	"github.com/san-kum/armctl/internal/viz"
)

var (
	dataDir    string
	configFile string
	rate       float64
	duration   float64
	kp         float64
	ki         float64
	kd         float64
	targetSpec string
	column     string
	frameRate  int
	debug      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "armctl",
		Short: "per-cycle joint velocity controller for a multi-joint arm",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".armctl", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulated control session and save the trace",
		RunE:  runSession,
	}
	runCmd.Flags().Float64Var(&rate, "rate", config.DefaultRate, "control cycles per second")
	runCmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "session duration (s)")
	runCmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp (all joints)")
	runCmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki (all joints)")
	runCmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd (all joints)")
	runCmd.Flags().StringVar(&targetSpec, "targets", "", "target velocities, e.g. arm_joint_1=0.5,arm_joint_2=-0.2")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drive the simulated arm interactively",
		RunE:  runLive,
	}
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp (all joints)")
	liveCmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki (all joints)")
	liveCmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd (all joints)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a trace column of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&column, "column", "", "trace column (default: every velocity column)")

	exportCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run (metadata and trace) as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return store.New(dataDir).ExportJSON(args[0])
		},
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default config to a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return config.Save(args[0], config.DefaultConfig())
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, initConfigCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() golog.Logger {
	if debug {
		return golog.NewDebugLogger("armctl")
	}
	return golog.NewDevelopmentLogger("armctl")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if cmd.Flags().Changed("rate") {
		cfg.Rate = rate
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	for i := range cfg.Joints {
		if cmd.Flags().Changed("kp") {
			cfg.Joints[i].Gains.Kp = kp
		}
		if cmd.Flags().Changed("ki") {
			cfg.Joints[i].Gains.Ki = ki
		}
		if cmd.Flags().Changed("kd") {
			cfg.Joints[i].Gains.Kd = kd
		}
	}
	return cfg, cfg.Validate()
}

// parseTargets turns "a=0.5,b=-0.2" into a velocity command.
func parseTargets(spec string) (msg.JointVelocities, error) {
	cmd := msg.JointVelocities{}
	if spec == "" {
		return cmd, nil
	}
	for _, part := range strings.Split(spec, ",") {
		name, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return cmd, fmt.Errorf("malformed target %q", part)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return cmd, fmt.Errorf("malformed target %q: %w", part, err)
		}
		cmd.Velocities = append(cmd.Velocities, msg.Velocity(name, v))
	}
	return cmd, nil
}

func runSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	targets, err := parseTargets(targetSpec)
	if err != nil {
		return err
	}

	st := store.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	arm := armsim.New(cfg.JointNames(), cfg.Sim.Inertia, cfg.Sim.Damping)
	clock := joint.NewManualClock(time.Unix(0, 0))
	ctrl, err := controller.New(arm, clock, cfg, newLogger())
	if err != nil {
		return err
	}

	runner := loop.New(ctrl, arm, clock)
	for _, m := range metrics.Defaults() {
		runner.AddMetric(m)
	}
	if !targets.Empty() {
		runner.Send(targets)
	}

	fmt.Printf("running %d-joint session at %.0f Hz for %.1fs...\n", ctrl.Len(), cfg.Rate, cfg.Duration)
	start := time.Now()

	result, err := runner.Run(context.Background(), loop.Config{Rate: cfg.Rate, Duration: cfg.Duration})
	if err != nil {
		return err
	}

	runID, err := st.Save(ctrl.Names(), cfg.Rate, cfg.Duration, result.Samples, result.Metrics)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", time.Since(start))
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.Ticks)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6f\n", name, val)
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	arm := armsim.New(cfg.JointNames(), cfg.Sim.Inertia, cfg.Sim.Damping)
	ctrl, err := controller.New(arm, joint.SystemClock{}, cfg, newLogger())
	if err != nil {
		return err
	}
	return viz.RunLive(ctrl, arm, frameRate)
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := store.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tJOINTS\tRATE\tDURATION\tTRACKING RMS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d\t%.0fHz\t%.2fs\t%.4f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			len(run.Joints),
			run.Rate,
			run.Duration,
			run.Metrics["tracking_error_rms"],
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := store.New(dataDir)

	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	header, _, rows, err := st.LoadTrace(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("joints: %s\n", strings.Join(meta.Joints, ", "))
	fmt.Printf("samples: %d\n\n", len(rows))

	for colIdx, name := range header {
		if column != "" {
			if name != column {
				continue
			}
		} else if !strings.HasPrefix(name, "vel_") {
			continue
		}

		data := make([]float64, len(rows))
		for i := range rows {
			if colIdx < len(rows[i]) {
				data[i] = rows[i][colIdx]
			}
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}
