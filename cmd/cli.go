package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"audioprofile/internal/analysis"
	"audioprofile/internal/audio"
	"audioprofile/internal/config"
	applog "audioprofile/internal/log"
	"audioprofile/internal/pipeline"
	"audioprofile/internal/report"
	"audioprofile/internal/transport"
	"audioprofile/pkg/build"

	"github.com/spf13/cobra"
)

// options holds flag values shared by the commands.
type options struct {
	configPath string
	verbose    bool
	jsonOutput bool
	estimator  string
	wsAddress  string

	device   int
	duration time.Duration
	output   string
}

// fileResult is the JSON form of one analysed input.
type fileResult struct {
	Source string `json:"source"`
	pipeline.AnalysisResult
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	buildInfo := build.GetBuildFlags()
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		"Path to a YAML configuration file (default: ./config.yaml if present)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false,
		"Print results as JSON")
	rootCmd.PersistentFlags().StringVarP(&opts.estimator, "estimator", "e", "",
		"Spectral estimator: halfsplit or fourier (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.wsAddress, "ws", "",
		"Broadcast progress events over WebSocket on this address")

	analyzeCmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Analyze one or more WAV files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), cmd.OutOrStdout(), opts, args)
		},
	}

	captureCmd := &cobra.Command{
		Use:   "capture",
		Short: "Record from an input device and analyze the capture",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd, opts)
		},
	}
	captureCmd.Flags().IntVarP(&opts.device, "device", "d", config.MinDeviceID,
		"Specify input device ID. Use 'devices' command to see available devices.")
	captureCmd.Flags().DurationVarP(&opts.duration, "duration", "t", 0,
		"Capture length (overrides config)")
	captureCmd.Flags().StringVarP(&opts.output, "output", "o", "",
		"Also save the capture to this WAV file")

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()
			return audio.ListDevices(cmd.OutOrStdout())
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), build.GetBuildFlags().String())
		},
	}

	rootCmd.AddCommand(analyzeCmd, captureCmd, devicesCmd, versionCmd)
	return rootCmd
}

// Execute runs the command line in args.
func Execute(ctx context.Context, args []string) error {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the configuration, applies flag overrides and sets the
// log level.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	if opts.estimator != "" {
		cfg.Analysis.Estimator = opts.estimator
	}
	if opts.wsAddress != "" {
		cfg.Transport.WebSocketEnabled = true
		cfg.Transport.WebSocketAddress = opts.wsAddress
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := applog.Configure(cfg.LogLevel); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newOrchestrator wires the analyzer and the configured transport.
func newOrchestrator(cfg *config.Config) (*pipeline.Orchestrator, transport.Transport, error) {
	analysisOpts, err := cfg.AnalysisOptions()
	if err != nil {
		return nil, nil, err
	}
	analyzer, err := analysis.NewAnalyzer(analysisOpts)
	if err != nil {
		return nil, nil, err
	}

	var t transport.Transport
	if cfg.Transport.WebSocketEnabled {
		ws := transport.NewWebSocketTransport(cfg.Transport.WebSocketAddress)
		if err := ws.Start(); err != nil {
			ws.Close()
			return nil, nil, fmt.Errorf("failed to start WebSocket transport: %w", err)
		}
		t = ws
	} else {
		t = transport.NewLoggingTransport()
	}

	return pipeline.New(pipeline.WithAnalyzer(analyzer), pipeline.WithTransport(t)), t, nil
}

func runAnalyze(ctx context.Context, w io.Writer, opts *options, files []string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	orch, t, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer t.Close()
	defer orch.Close()

	for _, path := range files {
		in, err := audio.DecodeWAV(path)
		if err != nil {
			return err
		}
		applog.Debugf("CLI: %s: %d channels at %d Hz", path, len(in.Channels), in.SampleRate)

		if err := analyzeOne(ctx, w, orch, opts.jsonOutput, path, in); err != nil {
			return err
		}
	}
	return nil
}

func runCapture(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	cc := cfg.Capture
	if cmd.Flags().Changed("device") {
		cc.InputDevice = opts.device
	}
	if opts.duration > 0 {
		cc.Duration = opts.duration
	}

	in, err := audio.Capture(cmd.Context(), audio.CaptureOptions{
		Device:          cc.InputDevice,
		SampleRate:      cc.SampleRate,
		Channels:        cc.Channels,
		FramesPerBuffer: cc.FramesPerBuffer,
		Duration:        cc.Duration,
		LowLatency:      cc.LowLatency,
		GateThreshold:   cc.GateThreshold,
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return err
	}

	if opts.output != "" {
		if err := audio.WriteWAV(opts.output, in, cc.BitDepth); err != nil {
			return err
		}
		applog.Infof("Capture: saved to %s", opts.output)
	}

	orch, t, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	defer t.Close()
	defer orch.Close()

	source := "capture"
	if opts.output != "" {
		source = opts.output
	}
	return analyzeOne(cmd.Context(), cmd.OutOrStdout(), orch, opts.jsonOutput, source, in)
}

// analyzeOne runs one input through the orchestrator and prints the result.
// A cancelled analysis prints nothing.
func analyzeOne(ctx context.Context, w io.Writer, orch *pipeline.Orchestrator, asJSON bool, source string, in analysis.Input) error {
	res, err := orch.Analyze(ctx, in)
	if errors.Is(err, pipeline.ErrCancelled) || errors.Is(err, context.Canceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(fileResult{Source: source, AnalysisResult: res})
	}
	_, err = fmt.Fprintln(w, report.Render(source, res))
	return err
}
