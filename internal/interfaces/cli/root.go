// Package cli implements mhdash, the terminal front end of the dashboard.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/turtacn/mhtech-dashboard/internal/application/dashboard"
	"github.com/turtacn/mhtech-dashboard/internal/config"
	"github.com/turtacn/mhtech-dashboard/internal/domain/dataset"
	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	kafkainfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	minioinfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/storage/minio"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/format"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Output formats.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
	OutputTable = "table"
)

type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
	Seed         int64
	Theme        string
	HeatmapRange string
}

// Dependencies lets callers replace the external systems behind snapshot
// and events. Nil fields connect to MinIO and Kafka from the loaded config.
type Dependencies struct {
	Renderer           render.Renderer
	SnapshotRepository func(ctx context.Context, cfg config.MinIOConfig, logger logging.Logger) (minioinfra.SnapshotRepository, error)
	EventConsumer      func(cfg config.KafkaConfig, logger logging.Logger) (*kafkainfra.Consumer, error)
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Dispatcher   *view.Dispatcher
	Renderer     render.Renderer
	Dashboard    dashboard.Service
	Numbers      *format.Numbers
	Deps         Dependencies
	OutputFormat string
	Timeout      time.Duration
}

// NewRootCommand builds mhdash with every subcommand registered.
func NewRootCommand(deps Dependencies) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mhdash",
		Short: "Mental health in tech survey dashboard",
		Long: "mhdash explores the synthetic mental-health-in-tech survey from the terminal:\n" +
			"list views, print captions and summaries, render charts, and export datasets.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, deps)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: MHDASH_* environment only)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", OutputText, "output format (text, json, yaml, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "global operation timeout")
	pf.Int64Var(&opts.Seed, "seed", dataset.DefaultSeed, "dataset seed")
	pf.StringVar(&opts.Theme, "theme", "", "default theme (light, dark, auto)")
	pf.StringVar(&opts.HeatmapRange, "heatmap-range", "", "heatmap color range (full, parity)")

	cmd.AddCommand(
		newViewsCmd(),
		newShowCmd(),
		newRenderCmd(),
		newExportCmd(),
		newSnapshotCmd(),
		newEventsCmd(),
		newVersionCmd(),
	)
	return cmd
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions, deps Dependencies) error {
	switch opts.OutputFormat {
	case OutputText, OutputJSON, OutputYAML, OutputTable:
	default:
		return errors.InvalidParam("unknown output format").WithDetail(opts.OutputFormat)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}
	if cmd.Flags().Changed("seed") {
		cfg.Dashboard.Seed = opts.Seed
	}
	if opts.Theme != "" {
		cfg.Dashboard.DefaultTheme = opts.Theme
	}
	if opts.HeatmapRange != "" {
		cfg.Dashboard.HeatmapRange = opts.HeatmapRange
	}
	if err := cfg.Validate(); err != nil {
		return errors.InvalidParam(err.Error())
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	defaultTheme, err := theme.Parse(cfg.Dashboard.DefaultTheme, theme.Dark)
	if err != nil {
		return err
	}
	dispatcher := view.NewDispatcher(
		dataset.NewProvider(cfg.Dashboard.Seed),
		view.WithHeatmapRange(view.HeatmapRange(cfg.Dashboard.HeatmapRange)),
	)
	renderer := deps.Renderer
	if renderer == nil {
		renderer = render.NewChartRenderer(render.WithWidth(cfg.Dashboard.ChartWidth), render.WithLogger(logger))
	}

	cliCtx := &CLIContext{
		Config:     cfg,
		Logger:     logger,
		Dispatcher: dispatcher,
		Renderer:   renderer,
		Dashboard: dashboard.NewService(dispatcher, renderer,
			dashboard.WithLogger(logger),
			dashboard.WithDefaultTheme(defaultTheme),
		),
		Numbers:      format.Indonesian(),
		Deps:         deps,
		OutputFormat: opts.OutputFormat,
		Timeout:      opts.Timeout,
	}
	cmd.SetContext(context.WithValue(cmd.Context(), cliContextKey{}, cliCtx))
	return nil
}

// initLogger logs to stderr in console format so stdout stays parseable.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(opts.LogLevel)
	if opts.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts the CLIContext stored by the root command.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.Internal("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.Internal("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// operationContext bounds a command by the --timeout flag.
func (c *CLIContext) operationContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), c.Timeout)
}

// Execute runs mhdash with default dependencies.
func Execute(ctx context.Context) error {
	rootCmd := NewRootCommand(Dependencies{})
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// tableProvider is implemented by results with a tabular rendering.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// textProvider is implemented by results with a human-readable rendering.
type textProvider interface {
	WriteText(w io.Writer, n *format.Numbers) error
}

// PrintResult writes data in the selected output format.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd.OutOrStdout(), data)
	}

	out := cmd.OutOrStdout()
	switch cliCtx.OutputFormat {
	case OutputJSON:
		return printJSON(out, data)
	case OutputYAML:
		return printYAML(out, data)
	case OutputTable:
		if tp, ok := data.(tableProvider); ok {
			_, err := fmt.Fprint(out, FormatTable(tp.TableHeaders(), tp.TableRows()))
			return err
		}
	}
	if tp, ok := data.(textProvider); ok {
		return tp.WriteText(out, cliCtx.Numbers)
	}
	_, err = fmt.Fprintf(out, "%+v\n", data)
	return err
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// printYAML goes through JSON so yaml keys follow the json tags. Decoding
// into a yaml.Node keeps the field order.
func printYAML(w io.Writer, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode yaml")
	}
	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode yaml")
	}
	// JSON strings decode as double-quoted scalars; plain style reads better.
	unquote(&node)
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode yaml")
	}
	return enc.Close()
}

func unquote(n *yaml.Node) {
	n.Style &^= yaml.DoubleQuotedStyle | yaml.FlowStyle
	for _, c := range n.Content {
		unquote(c)
	}
}

// PrintError writes err to stderr, red when colors are on.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", colorRed.Sprint("Error:"), err.Error())
}

// PrintSuccess writes a one-line confirmation to stdout.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorGreen.Sprint("OK:"), msg)
}

var (
	colorRed   = color.New(color.FgRed)
	colorGreen = color.New(color.FgGreen)
	colorCyan  = color.New(color.FgCyan)
	colorBold  = color.New(color.Bold)
)

// FormatTable renders headers and rows as an aligned table with a bold
// header line.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = displayWidth(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := displayWidth(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(colorBold.Sprint(padRight(h, widths[i])))
	}
	sb.WriteString("\n")
	for i, w := range widths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("-", w))
	}
	sb.WriteString("\n")
	for _, row := range rows {
		for i := range headers {
			if i > 0 {
				sb.WriteString("  ")
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			sb.WriteString(padRight(val, widths[i]))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func displayWidth(s string) int { return len([]rune(s)) }

func padRight(s string, width int) string {
	if n := displayWidth(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
