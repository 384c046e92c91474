package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/turtacn/mhtech-dashboard/internal/application/export"
	"github.com/turtacn/mhtech-dashboard/internal/config"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	minioinfra "github.com/turtacn/mhtech-dashboard/internal/infrastructure/storage/minio"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/format"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

// DefaultWorkbookFile is where "mhdash export" writes without --file.
const DefaultWorkbookFile = "mhtech-survey.xlsx"

func newExportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every dataset to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.operationContext(cmd)
			defer cancel()

			data, err := export.NewWorkbookExporter(cliCtx.Dispatcher.Provider(), cliCtx.Logger).Build(ctx)
			if err != nil {
				return err
			}
			if err := writeFile(out, data); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("%s written (%s; sheets %s)",
				out, cliCtx.Numbers.Bytes(int64(len(data))), strings.Join(export.Sheets(), ", ")))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "file", "f", DefaultWorkbookFile, "output workbook path")
	return cmd
}

// SnapshotResult wraps export.Snapshot for table and text output.
type SnapshotResult struct {
	*export.Snapshot
}

func (s SnapshotResult) TableHeaders() []string { return []string{"NAME", "TYPE", "SIZE", "URL"} }

func (s SnapshotResult) TableRows() [][]string {
	n := format.Indonesian()
	rows := make([][]string, len(s.Objects))
	for i, o := range s.Objects {
		rows[i] = []string{o.Name, o.ContentType, n.Bytes(o.Size), o.URL}
	}
	return rows
}

func (s SnapshotResult) WriteText(w io.Writer, n *format.Numbers) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", colorBold.Sprint("Snapshot"), s.ID)
	fmt.Fprintf(&sb, "  seed %d, theme %s, %s objects, %s\n",
		s.Seed, s.Theme, n.Int(len(s.Objects)), n.Bytes(s.Bytes()))
	for _, o := range s.Objects {
		fmt.Fprintf(&sb, "  %-32s %s\n", o.Name, colorCyan.Sprint(o.URL))
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func defaultSnapshotRepository(_ context.Context, cfg config.MinIOConfig, logger logging.Logger) (minioinfra.SnapshotRepository, error) {
	client, err := minioinfra.NewMinIOClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	return minioinfra.NewSnapshotRepository(client, logger), nil
}

func newSnapshotCmd() *cobra.Command {
	var (
		themeArg    string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Render every chart and upload it with the workbook to object storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			cfg := cliCtx.Config.MinIO
			if !cfg.Enabled {
				return errors.FeatureDisabled("snapshots").WithDetail("set minio.enabled to use snapshots")
			}
			ctx, cancel := cliCtx.operationContext(cmd)
			defer cancel()

			newRepo := cliCtx.Deps.SnapshotRepository
			if newRepo == nil {
				newRepo = defaultSnapshotRepository
			}
			repo, err := newRepo(ctx, cfg, cliCtx.Logger)
			if err != nil {
				return err
			}

			svc := export.NewSnapshotService(cliCtx.Dispatcher, cliCtx.Renderer, repo,
				export.WithSnapshotLogger(cliCtx.Logger),
				export.WithPresignTTL(cfg.PresignedTTL),
				export.WithConcurrency(concurrency),
			)
			snap, err := svc.Create(ctx, &export.SnapshotInput{Theme: themeArg})
			if err != nil {
				return err
			}
			return PrintResult(cmd, SnapshotResult{Snapshot: snap})
		},
	}
	cmd.Flags().StringVarP(&themeArg, "theme", "t", "", "chart theme (default light)")
	cmd.Flags().IntVar(&concurrency, "concurrency", export.DefaultConcurrency, "parallel renders and uploads")
	return cmd
}

// VersionInfo is the output of "mhdash version".
type VersionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
}

func (v VersionInfo) WriteText(w io.Writer, _ *format.Numbers) error {
	_, err := fmt.Fprintf(w, "mhdash %s (commit: %s, built: %s)\n", v.Version, v.Commit, v.BuildDate)
	return err
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return PrintResult(cmd, VersionInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate})
		},
	}
}
