package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/turtacn/mhtech-dashboard/internal/application/dashboard"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	"github.com/turtacn/mhtech-dashboard/internal/interfaces/format"
)

// ViewList is the output of "mhdash views".
type ViewList struct {
	Views []view.Descriptor `json:"views"`
}

func (l ViewList) TableHeaders() []string { return []string{"SLUG", "LABEL", "CHART"} }

func (l ViewList) TableRows() [][]string {
	rows := make([][]string, len(l.Views))
	for i, d := range l.Views {
		rows[i] = []string{d.Slug, string(d.Label), string(d.Kind)}
	}
	return rows
}

func (l ViewList) WriteText(w io.Writer, _ *format.Numbers) error {
	for i, d := range l.Views {
		if _, err := fmt.Fprintf(w, "%d. %s %s\n", i+1, colorBold.Sprint(d.Label), colorCyan.Sprintf("(%s)", d.Slug)); err != nil {
			return err
		}
	}
	return nil
}

func newViewsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "views",
		Short: "List the dashboard views in sidebar order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			return PrintResult(cmd, ViewList{Views: cliCtx.Dashboard.Views(cmd.Context())})
		},
	}
}

// ViewDetail is the output of "mhdash show".
type ViewDetail struct {
	View  view.Result        `json:"view"`
	Home  *view.HomeContent  `json:"home,omitempty"`
	Stats *view.SummaryStats `json:"stats,omitempty"`
}

func (d ViewDetail) TableHeaders() []string { return []string{"FIELD", "VALUE"} }

func (d ViewDetail) TableRows() [][]string {
	n := format.Indonesian()
	rows := [][]string{
		{"view", string(d.View.Label)},
		{"slug", d.View.Slug},
		{"chart", string(d.View.Chart.Kind)},
	}
	return append(rows, statRows(d.Stats, n)...)
}

func statRows(s *view.SummaryStats, n *format.Numbers) [][]string {
	if s == nil {
		return nil
	}
	rows := [][]string{{"count", n.Int(s.Count)}}
	if s.Total != 0 {
		rows = append(rows, []string{"total", n.Float(s.Total)})
	}
	if s.Mean != nil {
		rows = append(rows, []string{"mean", n.Float(*s.Mean)})
	}
	if s.StdDev != nil {
		rows = append(rows, []string{"std_dev", n.Float(*s.StdDev)})
	}
	if s.Top != "" {
		rows = append(rows, []string{"top", s.Top})
	}
	if s.Correlation != nil {
		rows = append(rows, []string{"correlation", n.Float(*s.Correlation)})
	}
	return rows
}

func (d ViewDetail) WriteText(w io.Writer, n *format.Numbers) error {
	var sb strings.Builder
	if d.Home != nil {
		fmt.Fprintf(&sb, "%s\n%s\n\n", colorBold.Sprint(d.Home.Title), d.Home.Subtitle)
		for _, a := range d.Home.Authors {
			fmt.Fprintf(&sb, "  %s (%s)\n", a.Name, a.StudentID)
		}
		fmt.Fprintf(&sb, "\n%s\n", d.Home.Intro)
	} else {
		fmt.Fprintf(&sb, "%s\n\n%s\n", colorBold.Sprint(d.View.Heading), d.View.Caption)
	}
	if rows := statRows(d.Stats, n); len(rows) > 0 {
		sb.WriteString("\n")
		for _, r := range rows {
			fmt.Fprintf(&sb, "  %-12s %s\n", colorCyan.Sprint(r[0]), r[1])
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func newShowCmd() *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "show [view]",
		Short: "Print a view's caption and summary statistics",
		Long:  "Print a view's caption and summary statistics. The view is a label or slug; it defaults to home.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			page, err := cliCtx.Dashboard.Page(cmd.Context(), &dashboard.PageInput{View: name})
			if err != nil {
				return err
			}
			if dump {
				spew.Fdump(cmd.OutOrStdout(), page.Current.Chart)
				return nil
			}
			return PrintResult(cmd, ViewDetail{View: page.Current, Home: page.Home, Stats: page.Stats})
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "dump the full chart specification")
	return cmd
}

func newRenderCmd() *cobra.Command {
	var (
		out      string
		themeArg string
		formatAs string
	)
	cmd := &cobra.Command{
		Use:   "render <view>",
		Short: "Render a view's chart to a PNG or SVG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			f, err := render.ParseFormat(formatAs)
			if err != nil {
				return err
			}
			ctx, cancel := cliCtx.operationContext(cmd)
			defer cancel()

			chart, err := cliCtx.Dashboard.Chart(ctx, &dashboard.ChartInput{View: args[0], Theme: themeArg, Format: string(f)})
			if err != nil {
				return err
			}
			if out == "" {
				out = chart.View.Slug() + "." + string(f)
			}
			if out == "-" {
				_, err := cmd.OutOrStdout().Write(chart.Image.Data)
				return err
			}
			if err := writeFile(out, chart.Image.Data); err != nil {
				return err
			}
			PrintSuccess(cmd, fmt.Sprintf("%s written (%s, %s theme)", out, cliCtx.Numbers.Bytes(int64(len(chart.Image.Data))), chart.Theme))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "file", "f", "", `output file; "-" writes to stdout (default <slug>.<format>)`)
	cmd.Flags().StringVarP(&themeArg, "theme", "t", "", "chart theme (light, dark, auto)")
	cmd.Flags().StringVar(&formatAs, "format", string(render.PNG), "image format (png, svg)")
	return cmd
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
