package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mhtech-dashboard/internal/domain/theme"
	"github.com/turtacn/mhtech-dashboard/internal/domain/view"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/render"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

type stubRenderer struct{}

func (stubRenderer) Render(_ context.Context, spec view.ChartSpec, t theme.Name, f render.Format) (*render.Image, error) {
	return &render.Image{Format: f, Data: []byte(string(spec.Kind) + ":" + string(t))}, nil
}

// execute runs mhdash with args and returns stdout.
func execute(t *testing.T, deps Dependencies, args ...string) (string, error) {
	t.Helper()
	if deps.Renderer == nil {
		deps.Renderer = stubRenderer{}
	}
	cmd := NewRootCommand(deps)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color", "--log-level", "error"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mhdash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand(Dependencies{})
	assert.Equal(t, "mhdash", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"views", "show", "render", "export", "snapshot", "events", "version"} {
		assert.True(t, names[want], "missing subcommand %q", want)
	}

	for _, flag := range []string{"config", "output", "no-color", "timeout", "seed", "theme", "heatmap-range"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestRoot_InvalidOutputFormat(t *testing.T) {
	_, err := execute(t, Dependencies{}, "views", "-o", "xml")
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}

func TestRoot_InvalidHeatmapRange(t *testing.T) {
	_, err := execute(t, Dependencies{}, "views", "--heatmap-range", "half")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "heatmap_range")
}

func TestRoot_SeedOutOfRange(t *testing.T) {
	_, err := execute(t, Dependencies{}, "views", "--seed", "4294967296")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard.seed")
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, err := execute(t, Dependencies{}, "views", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestGetCLIContext_Missing(t *testing.T) {
	_, err := GetCLIContext(&cobra.Command{})
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, Dependencies{}, "version")
	require.NoError(t, err)
	assert.Equal(t, "mhdash dev (commit: unknown, built: unknown)\n", out)

	out, err = execute(t, Dependencies{}, "version", "-o", "json")
	require.NoError(t, err)
	var v VersionInfo
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, Version, v.Version)
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"A", "LONG"}, [][]string{{"xyz", "1"}, {"q"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "A    LONG", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "---  ----", lines[1])
	assert.Equal(t, "xyz  1", strings.TrimRight(lines[2], " "))
	assert.Equal(t, "q", strings.TrimRight(lines[3], " "))

	assert.Empty(t, FormatTable(nil, nil))
}

func TestPrintYAML_KeepsFieldOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printYAML(&buf, VersionInfo{Version: "1.0", Commit: "abc", BuildDate: "today"}))
	out := buf.String()
	assert.Contains(t, out, "commit: abc\n")
	assert.Less(t, strings.Index(out, "version:"), strings.Index(out, "commit:"))
	assert.Less(t, strings.Index(out, "commit:"), strings.Index(out, "build_date: today"))
}
