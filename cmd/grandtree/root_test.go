package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/grandtree"
)

// configFrom parses args against a root command and returns the resulting
// configuration without running anything.
func configFrom(t *testing.T, args ...string) (*grandtree.Config, error) {
	t.Helper()
	flags := &rootFlags{}
	var cfg *grandtree.Config
	var loadErr error
	cmd := &cobra.Command{
		Use: "probe",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, loadErr = loadConfig(cmd, flags)
			return nil
		},
	}
	pf := cmd.Flags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "")
	pf.StringVar(&flags.theme, "theme", "", "")
	pf.BoolVar(&flags.noSnow, "no-snow", false, "")
	pf.Uint64Var(&flags.seed, "seed", 0, "")
	pf.BoolVar(&flags.debug, "debug", false, "")
	pf.StringVar(&flags.logLevel, "log-level", "", "")
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return cfg, loadErr
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := configFrom(t)
	require.NoError(t, err)
	require.Equal(t, grandtree.DefaultConfig(), cfg)
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	cfg, err := configFrom(t, "--theme", "diamond", "--no-snow", "--seed", "42", "--debug", "--log-level", "warn")
	require.NoError(t, err)
	require.Equal(t, "diamond", cfg.View.Theme)
	require.False(t, cfg.View.Snowing)
	require.Equal(t, uint64(42), cfg.Layout.Seed)
	require.True(t, cfg.Debug)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadConfigRejectsBadFlag(t *testing.T) {
	_, err := configFrom(t, "--theme", "silver")
	require.ErrorIs(t, err, grandtree.ErrInvalidValue)
	require.ErrorContains(t, err, "flags:")
}

func TestNewLoggerDebugRaisesLevel(t *testing.T) {
	cfg := grandtree.DefaultConfig()
	cfg.Debug = true
	cfg.Log.Human = false
	buf := &bytes.Buffer{}
	log, err := newLogger(cfg, buf)
	require.NoError(t, err)

	log.Debug("probe")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "debug", entry["level"])
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	require.Subset(t, names, []string{"run", "tui", "layout", "version"})
}

func TestLoadScriptMissingFile(t *testing.T) {
	_, err := loadScript("does-not-exist.json")
	require.ErrorContains(t, err, "read script")
}
