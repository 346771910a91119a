// Package main provides the CLI entrypoint for levelscore.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/levelscore/internal/config"
	"github.com/verte-zerg/levelscore/internal/game"
	"github.com/verte-zerg/levelscore/internal/model"
	"github.com/verte-zerg/levelscore/internal/server"
	"github.com/verte-zerg/levelscore/internal/stats"
	"github.com/verte-zerg/levelscore/internal/statsui"
	"github.com/verte-zerg/levelscore/internal/store"
)

const (
	defaultAddr    = ":5000"
	defaultRawLog  = true
	defaultPersist = string(game.PersistAlways)
)

var (
	serveAddr     string
	serveLevels   string
	serveSnapshot string
	serveLogDir   string
	serveRawLog   bool
	servePersist  string
	serveResume   bool

	snapshotOut string

	statsPlain bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "levelscore",
		Short:         "Level-based game scoring server",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServeCmd,
	}

	// Storage flags are shared by serve, levels, snapshot and stats.
	rootCmd.PersistentFlags().StringVar(&serveLevels, "levels", "", "YAML file with level definitions (default: built-in easy/medium/hard)")
	rootCmd.PersistentFlags().StringVar(&serveSnapshot, "snapshot", config.DefaultSnapshotPath(), "game snapshot file")

	rootCmd.Flags().StringVar(&serveAddr, "addr", defaultAddr, "listen address")
	rootCmd.Flags().StringVar(&serveLogDir, "log-dir", config.DefaultLogDir(), "directory for per-level raw submission logs")
	rootCmd.Flags().BoolVar(&serveRawLog, "raw-log", defaultRawLog, "append every raw submission to its level log")
	rootCmd.Flags().StringVar(&servePersist, "persist", defaultPersist, "snapshot policy: always or completion")
	rootCmd.Flags().BoolVar(&serveResume, "resume", false, "resume from an existing snapshot")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newLevelsCmd())
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newStatsCmd())

	return rootCmd
}

// loadLayeredConfig reads the config file and applies environment overrides on top.
func loadLayeredConfig() (config.FileConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	envCfg, err := config.LoadEnv()
	if err != nil {
		return config.FileConfig{}, fmt.Errorf("failed to load environment: %w", err)
	}
	return fileCfg.Overlay(envCfg), nil
}

// applyStorageConfig fills the persistent flags that were not set on the command line.
func applyStorageConfig(cmd *cobra.Command, cfg config.FileConfig) {
	applyStringConfig(cmd, "levels", &serveLevels, cfg.Server.Levels)
	applyStringConfig(cmd, "snapshot", &serveSnapshot, cfg.Storage.Snapshot)
}

func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadLayeredConfig()
	if err != nil {
		return err
	}
	applyStorageConfig(cmd, cfg)
	applyStringConfig(cmd, "addr", &serveAddr, cfg.Server.Addr)
	applyStringConfig(cmd, "log-dir", &serveLogDir, cfg.Storage.LogDir)
	applyBoolConfig(cmd, "raw-log", &serveRawLog, cfg.Storage.RawLog)
	applyStringConfig(cmd, "persist", &servePersist, cfg.Storage.Persist)
	applyBoolConfig(cmd, "resume", &serveResume, cfg.Storage.Resume)

	logger := log.New(os.Stderr, "levelscore: ", log.LstdFlags)
	ctx := contextOrBackground(cmd)
	svc, err := startService(ctx, logger)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(svc, server.Config{Addr: serveAddr, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}

// startService builds the service and either resumes the stored snapshot or
// overwrites it with the fresh state.
func startService(ctx context.Context, logger *log.Logger) (*game.Service, error) {
	svc, err := buildService(logger)
	if err != nil {
		return nil, err
	}
	if serveResume {
		resumed, err := svc.Resume(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to resume: %w", err)
		}
		if resumed {
			id, _ := svc.CurrentLevel()
			logger.Printf("resumed from %s at level %s", serveSnapshot, id)
			return svc, nil
		}
	}
	// A snapshot left by an earlier run must not outlive the reset.
	if err := svc.Flush(ctx); err != nil {
		return nil, fmt.Errorf("failed to write initial snapshot: %w", err)
	}
	return svc, nil
}

func buildService(logger *log.Logger) (*game.Service, error) {
	levels, err := config.LoadLevels(serveLevels)
	if err != nil {
		return nil, fmt.Errorf("failed to load levels: %w", err)
	}
	persist, err := game.ParsePersistPolicy(servePersist)
	if err != nil {
		return nil, err
	}
	opts := game.Options{
		Snapshots: store.NewSnapshotFile(serveSnapshot),
		Persist:   persist,
		Logger:    logger,
	}
	if serveRawLog {
		opts.RawLog = store.NewLevelLog(serveLogDir)
	}
	svc, err := game.NewService(levels, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create game service: %w", err)
	}
	return svc, nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Edit the config file",
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func newLevelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "levels",
		Short: "List the configured levels",
		RunE:  runLevelsCmd,
	}
}

func runLevelsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadLayeredConfig()
	if err != nil {
		return err
	}
	applyStorageConfig(cmd, cfg)
	levels, err := config.LoadLevels(serveLevels)
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}
	return writeLevels(cmd.OutOrStdout(), levels)
}

func writeLevels(w io.Writer, levels []model.Level) error {
	for i, lvl := range levels {
		hints := "no"
		if lvl.Config.UseColorHints {
			hints = "yes"
		}
		if _, err := fmt.Fprintf(w, "%d. %-10s hints=%-3s labels=%d  %s\n", i+1, lvl.ID, hints, len(lvl.Config.Labels), strings.Join(lvl.Config.Labels, " ")); err != nil {
			return err
		}
	}
	return nil
}

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Export the game snapshot",
		RunE:  runSnapshotCmd,
	}
	cmd.Flags().StringVarP(&snapshotOut, "out", "o", "", "write to file instead of stdout")
	return cmd
}

func runSnapshotCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadLayeredConfig()
	if err != nil {
		return err
	}
	applyStorageConfig(cmd, cfg)
	levels, err := config.LoadLevels(serveLevels)
	if err != nil {
		return fmt.Errorf("failed to load levels: %w", err)
	}
	svc, err := game.NewService(levels, game.Options{
		Snapshots: store.NewSnapshotFile(serveSnapshot),
		Logger:    log.New(io.Discard, "", 0),
	})
	if err != nil {
		return fmt.Errorf("failed to create game service: %w", err)
	}
	ctx := contextOrBackground(cmd)
	if _, err := svc.Resume(ctx); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	data, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}
	if snapshotOut == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(snapshotOut, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", snapshotOut, err)
	}
	logErrf("wrote %s\n", snapshotOut)
	return nil
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-level statistics",
		RunE:  runStatsCmd,
	}
	cmd.Flags().BoolVar(&statsPlain, "plain", false, "print a plain text report instead of the TUI")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadLayeredConfig()
	if err != nil {
		return err
	}
	applyStorageConfig(cmd, cfg)
	st := store.NewSnapshotFile(serveSnapshot)

	out := cmd.OutOrStdout()
	if statsPlain || !stats.IsInteractive(out) {
		report, err := stats.BuildReport(contextOrBackground(cmd), st)
		if err != nil {
			return fmt.Errorf("failed to read snapshot: %w", err)
		}
		if err := stats.RenderSummary(out, report.State); err != nil {
			return err
		}
		return stats.RenderLevelDetails(out, report.State, stats.TerminalWidth())
	}

	m := statsui.NewModel(st, statsui.Options{Source: st.Path()})
	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run stats TUI: %w", err)
	}
	return nil
}

func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# levelscore configuration
# Uncomment a value to enable it. LEVELSCORE_* environment variables override
# config values, and CLI flags override both.

[server]
# addr = %q              # Listen address
# levels = ""                # YAML file with level definitions

[storage]
# snapshot = %q
# log-dir = %q
# raw-log = %t             # Append raw submissions to level_<id>_data.json
# persist = %q          # always or completion
# resume = false             # Continue from an existing snapshot
`,
		defaultAddr,
		config.DefaultSnapshotPath(),
		config.DefaultLogDir(),
		defaultRawLog,
		defaultPersist,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
