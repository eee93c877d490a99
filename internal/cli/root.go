// Package cli implements the evidence-locker CLI commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/evidence-locker/internal/config"
	"github.com/rcliao/evidence-locker/internal/kv"
	"github.com/rcliao/evidence-locker/internal/locker"
	"github.com/rcliao/evidence-locker/internal/manifest"
	"github.com/rcliao/evidence-locker/internal/metrics"
)

var (
	dbPath     string
	configPath string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "evidence-locker",
	Short: "Arrest inventory snapshots",
	Long:  "Confiscates a person's belongings on arrest and hands the legal part back on release. State lives in one durable key-value slot.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $EVIDENCE_LOCKER_DB or ~/.evidence-locker/locker.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $EVIDENCE_LOCKER_CONFIG or ~/.evidence-locker/config.yaml)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
}

func loadConfig() config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitErr("load config", err)
	}
	if dbPath != "" {
		cfg.Storage.Path = dbPath
	}
	return cfg
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// session is an open store and the service loaded from it.
type session struct {
	cfg   config.Config
	store kv.Store
	svc   *locker.Service
	log   *slog.Logger
}

func openSession(ctx context.Context, m *metrics.Metrics) (*session, error) {
	cfg := loadConfig()
	log := newLogger()

	st, err := kv.Open(ctx, cfg.KVOptions())
	if err != nil {
		return nil, err
	}
	svc := locker.New(locker.Options{
		Store:            st,
		Key:              cfg.Storage.Key,
		Retention:        cfg.Retention,
		AutosaveInterval: cfg.AutosaveInterval,
		VehicleWindow:    cfg.VehicleWindow,
		Timeout:          cfg.Storage.Timeout,
		Log:              log,
		Metrics:          m,
	})
	return &session{cfg: cfg, store: st, svc: svc, log: log}, nil
}

func (s *session) Close() error {
	return s.store.Close()
}

func mustOpen(cmd *cobra.Command) *session {
	s, err := openSession(cmd.Context(), nil)
	if err != nil {
		exitErr("open store", err)
	}
	return s
}

// readPerson reads a person document from path, or stdin when path is "" or "-".
func readPerson(path string, stdin io.Reader) (*manifest.Person, error) {
	if path == "" || path == "-" {
		return manifest.Decode(stdin)
	}
	return manifest.ReadFile(path)
}

func printJSON(cmd *cobra.Command, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
