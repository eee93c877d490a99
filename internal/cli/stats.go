package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rcliao/evidence-locker/internal/kv"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show locker and database statistics",
		Run:   runStats,
	}
	cmd.Flags().Bool("text", false, "Print the one-line summary only")

	historyCmd := &cobra.Command{
		Use:   "revisions",
		Short: "List retained revisions of the state slot (SQLite only)",
		Run:   runRevisions,
	}

	RootCmd.AddCommand(cmd, historyCmd)
}

func runStats(cmd *cobra.Command, args []string) {
	text, _ := cmd.Flags().GetBool("text")

	s := mustOpen(cmd)
	defer s.Close()

	if text {
		fmt.Fprintln(cmd.OutOrStdout(), s.svc.GetDataStats())
		return
	}

	out := map[string]any{
		"backend": s.cfg.Storage.Backend,
		"locker":  s.svc.Stats(),
	}
	if db, ok := s.store.(*kv.SQLiteStore); ok {
		st, err := db.Stats(cmd.Context())
		if err != nil {
			exitErr("stats", err)
		}
		out["database"] = st
	}
	printJSON(cmd, out)
}

func runRevisions(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()

	db, ok := s.store.(*kv.SQLiteStore)
	if !ok {
		exitErr("revisions", fmt.Errorf("backend %q keeps no revisions", s.cfg.Storage.Backend))
	}
	revs, err := db.Revisions(cmd.Context(), s.cfg.Storage.Key)
	if err != nil {
		exitErr("revisions", err)
	}
	printJSON(cmd, revs)
}
