package cli

import (
	"github.com/spf13/cobra"

	"github.com/rcliao/evidence-locker/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export snapshots as JSON",
		Long:  "Export every stored snapshot, released ones included. Filter by player with -p or to active ones with --active.",
		Run:   runExport,
	}

	cmd.Flags().StringP("player", "p", "", "Filter by player id")
	cmd.Flags().Bool("active", false, "Only active snapshots")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	player, _ := cmd.Flags().GetString("player")
	activeOnly, _ := cmd.Flags().GetBool("active")

	s := mustOpen(cmd)
	defer s.Close()

	printJSON(cmd, filterSnapshots(s.svc.Snapshots(), player, activeOnly))
}

func filterSnapshots(all []model.Snapshot, player string, activeOnly bool) []model.Snapshot {
	out := make([]model.Snapshot, 0, len(all))
	for _, snap := range all {
		if player != "" && snap.PlayerID != player {
			continue
		}
		if activeOnly && !snap.IsActive {
			continue
		}
		out = append(out, snap)
	}
	return out
}
