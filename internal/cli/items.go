package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	legalCmd := &cobra.Command{
		Use:   "legal <player-id>",
		Short: "List items to hand back",
		Args:  cobra.ExactArgs(1),
		Run:   runLegal,
	}
	contrabandCmd := &cobra.Command{
		Use:   "contraband <player-id>",
		Short: "List items kept as record",
		Args:  cobra.ExactArgs(1),
		Run:   runContraband,
	}
	snapshotCmd := &cobra.Command{
		Use:   "snapshot <player-id>",
		Short: "Show the active snapshot",
		Args:  cobra.ExactArgs(1),
		Run:   runSnapshot,
	}
	clearCmd := &cobra.Command{
		Use:   "clear <player-id>",
		Short: "Mark the active snapshot released",
		Args:  cobra.ExactArgs(1),
		Run:   runClear,
	}

	RootCmd.AddCommand(legalCmd, contrabandCmd, snapshotCmd, clearCmd)
}

func runLegal(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()
	printJSON(cmd, s.svc.GetLegalItemsForPlayer(args[0]))
}

func runContraband(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()
	printJSON(cmd, s.svc.GetContrabandItemsForPlayer(args[0]))
}

func runSnapshot(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()

	snap, ok := s.svc.ActiveSnapshot(args[0])
	if !ok {
		exitErr("snapshot", fmt.Errorf("no active snapshot for %q", args[0]))
	}
	printJSON(cmd, snap)
}

func runClear(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()

	s.svc.ClearPlayerSnapshot(args[0])
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"playerId":%q}`+"\n", args[0])
}
