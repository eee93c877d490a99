package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	saveCmd := &cobra.Command{
		Use:   "save",
		Short: "Save the state immediately",
		Long:  "Force a save. Loading applies the retention sweep, so this also persists any purge.",
		Run:   runSave,
	}

	wipeCmd := &cobra.Command{
		Use:   "wipe",
		Short: "Delete every snapshot and exit position (irreversible)",
		Run:   runWipe,
	}
	wipeCmd.Flags().Bool("yes", false, "Confirm the wipe")

	RootCmd.AddCommand(saveCmd, wipeCmd)
}

func runSave(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()

	if err := s.svc.ForceSave(); err != nil {
		exitErr("save", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), `{"ok":true}`)
}

func runWipe(cmd *cobra.Command, args []string) {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		exitErr("wipe", fmt.Errorf("refusing to wipe without --yes"))
	}

	s := mustOpen(cmd)
	defer s.Close()

	total := s.svc.Stats().TotalSnapshots
	s.svc.ClearAllData()
	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"removed":%d}`+"\n", total)
}
