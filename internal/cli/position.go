package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/evidence-locker/internal/model"
)

func init() {
	posCmd := &cobra.Command{
		Use:   "position",
		Short: "Exit position management",
	}

	setCmd := &cobra.Command{
		Use:   "set <name> <x> <y> <z>",
		Short: "Store where a player left",
		Args:  cobra.ExactArgs(4),
		Run:   runPositionSet,
	}
	getCmd := &cobra.Command{
		Use:   "get <name>",
		Short: "Show a stored exit position",
		Args:  cobra.ExactArgs(1),
		Run:   runPositionGet,
	}

	posCmd.AddCommand(setCmd, getCmd)
	RootCmd.AddCommand(posCmd)
}

func parseVec3(args []string) (model.Vec3, error) {
	var v model.Vec3
	for i, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return v, fmt.Errorf("coordinate %d: %w", i, err)
		}
		v[i] = f
	}
	if !v.Finite() {
		return v, fmt.Errorf("coordinates must be finite: %v", args)
	}
	return v, nil
}

func runPositionSet(cmd *cobra.Command, args []string) {
	pos, err := parseVec3(args[1:])
	if err != nil {
		exitErr("parse position", err)
	}

	s := mustOpen(cmd)
	defer s.Close()

	s.svc.StorePlayerExitPosition(args[0], pos)
	printJSON(cmd, map[string]any{"ok": true, "name": args[0], "position": pos})
}

func runPositionGet(cmd *cobra.Command, args []string) {
	s := mustOpen(cmd)
	defer s.Close()

	pos, ok := s.svc.GetPlayerExitPosition(args[0])
	if !ok {
		exitErr("position", fmt.Errorf("no stored position for %q", args[0]))
	}
	printJSON(cmd, pos)
}
