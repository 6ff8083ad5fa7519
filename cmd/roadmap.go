package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/roadmap"
)

var roadmapCmd = &cobra.Command{
	Use:   "roadmap",
	Short: "Inspect and update saved roadmaps",
}

var roadmapShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved roadmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		asJSON, _ := cmd.Flags().GetBool("json")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		nodes, err := a.Roadmaps.Load(cmd.Context(), session)
		if err != nil {
			return err
		}
		if asJSON {
			return writeJSON(cmd.OutOrStdout(), nodes)
		}
		printRoadmap(cmd.OutOrStdout(), session, nodes)
		return nil
	},
}

var roadmapProgressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Show completion, level and XP for the saved roadmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		nodes, err := a.Roadmaps.Load(cmd.Context(), session)
		if err != nil {
			return err
		}
		p := roadmap.ComputeProgress(nodes)

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Completed: %d/%d (%d%%)\n", len(p.CompletedNodes), p.TotalNodes, p.Percent)
		fmt.Fprintf(out, "Level:     %d\n", p.CurrentLevel)
		fmt.Fprintf(out, "XP:        %d\n", p.XPPoints)
		if len(p.NextUp) > 0 {
			fmt.Fprintln(out, "Next up:")
			for _, id := range p.NextUp {
				n, _ := roadmap.Find(nodes, id)
				fmt.Fprintf(out, "  %s  %s\n", id, n.Title)
			}
		}
		return nil
	},
}

var roadmapCompleteCmd = &cobra.Command{
	Use:   "complete <node-id>",
	Short: "Mark a node completed (or not, with --undo)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		undo, _ := cmd.Flags().GetBool("undo")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		nodes, err := a.Roadmaps.SetCompleted(cmd.Context(), session, args[0], !undo)
		if err != nil {
			return err
		}
		p := roadmap.ComputeProgress(nodes)
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d complete, level %d, %d XP\n",
			args[0], len(p.CompletedNodes), p.TotalNodes, p.CurrentLevel, p.XPPoints)
		return nil
	},
}

var roadmapResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the saved roadmap",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Roadmaps.Delete(cmd.Context(), session); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Roadmap %q deleted.\n", session)
		return nil
	},
}

func init() {
	roadmapCmd.PersistentFlags().String("session", "default", "Session name")
	roadmapShowCmd.Flags().Bool("json", false, "Print the roadmap as JSON")
	roadmapCompleteCmd.Flags().Bool("undo", false, "Mark the node not completed")

	roadmapCmd.AddCommand(roadmapShowCmd)
	roadmapCmd.AddCommand(roadmapProgressCmd)
	roadmapCmd.AddCommand(roadmapCompleteCmd)
	roadmapCmd.AddCommand(roadmapResetCmd)
}
