package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/projects"
	"github.com/abhisek/pathwise/internal/roadmap"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects adopted from roadmap ideas",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <node-id>",
	Short: "Create a draft project from one of a node's project ideas",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		session, _ := cmd.Flags().GetString("session")
		idea, _ := cmd.Flags().GetInt("idea")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		nodes, err := a.Roadmaps.Load(cmd.Context(), session)
		if err != nil {
			return err
		}
		node, _ := roadmap.Find(nodes, args[0])
		if node == nil {
			return fmt.Errorf("%w: %q", roadmap.ErrNodeNotFound, args[0])
		}

		p, err := a.Projects.CreateDraft(cmd.Context(), *node, idea)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created draft %s: %s\n", p.ID, p.Title)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		all, err := a.Projects.List(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(all) == 0 {
			fmt.Fprintln(out, "No projects yet.")
			return nil
		}

		fmt.Fprintf(out, "%-36s  %-9s  %-8s  %-6s  %s\n", "ID", "Status", "Node", "Level", "Title")
		fmt.Fprintln(out, strings.Repeat("─", 100))
		for _, p := range all {
			if status != "" && string(p.Status) != status {
				continue
			}
			fmt.Fprintf(out, "%-36s  %-9s  %-8s  %-6s  %s\n",
				p.ID, p.Status, truncate(p.SourceNode, 8), p.Difficulty, p.Title)
		}
		return nil
	},
}

// projectTransitionCmd builds a command that moves one project to a new
// status.
func projectTransitionCmd(use, short string, move func(*projects.Board, context.Context, string) (*projects.Project, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <project-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd)
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := move(a.Projects, cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", p.ID, p.Status)
			return nil
		},
	}
}

var (
	projectActivateCmd = projectTransitionCmd("activate", "Start working on a draft project", (*projects.Board).MarkActive)
	projectCompleteCmd = projectTransitionCmd("complete", "Mark an active project completed", (*projects.Board).MarkCompleted)
)

var projectUpdateCmd = &cobra.Command{
	Use:   "update <project-id>",
	Short: "Edit a project's idea fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		patch, err := patchFromFlags(cmd)
		if err != nil {
			return err
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Projects.Update(cmd.Context(), args[0], patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s\n", p.ID, p.Title)
		return nil
	},
}

func patchFromFlags(cmd *cobra.Command) (projects.Patch, error) {
	var patch projects.Patch
	f := cmd.Flags()

	if f.Changed("title") {
		v, _ := f.GetString("title")
		patch.Title = &v
	}
	if f.Changed("description") {
		v, _ := f.GetString("description")
		patch.Description = &v
	}
	if f.Changed("difficulty") {
		v, _ := f.GetString("difficulty")
		d := roadmap.Difficulty(v)
		switch d {
		case roadmap.DifficultyEasy, roadmap.DifficultyMedium, roadmap.DifficultyHard:
		default:
			return patch, fmt.Errorf("invalid difficulty %q", v)
		}
		patch.Difficulty = &d
	}
	if f.Changed("group-size") {
		v, _ := f.GetString("group-size")
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return patch, fmt.Errorf("invalid group size %q", v)
		}
		patch.GroupSize = &n
	}
	if f.Changed("duration") {
		v, _ := f.GetString("duration")
		patch.EstimatedDuration = &v
	}
	if f.Changed("material") {
		patch.Materials, _ = f.GetStringSlice("material")
	}
	return patch, nil
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <project-id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Projects.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().String("session", "default", "Session whose roadmap holds the node")
	projectCreateCmd.Flags().Int("idea", 0, "Index of the project idea within the node")
	projectListCmd.Flags().String("status", "", "Filter by status: draft, active, completed")

	projectUpdateCmd.Flags().String("title", "", "New title")
	projectUpdateCmd.Flags().String("description", "", "New description")
	projectUpdateCmd.Flags().String("difficulty", "", "easy, medium or hard")
	projectUpdateCmd.Flags().String("group-size", "", "Number of students per group")
	projectUpdateCmd.Flags().String("duration", "", "Estimated duration")
	projectUpdateCmd.Flags().StringSlice("material", nil, "Replace the materials list")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectActivateCmd)
	projectCmd.AddCommand(projectCompleteCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectDeleteCmd)
}
