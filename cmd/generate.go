package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/pathwise/internal/normalize"
	"github.com/abhisek/pathwise/internal/prompt"
	"github.com/abhisek/pathwise/internal/roadmap"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a teaching roadmap and save it",
	Long: `Generate asks the configured LLM for a teaching roadmap, validates it
and saves it under the session name. Repeat --subject to generate several
roadmaps concurrently; each is saved as <session>-<subject>.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		subjects, _ := cmd.Flags().GetStringSlice("subject")
		grade, _ := cmd.Flags().GetString("grade")
		lang, _ := cmd.Flags().GetString("language")
		minNodes, _ := cmd.Flags().GetInt("min-nodes")
		session, _ := cmd.Flags().GetString("session")
		asJSON, _ := cmd.Flags().GetBool("json")

		subjects = uniqueSubjects(subjects)
		if len(subjects) == 0 {
			return errors.New("at least one --subject is required")
		}

		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		gen, err := a.Generator(cmd.Context())
		if err != nil {
			return err
		}

		params := make([]prompt.Params, len(subjects))
		for i, s := range subjects {
			params[i] = prompt.Params{Subject: s, GradeLevel: grade, Language: lang, MinNodes: minNodes}
		}

		out := cmd.OutOrStdout()
		if len(params) == 1 {
			nodes, err := gen.Generate(cmd.Context(), params[0])
			if err != nil {
				return describeGenerateError(err)
			}
			if err := a.Roadmaps.Save(cmd.Context(), session, nodes); err != nil {
				return err
			}
			if asJSON {
				return writeJSON(out, nodes)
			}
			printRoadmap(out, session, nodes)
			return nil
		}

		var failed int
		for _, r := range gen.GenerateAll(cmd.Context(), params) {
			name := session + "-" + r.Params.Subject
			if r.Err != nil {
				failed++
				fmt.Fprintf(out, "%-24s  FAILED  %v\n", name, describeGenerateError(r.Err))
				continue
			}
			if err := a.Roadmaps.Save(cmd.Context(), name, r.Nodes); err != nil {
				return err
			}
			fmt.Fprintf(out, "%-24s  %d nodes\n", name, len(r.Nodes))
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d roadmaps failed", failed, len(params))
		}
		return nil
	},
}

// uniqueSubjects drops repeated and blank subjects, keeping first-seen order.
// Each subject is saved under its own session key, so a repeat would only
// overwrite the earlier result.
func uniqueSubjects(subjects []string) []string {
	seen := make(map[string]bool, len(subjects))
	out := make([]string, 0, len(subjects))
	for _, s := range subjects {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// describeGenerateError expands validation failures into one line per
// field so the user can see what the model got wrong.
func describeGenerateError(err error) error {
	var verr *normalize.ValidationError
	if errors.As(err, &verr) {
		lines := make([]string, 0, len(verr.Errors)+1)
		lines = append(lines, "generated roadmap failed validation:")
		for _, fe := range verr.Errors {
			lines = append(lines, "  "+fe.String())
		}
		return errors.New(strings.Join(lines, "\n"))
	}
	var perr *normalize.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("generated text is not JSON: %w", perr.Err)
	}
	return err
}

// printRoadmap lists nodes in dependency order, indented by depth.
func printRoadmap(w io.Writer, session string, nodes []roadmap.Node) {
	g := roadmap.NewGraph(nodes)

	fmt.Fprintf(w, "Roadmap %q (%d nodes)\n", session, len(nodes))
	fmt.Fprintln(w, strings.Repeat("─", 72))
	for _, n := range g.InOrder() {
		mark := " "
		if n.Completed {
			mark = "✓"
		}
		deps := "-"
		if len(n.Dependencies) > 0 {
			deps = strings.Join(n.Dependencies, ",")
		}
		title := strings.Repeat("  ", min(g.Depth(n.ID), 4)) + n.Title
		fmt.Fprintf(w, "[%s] %-8s  %-40s  %-12s  after: %s\n",
			mark, truncate(n.ID, 8), truncate(title, 40), truncate(n.TimeEstimate, 12), deps)
	}
	for _, warn := range g.Warnings() {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	generateCmd.Flags().StringSliceP("subject", "s", nil, "Subject: computerScience, mathematics, physics, chemistry, biology")
	generateCmd.Flags().StringP("grade", "g", "highSchool", "Grade level: elementary, middleSchool, highSchool, college")
	generateCmd.Flags().StringP("language", "l", "en", "Content language code (e.g. en, sv)")
	generateCmd.Flags().Int("min-nodes", 0, "Minimum number of nodes to request (default 4)")
	generateCmd.Flags().String("session", "default", "Session name to save the roadmap under")
	generateCmd.Flags().Bool("json", false, "Print the roadmap as JSON")
}
