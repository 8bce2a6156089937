package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/mcp-tools/internal/git"
	"github.com/RobinCoderZhao/mcp-tools/pkg/gitdiff"
)

func analyzeCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "analyze [FILE|-]",
		Short: "Statistics of a git diff",
		Long:  "Analyze git diff output from FILE or stdin. Without arguments the staged diff of the current repository is used, falling back to the working tree diff.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var diff string
			if len(args) == 1 {
				in, err := readInput(cmd.InOrStdin(), args[0])
				if err != nil {
					return err
				}
				diff = in
			} else {
				repo, err := git.OpenCurrent()
				if err != nil {
					return err
				}
				if diff, err = repo.ChangedDiff(cmd.Context()); err != nil {
					return fmt.Errorf("get diff: %w", err)
				}
			}
			if strings.TrimSpace(diff) == "" {
				fmt.Fprintln(cmd.ErrOrStderr(), "⚠️  No changes detected.")
				return nil
			}

			analysis := gitdiff.Analyze(diff)
			if outputJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(analysis)
			}
			printAnalysis(cmd.OutOrStdout(), analysis)
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output JSON")
	return cmd
}

func printAnalysis(w io.Writer, a gitdiff.Analysis) {
	s := a.Summary
	fmt.Fprintf(w, "📝 %d files changed, +%d -%d (net %+d)\n", s.FilesChanged, s.TotalAdditions, s.TotalDeletions, s.NetChange)
	fmt.Fprintf(w, "   new: %d  deleted: %d  renamed: %d\n\n", s.NewFiles, s.DeletedFiles, s.RenamedFiles)

	for _, f := range a.Files {
		mark := " "
		switch {
		case f.IsNew:
			mark = "A"
		case f.IsDeleted:
			mark = "D"
		case f.IsRenamed:
			mark = "R"
		}
		fmt.Fprintf(w, "  %s %-40s +%-5d -%d\n", mark, f.File, f.Additions, f.Deletions)
	}

	fmt.Fprintln(w)
	for _, ext := range a.Extensions() {
		st := a.ByExtension[ext]
		fmt.Fprintf(w, "  %-10s %3d files  +%-5d -%d\n", ext, st.Files, st.Additions, st.Deletions)
	}
}
