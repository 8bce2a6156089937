package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/RobinCoderZhao/mcp-tools/internal/git"
	"github.com/RobinCoderZhao/mcp-tools/pkg/differ"
)

func diffCmd() *cobra.Command {
	var (
		outputJSON bool
		noColor    bool
		rev        string
	)

	cmd := &cobra.Command{
		Use:   "diff OLD NEW | diff --rev REV FILE",
		Short: "Line diff of two files",
		Long:  "Compare two files line by line and print every line prefixed with ' ', '+' or '-'. Use - to read one side from stdin.",
		Args: func(cmd *cobra.Command, args []string) error {
			if rev != "" {
				return cobra.ExactArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			original, modified, err := diffInputs(cmd.Context(), cmd.InOrStdin(), rev, args)
			if err != nil {
				return err
			}

			result := differ.TextDiff(original, modified)
			out := cmd.OutOrStdout()
			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			if noColor {
				color.NoColor = true
			}
			printDiff(out, result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output JSON")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVar(&rev, "rev", "", "compare FILE at git revision REV against the working copy")
	return cmd
}

func diffInputs(ctx context.Context, stdin io.Reader, rev string, args []string) (string, string, error) {
	if rev != "" {
		repo, err := git.OpenCurrent()
		if err != nil {
			return "", "", err
		}
		rel, err := repo.RelPath(args[0])
		if err != nil {
			return "", "", err
		}
		original, err := repo.ShowFile(ctx, rev, rel)
		if err != nil {
			return "", "", err
		}
		modified, err := readInput(stdin, args[0])
		return original, modified, err
	}

	if args[0] == "-" && args[1] == "-" {
		return "", "", fmt.Errorf("only one side can be read from stdin")
	}
	original, err := readInput(stdin, args[0])
	if err != nil {
		return "", "", err
	}
	modified, err := readInput(stdin, args[1])
	return original, modified, err
}

func readInput(stdin io.Reader, name string) (string, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	return string(data), nil
}

func printDiff(w io.Writer, result differ.Result) {
	added := color.New(color.FgGreen)
	removed := color.New(color.FgRed)

	for _, l := range result.Lines {
		switch l.Kind {
		case differ.Added:
			added.Fprintln(w, l.String())
		case differ.Removed:
			removed.Fprintln(w, l.String())
		default:
			fmt.Fprintln(w, l.String())
		}
	}

	s := result.Summary
	fmt.Fprintf(w, "\n📊 %s (%d → %d lines)\n", result.Describe(), s.TotalOriginal, s.TotalModified)
}
