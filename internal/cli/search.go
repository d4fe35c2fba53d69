package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/cli/go-gh/v2/pkg/tableprinter"
	"github.com/cli/go-gh/v2/pkg/term"
	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/agent"
	"github.com/ryantking/repotools/internal/output"
	"github.com/ryantking/repotools/internal/repotree"
)

// NewSearchCmd creates the search command.
func NewSearchCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search OWNER/REPO NAME",
		Short: "Find files and directories whose path contains NAME",
		Long: `Find files and directories on the default branch whose path contains NAME.
Matching is case-sensitive and NAME may match part of a path segment. An empty NAME
lists everything. Use --json for the search_file_or_directory tool output.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := opts.parseRepo(args[0])
			if err != nil {
				return err
			}

			tools, err := opts.repoTools(cmd)
			if err != nil {
				return err
			}

			out, err := tools.SearchFileOrDirectory(cmd.Context(), agent.SearchInput{
				Owner: repo.Owner,
				Repo:  repo.Name,
				Name:  args[1],
			})
			if err != nil {
				if jsonOutput {
					_ = output.WriteJSON(cmd.OutOrStdout(), agent.Failure(err)) //nolint:errcheck // error is returned below
				}
				return err
			}

			if jsonOutput {
				return output.WriteJSON(cmd.OutOrStdout(), out)
			}
			return writeSearchResults(cmd.OutOrStdout(), out.Result)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// writeSearchResults prints one TYPE/PATH row per hit. Headers and column
// alignment are only used when writing to a terminal.
func writeSearchResults(w io.Writer, results []repotree.SearchResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No matches found.")
		return err
	}

	tp := newTablePrinter(w)
	tp.AddHeader([]string{"TYPE", "PATH"})
	for _, r := range results {
		tp.AddField(r.Kind.String())
		tp.AddField(r.Path)
		tp.EndRow()
	}
	return tp.Render()
}

func newTablePrinter(w io.Writer) tableprinter.TablePrinter {
	t := term.FromEnv()
	isTTY := w == io.Writer(os.Stdout) && t.IsTerminalOutput()

	width := 80
	if isTTY {
		if tw, _, err := t.Size(); err == nil {
			width = tw
		}
	}
	return tableprinter.New(w, isTTY, width)
}
