package cli

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/agent"
	"github.com/ryantking/repotools/internal/output"
	"github.com/ryantking/repotools/internal/repotree"
)

// NewTreeCmd creates the tree command.
func NewTreeCmd(opts *rootOptions) *cobra.Command {
	var (
		recursive  bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "tree OWNER/REPO [PATH]",
		Short: "List a directory of a repository",
		Long: `List the files and directories under PATH (the repository root by default).
With --recursive the whole subtree is shown, rebuilt from one recursive listing of the
default branch. Use --json for the read_project_structure tool output.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := opts.parseRepo(args[0])
			if err != nil {
				return err
			}
			var dir string
			if len(args) == 2 {
				dir = args[1]
			}

			tools, err := opts.repoTools(cmd)
			if err != nil {
				return err
			}

			out, err := tools.ReadProjectStructure(cmd.Context(), agent.ProjectStructureInput{
				Owner:     repo.Owner,
				Repo:      repo.Name,
				Path:      dir,
				Recursion: recursive,
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
			return writeTree(cmd.OutOrStdout(), out.Children)
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "List the full subtree")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// writeTree prints nodes as an indented listing, directories suffixed with "/".
func writeTree(w io.Writer, nodes []*repotree.Node) error {
	if len(nodes) == 0 {
		_, err := fmt.Fprintln(w, "No entries found.")
		return err
	}

	var b strings.Builder
	repotree.Walk(nodes, func(n *repotree.Node, depth int) bool {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(path.Base(n.Path))
		switch {
		case n.Kind == repotree.Directory:
			b.WriteString("/")
		case n.Size != nil:
			fmt.Fprintf(&b, " (%d bytes)", *n.Size)
		}
		b.WriteString("\n")
		return true
	})
	_, err := io.WriteString(w, b.String())
	return err
}
