package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/agent"
	"github.com/ryantking/repotools/internal/output"
)

// NewReadCmd creates the read command.
func NewReadCmd(opts *rootOptions) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "read OWNER/REPO PATH...",
		Short: "Print the raw contents of files",
		Long: `Print the raw contents of one or more files from the default branch.
Nothing is printed unless every file can be read. Use --json for the read_files_content
tool output.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := opts.parseRepo(args[0])
			if err != nil {
				return err
			}

			tools, err := opts.repoTools(cmd)
			if err != nil {
				return err
			}

			out, err := tools.ReadFilesContent(cmd.Context(), agent.FilesContentInput{
				Owner: repo.Owner,
				Repo:  repo.Name,
				Paths: args[1:],
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
			return writeFiles(cmd.OutOrStdout(), out.Files)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

// writeFiles prints file contents; with several files each gets a header.
func writeFiles(w io.Writer, files []agent.FileContent) error {
	var b strings.Builder
	for i, f := range files {
		if len(files) > 1 {
			if i > 0 {
				b.WriteString("\n")
			}
			fmt.Fprintf(&b, "==> %s <==\n", f.Path)
		}
		b.WriteString(f.Content)
		if !strings.HasSuffix(f.Content, "\n") {
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}
