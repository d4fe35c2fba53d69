package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ryantking/repotools/internal/exitcode"
	"github.com/ryantking/repotools/internal/output"
)

// errToolFailed is returned when a tool reports status false.
var errToolFailed = errors.New("tool reported failure")

// NewCallCmd creates the call command.
func NewCallCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "call TOOL [JSON|-]",
		Short: "Invoke a tool with raw JSON input",
		Long: `Invoke a registered tool with raw JSON input and print its JSON output, exactly
as an agent would see it. Pass "-" to read the input from stdin. The command fails when
the tool reports status false.`,
		Example: `  repotools call search_file_or_directory '{"owner":"cli","repo":"go-gh","name":"tableprinter"}'
  echo '{"owner":"cli","repo":"go-gh","paths":["README.md"]}' | repotools call read_files_content -`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := callInput(cmd.InOrStdin(), args[1:])
			if err != nil {
				return exitcode.New(exitcode.ExitNoInput, err)
			}

			registry, _, err := opts.registry(cmd)
			if err != nil {
				return err
			}

			out, err := registry.ExecuteTool(cmd.Context(), args[0], input)
			if err != nil {
				return exitcode.New(exitcode.ExitUsage, err)
			}
			if err := output.WriteJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}

			if status := out.Outcome(); !status.Status {
				return fmt.Errorf("%w: %s: %s", errToolFailed, args[0], status.StatusMsg)
			}
			return nil
		},
	}
	return cmd
}

// callInput returns the tool input from args or, for "-", from stdin.
func callInput(stdin io.Reader, args []string) (json.RawMessage, error) {
	if len(args) == 0 {
		return json.RawMessage("{}"), nil
	}
	if args[0] != "-" {
		return json.RawMessage(args[0]), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read input from stdin: %w", err)
	}
	return data, nil
}
