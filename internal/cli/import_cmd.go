package cli

import (
	"github.com/spf13/cobra"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/cli/formatter"
)

func newImportCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create or update a learner profile from a YAML or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.app.Import.ImportLearner(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return render(cmd, opts, res, func() string { return formatter.FormatImport(res) })
		},
	}
}
