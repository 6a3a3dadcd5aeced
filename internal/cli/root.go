package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/RLTree/ArcadiaCoach-sub000/internal/app"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/cli/formatter"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/config"
	"github.com/RLTree/ArcadiaCoach-sub000/internal/logging"
)

// annotationNoWire marks commands that only need the configuration.
const annotationNoWire = "arcadia/no-wire"

// App holds the use cases and settings every command runs against.
type App struct {
	Config config.Config
	Log    *logging.Logger
	Plan   app.PlanUseCase
	Import app.ImportLearnerUseCase

	// Close releases the profile store. May be nil.
	Close func() error
}

// WireFunc builds an App from the effective configuration. It runs once,
// after flags are parsed, so --config can point it at another store.
type WireFunc func(cfg config.Config) (*App, error)

type rootOptions struct {
	configPath string
	noColor    bool
	jsonOut    bool

	cfg config.Config
	app *App
}

// Run executes the root command and releases whatever the wire step opened,
// including when the command fails.
func Run(ctx context.Context, wire WireFunc, args []string) error {
	root, opts := newRootCmd(wire)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return errors.Join(err, opts.close())
}

// NewRootCmd creates the top-level "arcadia" command.
func NewRootCmd(wire WireFunc) *cobra.Command {
	root, _ := newRootCmd(wire)
	return root
}

func newRootCmd(wire WireFunc) (*cobra.Command, *rootOptions) {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "arcadia",
		Short:         "Curriculum scheduler with milestone gating",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			formatter.UseColor(!opts.noColor && !opts.jsonOut && isTerminal(cmd.OutOrStdout()))

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			if cmd.Annotations[annotationNoWire] == "true" {
				return nil
			}
			a, err := wire(cfg)
			if err != nil {
				return err
			}
			opts.app = a
			return nil
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("ARCADIA_CONFIG"), "Path to a YAML config file")
	root.PersistentFlags().BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(
		newPlanCmd(opts),
		newSliceCmd(opts),
		newAdjustCmd(opts),
		newCompleteCmd(opts),
		newImportCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)

	return root, opts
}

func (o *rootOptions) close() error {
	if o.app == nil || o.app.Close == nil {
		return nil
	}
	err := o.app.Close()
	o.app = nil
	return err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
