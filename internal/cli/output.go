package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var errInteractiveJSON = errors.New("--interactive cannot be combined with --json")

// render prints v as indented JSON under --json, otherwise the text the
// formatter produced.
func render(cmd *cobra.Command, opts *rootOptions, v any, text func() string) error {
	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprint(out, text())
	return err
}
