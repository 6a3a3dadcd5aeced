package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:         "config",
		Short:       "Print the effective configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationNoWire: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := opts.cfg
			if cfg.LLM.APIKey != "" {
				cfg.LLM.APIKey = "[REDACTED]"
			}
			out, err := yaml.Marshal(cfg)
			if err != nil {
				return err
			}
			return render(cmd, opts, cfg, func() string { return string(out) })
		},
	}
}
