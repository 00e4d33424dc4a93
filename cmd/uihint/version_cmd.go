package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/uihint/internal/version"
)

func newVersionCmd() *cobra.Command {
	var atLeast string
	cmd := &cobra.Command{
		Use:          "version",
		Short:        "Print build information",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if atLeast != "" {
				if !version.IsValid(atLeast) {
					return errors.Errorf("invalid version %q", atLeast)
				}
				if !version.IsVersionGreaterOrEqualThan(version.Version, atLeast) {
					return errors.Errorf("version %s is older than %s", version.Version, atLeast)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.StringFull())
			return nil
		},
	}
	cmd.Flags().StringVar(&atLeast, "at-least", "", "fail unless the build is at least this version")
	return cmd
}
