package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the effective QC rules as JSON",
		Long: `Print the QC rules after layering the defaults, the rules file and
BSRQC_RULES__* environment variables, and validating the result.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, rules, err := loadSettings()
			if err != nil {
				return err
			}
			data, err := rules.JSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
}
