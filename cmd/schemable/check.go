package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemable/pkg/dsl"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check every schema document for consistency",
	Long: `Loads every document in the directory and reports dangling references, unknown
predicates, malformed nodes and unguarded recursion.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := loadCatalog(cmd)
		if err != nil {
			errs := dsl.ValidationErrors(err)
			if len(errs) == 0 {
				return err
			}
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", e)
			}
			return fmt.Errorf("%d problem(s) found", len(errs))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d schema(s) are valid! ✅\n", len(c.Names()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
