package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemable/pkg/arbitrary"
	"github.com/aretw0/schemable/pkg/catalog"
)

var sampleCmd = &cobra.Command{
	Use:   "sample <schema>",
	Short: "Generate example values of a schema",
	Long:  `Generates pseudo-random values of a schema, one JSON document per line. The same seed gives the same values.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		seed, _ := cmd.Flags().GetUint64("seed")
		count, _ := cmd.Flags().GetInt("count")
		if count < 1 {
			return fmt.Errorf("count must be positive, got %d", count)
		}

		a, err := catalog.Compile(c, args[0], arbitrary.Schemable)
		if err != nil {
			return err
		}
		values, err := arbitrary.SampleN(a, seed, count)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		for _, v := range values {
			if err := enc.Encode(v); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sampleCmd)
	sampleCmd.Flags().Uint64("seed", 0, "Random seed")
	sampleCmd.Flags().IntP("count", "n", 1, "Number of values")
}
