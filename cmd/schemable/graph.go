package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemable/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <schema>",
	Short: "Export the reference graph of a schema",
	Long:  `Outputs a Mermaid diagram (graph TD) of the definitions of a schema document and the references between them.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		doc, err := c.Document(args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(doc))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
