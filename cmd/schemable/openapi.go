package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/schemable"
	"github.com/aretw0/schemable/pkg/catalog"
	"github.com/aretw0/schemable/pkg/openapi"
)

var openapiCmd = &cobra.Command{
	Use:   "openapi [schema...]",
	Short: "Export schemas as OpenAPI components",
	Long:  `Writes an OpenAPI 3.0 document whose components hold the named schemas, or every schema when none is named.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		title, _ := cmd.Flags().GetString("title")

		names := args
		if len(names) == 0 {
			names = c.Names()
		}
		schemas := make(map[string]openapi.Schema, len(names))
		for _, name := range names {
			s, err := catalog.Compile(c, name, openapi.Schemable)
			if err != nil {
				return err
			}
			schemas[name] = s
		}

		data, err := openapi.Spec(title, schemable.Version, schemas, format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(openapiCmd)
	openapiCmd.Flags().StringP("format", "f", "yaml", "Output format: yaml or json")
	openapiCmd.Flags().String("title", "schemable", "Title of the OpenAPI document")
}
