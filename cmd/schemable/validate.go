package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/schemable/pkg/catalog"
	"github.com/aretw0/schemable/pkg/decoder"
	"github.com/aretw0/schemable/pkg/dsl"
)

var validateCmd = &cobra.Command{
	Use:   "validate <schema> <data-file>",
	Short: "Validate a data file against a schema",
	Long:  `Decodes a YAML or JSON file (chosen by extension) with the schema and reports every failure.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, logger, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		d, err := catalog.Compile(c, args[0], decoder.Schemable)
		if err != nil {
			return err
		}
		value, err := readData(args[1])
		if err != nil {
			return err
		}

		if _, err := d.Decode(value); err != nil {
			errs := decoder.AsErrors(err)
			for _, e := range errs {
				fmt.Fprintf(cmd.ErrOrStderr(), "  - %v\n", e)
			}
			logger.Debug("validation failed", "schema", args[0], "file", args[1], "errors", len(errs))
			return fmt.Errorf("%s does not match %s", args[1], args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s matches %s ✅\n", args[1], args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func readData(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}
	var value any
	switch dsl.FormatOf(path) {
	case dsl.FormatJSON:
		err = json.Unmarshal(data, &value)
	default:
		err = yaml.Unmarshal(data, &value)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return value, nil
}
