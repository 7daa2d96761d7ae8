package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/schemable/internal/presentation/tui"
	"github.com/aretw0/schemable/pkg/catalog"
	"github.com/aretw0/schemable/pkg/printer"
)

var printCmd = &cobra.Command{
	Use:   "print <schema>",
	Short: "Print a schema as type text",
	Long:  `Prints the TypeScript-like type of a schema. On a terminal the output is rendered as markdown.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, err := loadCatalog(cmd)
		if err != nil {
			return err
		}
		name := args[0]
		doc, err := c.Document(name)
		if err != nil {
			return err
		}
		p, err := catalog.Compile(c, name, printer.Schemable)
		if err != nil {
			return err
		}

		plain, _ := cmd.Flags().GetBool("plain")
		if plain || !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(cmd.OutOrStdout(), printer.Print(p))
			return nil
		}

		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		out, err := render(printer.Markdown(name, doc.Description, p))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
	printCmd.Flags().Bool("plain", false, "Print plain text even on a terminal")
}
