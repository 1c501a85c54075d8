// Command gepa-cli runs prompt optimization from a YAML configuration file.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:   "gepa-cli",
		Short: "Reflective evolutionary prompt optimization",
		Long: `gepa-cli evolves the text components of a prompt candidate by
reflecting on execution failures with a language model and keeping
mutations that improve task performance across multiple objectives.`,
		SilenceUsage: true,
	}

	root.AddCommand(newRunCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
