package internal

import (
	"fmt"

	"github.com/goplus/buildc/internal/build"
	"github.com/spf13/cobra"
)

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the compiler commands without running them",
	Args:  cobra.NoArgs,
	RunE:  runPrint,
}

func init() {
	rootCmd.AddCommand(printCmd)
}

func runPrint(cmd *cobra.Command, args []string) error {
	opts, file, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	cfg, err := build.Resolve(opts)
	if err != nil {
		return err
	}
	b := build.NewBuilder(cfg)
	out := cmd.OutOrStdout()
	for _, t := range file.Targets {
		inv, err := b.Command(t.Source, t.Output)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, inv.Line)
	}
	return nil
}
