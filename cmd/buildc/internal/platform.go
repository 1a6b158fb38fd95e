package internal

import (
	"fmt"

	"github.com/goplus/buildc/internal/build"
	"github.com/goplus/buildc/internal/env"
	"github.com/goplus/buildc/platform"
	"github.com/spf13/cobra"
)

var platformCmd = &cobra.Command{
	Use:   "platform",
	Short: "Print the platform tag",
	Long:  `Platform prints the "<os>-<arch>" tag binaries are named after.`,
	Args:  cobra.NoArgs,
	RunE:  runPlatform,
}

func init() {
	rootCmd.AddCommand(platformCmd)
}

func runPlatform(cmd *cobra.Command, args []string) error {
	opts, _, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	sig := platform.HostSignals()
	if opts.Target != nil {
		sig = *opts.Target
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, platform.Detect(sig))
	if !verbose {
		return nil
	}

	if kernel := env.HostKernel(); kernel != "" {
		fmt.Fprintln(out, "kernel:  ", kernel)
	}
	// A missing compiler does not change the tag.
	if cfg, err := build.Resolve(opts); err != nil {
		fmt.Fprintln(out, "compiler:", err)
	} else {
		fmt.Fprintln(out, "compiler:", cfg.Toolchain)
	}
	return nil
}
