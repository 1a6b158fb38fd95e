package internal

import (
	"fmt"
	"os"

	"github.com/gookit/color"
	"github.com/goplus/buildc/internal/build"
	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "buildc",
	Short: "buildc compiles a C project with the host's compiler",
	Long: `buildc detects the host platform and C compiler, creates the binary folder
and compiles every target of the project file, one compiler invocation at a time.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.SetFlags(log.Ldefault &^ log.LstdFlags)
		if verbose {
			log.SetOutputLevel(log.Ldebug)
		} else {
			log.SetOutputLevel(log.Linfo)
		}
	},
	RunE: runBuild,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
}

// Execute runs the command line and returns the process exit status.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() int {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprint("buildc: "+err.Error()))
	}
	return build.ExitCode(err)
}
