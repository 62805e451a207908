package cmd

import (
	"gprepo/pkg/combine"
	"gprepo/pkg/logging"
	"gprepo/pkg/version"

	"github.com/spf13/cobra"
)

var (
	opts  combine.Options
	debug bool
)

// RootCmd combines the repository when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:   "gprepo",
	Short: "gprepo combines a git repository into a single prompt",
	Long: `gprepo walks a git working tree and writes its text files as one stream,
each file framed by @@@@<path>@@@@ and the stream terminated by @@@@END@@@@,
ready to be used as language model context.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			return logging.Setup(true, "gprepo", version.Version)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return combine.Run(opts, logging.Logger)
	},
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	flags := RootCmd.Flags()
	flags.StringVarP(&opts.Output, "output", "o", "", "Output to path (default: stdout)")
	flags.StringVarP(&opts.RepoPath, "repo-path", "r", "", "Path to the repository (default: current directory)")
	flags.StringVarP(&opts.Preamble, "preamble", "p", "", "Optional path to the preamble file")
	flags.StringArrayVarP(&opts.Excludes, "exclude", "e", nil, "File paths to exclude (supports glob patterns)")
	flags.StringArrayVarP(&opts.Includes, "include", "i", nil, "Only process these specific paths")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file (default: <repo>/"+combine.ConfigFileName+" if present)")
	flags.StringVarP(&opts.Tree, "tree", "t", "", "Also write a tree of the combined files to this path")
	flags.IntVarP(&opts.Workers, "workers", "w", 0, "Files read concurrently (0 or 1: sequential)")

	RootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}
