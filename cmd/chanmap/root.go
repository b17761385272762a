package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chanmap/internal/convert"
)

// usageError carries a message that is printed verbatim.
type usageError struct {
	msg string
}

func (e usageError) Error() string { return e.msg }

var errNoMetaFile = usageError{msg: "Please provide the path to the meta file."}

func metaFileArg(cmd *cobra.Command, args []string) error {
	switch len(args) {
	case 0:
		return errNoMetaFile
	case 1:
		return nil
	default:
		return usageError{msg: fmt.Sprintf("expected one meta file, got %d arguments", len(args))}
	}
}

func newRootCommand() *cobra.Command {
	var configFlag string
	var verbose bool
	var outputFlag string
	var nameFlag string
	var strict bool

	ctx := newCommandContext(&configFlag, &verbose)

	rootCmd := &cobra.Command{
		Use:   "chanmap <meta-file>",
		Short: "Convert SpikeGLX metadata into a Kilosort channel map",
		Long: `chanmap reads the snsApLfSy and snsGeomMap entries of a SpikeGLX .meta file
and writes <name>_kilosortChanMap.mat with the chanMap, chanMap0ind,
connected, name, xcoords, ycoords and kcoords variables Kilosort expects.`,
		Args:          metaFileArg,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			var opts []convert.Option
			if store := ctx.openHistory(); store != nil {
				defer store.Close()
				opts = append(opts, convert.WithRecorder(store))
			}

			result, err := convert.New(cfg, logger, opts...).Convert(cmd.Context(), convert.Request{
				MetaPath:   args[0],
				OutputPath: outputFlag,
				BaseName:   nameFlag,
				Strict:     strict,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s in %s\n", result.OutputFile(), result.OutputDir())
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug detail to stderr")
	rootCmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Write the channel map to this path instead of <dir>/<name><suffix>")
	rootCmd.Flags().StringVar(&nameFlag, "name", "", "Override the name stored in the file (defaults to the meta file stem)")
	rootCmd.Flags().BoolVar(&strict, "strict", false, "Reject metadata files with duplicate keys")

	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newVerifyCommand())
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
