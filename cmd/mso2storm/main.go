package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mikkopa/mso-rew-converter/internal/config"
	"github.com/mikkopa/mso-rew-converter/internal/convert"
	"github.com/mikkopa/mso-rew-converter/internal/mso"
	"github.com/mikkopa/mso-rew-converter/internal/storm"
)

func main() {
	// Optional .env next to the binary; absence is fine.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	var (
		equaliser     string
		qType         string
		includeTypes  []string
		excludeTypes  []string
		combineShared bool
		verbose       bool
	)

	cmd := &cobra.Command{
		Use:   "mso2storm <input-file> <output-folder>",
		Short: "Convert MSO filter exports to StormAudio format",
		Long: `Convert MSO room-correction filter exports to StormAudio import files.

Supports Parametric EQ and All-Pass filters. Gain Block and Delay Block
filters are ignored by default as they have no StormAudio equivalent.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch mso.QType(qType) {
			case mso.QTypeRBJ, mso.QTypeClassic:
			default:
				return fmt.Errorf("--q-type must be %q or %q", mso.QTypeRBJ, mso.QTypeClassic)
			}

			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			log := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			opts := convert.Options{
				InputFile:            args[0],
				OutputDir:            args[1],
				Equaliser:            equaliser,
				QType:                mso.QType(qType),
				IncludeTypes:         includeTypes,
				ExcludeTypes:         excludeTypes,
				CombineShared:        combineShared,
				PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
			}

			sum, err := convert.Run(opts, log)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}

			printSummary(cmd.OutOrStdout(), opts, sum)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&equaliser, "equaliser", cfg.Equaliser, "equaliser name written to the output files")
	flags.StringVar(&qType, "q-type", cfg.QType, "Q value type to use: rbj or classic")
	flags.StringSliceVar(&includeTypes, "include-types", cfg.IncludeTypes, "filter types to include")
	flags.StringSliceVar(&excludeTypes, "exclude-types", cfg.ExcludeTypes, "filter types to exclude")
	flags.BoolVar(&combineShared, "combine-shared", cfg.CombineShared, "merge shared sub filters into each channel file, shared first")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newServeCmd())
	return cmd
}

func printSummary(w io.Writer, opts convert.Options, sum *convert.Summary) {
	fmt.Fprintf(w, "Using Q type: %s\n", strings.ToUpper(string(opts.QType)))
	if len(opts.IncludeTypes) > 0 {
		fmt.Fprintf(w, "Included filter types: %s\n", strings.Join(opts.IncludeTypes, ", "))
	}
	if len(opts.ExcludeTypes) > 0 {
		fmt.Fprintf(w, "Excluded filter types: %s\n", strings.Join(opts.ExcludeTypes, ", "))
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))

	for _, u := range sum.Units {
		switch {
		case u.SharedFilters > 0:
			fmt.Fprintf(w, "Channel %s: %d shared + %d channel = %d total filters exported to %s\n",
				u.Name, u.SharedFilters, u.ChannelFilters, u.SharedFilters+u.ChannelFilters, u.FileName)
		case u.FileName == storm.SharedFileName:
			fmt.Fprintf(w, "%s: %d filters exported to %s\n", u.Name, u.ChannelFilters, u.FileName)
		default:
			fmt.Fprintf(w, "Channel %s: %d filters exported to %s\n", u.Name, u.ChannelFilters, u.FileName)
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintln(w, "Conversion complete!")
	fmt.Fprintf(w, "Total filters processed: %d\n", sum.TotalProcessed)
	fmt.Fprintf(w, "Total filters exported: %d\n", sum.TotalExported)
	fmt.Fprintf(w, "Output files saved to: %s\n", opts.OutputDir)
}
