package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tdewolff/ooldml"
)

var (
	configFile string
	cfg        = ooldml.DefaultConfig()
	kind       = "DATE"
	locale     = "en_US"
	sample     bool

	log *zap.Logger

	Main = &cobra.Command{
		Use:           "ooldml",
		Short:         "Convert OpenOffice.org locale data to LDML",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
			if configFile != "" {
				if cfg, err = loadConfig(cmd.Flags()); err != nil {
					return err
				}
			}
			if cfg.Verbose {
				log, err = zap.NewDevelopment()
			} else {
				log, err = zap.NewProduction()
			}
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}

	singleCmd = &cobra.Command{
		Use:   "single <file>",
		Short: "Convert a single locale document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := ooldml.NewConverter(cfg, log)
			if err != nil {
				return err
			}
			dst, err := conv.ConvertFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dst)
			return nil
		},
	}

	bulkCmd = &cobra.Command{
		Use:   "bulk <dir>",
		Short: "Convert all locale documents in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conv, err := ooldml.NewConverter(cfg, log)
			if err != nil {
				return err
			}
			stats, err := conv.ConvertDir(cmd.Context(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "converted %d, failed %d, pattern warnings %d\n", stats.Converted, stats.Failed, stats.Warnings)
			return err
		},
	}

	translateCmd = &cobra.Command{
		Use:   "translate <pattern>",
		Short: "Translate a single date or time format code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, ok := ooldml.ParseKind(kind)
			if !ok {
				return fmt.Errorf("unknown kind %q, expected DATE, TIME or DATE_TIME", kind)
			}
			pattern, err := ooldml.NewTranslator(locale).Translate(args[0], k)
			for _, warning := range multierr.Errors(err) {
				log.Warn("pattern translation", zap.String("pattern", args[0]), zap.NamedError("warning", warning))
			}
			fmt.Fprintln(cmd.OutOrStdout(), pattern)
			if sample {
				s, err := ooldml.Sample(pattern, nil, ooldml.SampleTime)
				if err != nil {
					log.Warn("pattern sample", zap.Error(err))
				}
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
)

func bindFlags(fs *pflag.FlagSet, cfg *ooldml.Config) {
	fs.StringVar(&cfg.DestDir, "dest-dir", cfg.DestDir, "directory where the LDML files are written, created if it does not exist")
	fs.StringVar(&cfg.DTDDir, "dtd-dir", cfg.DTDDir, "directory of ldml.dtd and ldmlOpenOffice.dtd, otherwise the CLDR URL is used")
	fs.StringVar(&cfg.CLDRVersion, "cldr-version", cfg.CLDRVersion, "CLDR version of the DTD URL and the available elements")
	fs.BoolVar(&cfg.DateTime, "date-time", cfg.DateTime, "translate date and time format codes to LDML patterns")
	fs.BoolVar(&cfg.ResolveRefs, "res-refs", cfg.ResolveRefs, "resolve references to other locales instead of writing aliases")
	fs.BoolVar(&cfg.CLDROnly, "cldr-only", cfg.CLDROnly, "only write data that maps onto LDML, no openOffice specials")
	fs.StringVar(&cfg.Supplemental, "supplemental", cfg.Supplemental, "directory of supplementalData.xml")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "number of documents converted concurrently in bulk mode")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "development logging")
}

// loadConfig reads the configuration file and applies the flags set on the command line on top.
func loadConfig(flags *pflag.FlagSet) (ooldml.Config, error) {
	fileCfg, err := ooldml.LoadConfig(configFile)
	if err != nil {
		return fileCfg, err
	}
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	bindFlags(fs, &fileCfg)
	flags.Visit(func(f *pflag.Flag) {
		if fs.Lookup(f.Name) != nil {
			err = multierr.Append(err, fs.Set(f.Name, f.Value.String()))
		}
	})
	if err != nil {
		return fileCfg, err
	}
	return fileCfg, fileCfg.Validate()
}

func init() {
	Main.PersistentFlags().StringVar(&configFile, "config", configFile, "YAML configuration file, flags take precedence")
	bindFlags(Main.PersistentFlags(), &cfg)

	translateCmd.Flags().StringVar(&kind, "kind", kind, "element kind: DATE, TIME or DATE_TIME")
	translateCmd.Flags().StringVar(&locale, "locale", locale, "locale of the format code, eg. de_DE")
	translateCmd.Flags().BoolVar(&sample, "sample", sample, "also print the pattern applied to 2006-01-02 15:04:05.123")

	Main.AddCommand(singleCmd, bulkCmd, translateCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := Main.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		os.Exit(1)
	}
}
