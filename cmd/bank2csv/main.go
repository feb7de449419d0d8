package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/k0kubun/pp/v3"
	"github.com/spf13/cobra"

	"github.com/xinyuanma/Bankstatements2iCost/pkg/config"
	"github.com/xinyuanma/Bankstatements2iCost/pkg/mappings"
	"github.com/xinyuanma/Bankstatements2iCost/pkg/service"
)

var rootCmd = &cobra.Command{
	Use:   "bank2csv",
	Short: "Convert bank statements to iCost bookkeeping CSV",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "bank2csv",
		})

		cfg, err := config.Build(cmd.Flags())
		if err != nil {
			return err
		}

		if cfg.Debug {
			logger.SetLevel(log.DebugLevel)
			pp.Fprintln(os.Stderr, cfg)
			m, err := mappings.Load(cfg.MappingsPath)
			if err != nil {
				return err
			}
			pp.Fprintln(os.Stderr, m)
		}

		return service.NewProcessor(cfg, logger).Process()
	},
}

func init() {
	rootCmd.Flags().StringP("input", "i", "", "Input statement CSV (overrides .env IN_FILE)")
	rootCmd.Flags().StringP("output", "o", "", "Output bookkeeping CSV (overrides .env OUT_FILE)")
	rootCmd.Flags().StringP("mappings", "m", "", "Mappings YAML (overrides .env MAPPINGS)")
	rootCmd.Flags().String("default-account1", "", "Override the account1 default (overrides .env DEFAULT_ACCOUNT1)")
	rootCmd.Flags().String("default-currency", "", "Override the currency default (overrides .env DEFAULT_CURRENCY)")
	rootCmd.Flags().Bool("no-dotenv", false, "Do not load .env from the working directory")
	rootCmd.Flags().Bool("debug", false, "Verbose logging plus a dump of the resolved config and mappings")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
