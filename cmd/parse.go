package cmd

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trainlog/trainlog/ingest"
	"github.com/trainlog/trainlog/sink"
)

var (
	dataDir   string // Root directory holding one subdirectory per run
	outputDir string // Root directory receiving per-run CSV tables
)

// parseCmd converts every run directory under the data root into CSV tables.
var parseCmd = &cobra.Command{
	Use:   "parse",
	Short: "Parse every run directory under the data root into CSV tables",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cfgPath)
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if outputDir != "" {
			cfg.OutputDir = outputDir
		}

		orch := ingest.NewOrchestrator(
			ingest.NewIterGrammar(),
			ingest.ReturnRanker{},
			sink.NewCSVSink(cfg.OutputDir),
		)
		orch.SetExtensions(cfg.LogExtensions, cfg.ConfigExtensions)

		reports, err := orch.ProcessAll(cfg.DataDir)
		if err != nil {
			logrus.Fatalf("Parse failed: %v", err)
		}
		if len(reports) == 0 {
			logrus.Warnf("No run directories found under %s", cfg.DataDir)
		}
		for _, rep := range reports {
			fmt.Printf("run %q: parsed %d/%d lines\n", rep.Run, rep.ParsedLines, rep.TotalLines)
		}
	},
}

func init() {
	parseCmd.Flags().StringVar(&dataDir, "data", "", "Run directories root (default \"data\")")
	parseCmd.Flags().StringVar(&outputDir, "output", "", "Output tables root (default \"output\")")
	rootCmd.AddCommand(parseCmd)
}
