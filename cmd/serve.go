package cmd

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/trainlog/trainlog/dashboard"
)

var (
	serveOutputDir string // Root directory holding parsed run tables
	listenAddr     string // HTTP listen address
)

// serveCmd serves the dashboard over previously parsed run tables.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the dashboard over parsed run tables",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig(cfgPath)
		if serveOutputDir != "" {
			cfg.OutputDir = serveOutputDir
		}
		if listenAddr != "" {
			cfg.ListenAddr = listenAddr
		}

		store := dashboard.NewStore(cfg.OutputDir)
		go func() {
			if err := dashboard.Watch(context.Background(), store); err != nil {
				logrus.Warnf("output watcher stopped: %v", err)
			}
		}()

		srv := dashboard.NewServer(store, cfg.ListenAddr, cfg.BucketWidth, cfg.SuccessReward)
		if err := srv.Start(); err != nil {
			logrus.Fatalf("Dashboard server failed: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveOutputDir, "output", "", "Parsed tables root (default \"output\")")
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default \":8050\")")
	rootCmd.AddCommand(serveCmd)
}
