package cli

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"bsrqc/internal/server"
	"bsrqc/internal/util"
)

func newServeCmd() *cobra.Command {
	var (
		port    int
		devMode bool
		dataDir string
		open    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, info, rules, err := loadSettings()
			if err != nil {
				return err
			}

			// 命令行参数覆盖配置；config.toml 显式配置的端口优先
			if port > 0 && !info.PortSpecified {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}
			if dataDir != "" {
				cfg.Data.DataDir = dataDir
			}

			srv, err := server.NewServer(cfg, rules, Version)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			url := fmt.Sprintf("http://localhost:%d/api/v1/status", cfg.Server.Port)
			log.Printf("服务启动中，监听端口 %d ...", cfg.Server.Port)
			if cfg.QC.RulesPath != "" {
				log.Printf("质检规则: %s", cfg.QC.RulesPath)
			}

			if open {
				if err := util.OpenBrowserWithFallback(url); err != nil {
					log.Printf("无法自动打开浏览器，请手动访问: %s", url)
				}
			}

			if err := srv.Run(ctx, addr); err != nil {
				return fmt.Errorf("server stopped: %w", err)
			}
			log.Printf("服务已关闭")
			return nil
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (ignored when config.toml sets server.port)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "development mode (gin debug logging)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory (overrides config)")
	cmd.Flags().BoolVar(&open, "open", false, "open the status page in a browser")
	return cmd
}
