// Package cli 提供 bsrqc 命令行：serve、run、rules、version
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"bsrqc/internal/config"
)

var (
	// Version 构建时通过 ldflags 注入
	Version = "dev"
	// Commit 构建时通过 ldflags 注入
	Commit = "none"
)

var (
	cfgFile   string
	rulesFile string
	noColor   bool
)

// NewRootCmd 构建命令树
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "bsrqc",
		Short: "Quality checks for broadcast sports reports",
		Long: `bsrqc validates BSR workbooks against a Rosco reference (monitoring period
and channel roster) and, for league projects, a market duplication macro.

Run it once from the command line or start the HTTP service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: config.toml next to the executable)")
	root.PersistentFlags().StringVar(&rulesFile, "rules", "", "QC rules file (.json/.yaml), overrides qc.rules_path")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	root.AddCommand(newServeCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute 执行根命令
func Execute() error {
	return NewRootCmd().Execute()
}

// loadSettings 读取应用配置与质检规则，--rules 优先于配置文件
func loadSettings() (*config.AppConfig, config.LoadConfigInfo, *config.Rules, error) {
	cfg, info, err := config.LoadConfigWithInfo(cfgFile)
	if err != nil {
		return nil, info, nil, fmt.Errorf("failed to load config %s: %w", info.Path, err)
	}
	if rulesFile != "" {
		cfg.QC.RulesPath = rulesFile
	}
	rules, err := config.LoadRules(cfg.QC.RulesPath)
	if err != nil {
		return nil, info, nil, err
	}
	return cfg, info, rules, nil
}
