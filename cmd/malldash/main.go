package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"malldash/internal/config"
	"malldash/internal/logging"
	"malldash/internal/store"
)

// globalOptions 所有子命令共用的参数
type globalOptions struct {
	configPath string
	dataDir    string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	root := &cobra.Command{
		Use:           "malldash",
		Short:         "멀티 쇼핑몰 주문 대시보드",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config.toml 路径（默认查找可执行文件目录与当前目录）")
	root.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "数据目录 (覆盖配置文件)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "日志级别 (覆盖配置文件)")

	root.AddCommand(
		newServeCmd(&opts),
		newParseCmd(&opts),
		newImportCmd(&opts),
		newExportCmd(&opts),
	)
	return root
}

// loadConfig 加载配置并应用命令行覆盖
func loadConfig(opts *globalOptions) (*config.AppConfig, config.LoadConfigInfo, error) {
	var (
		cfg  *config.AppConfig
		info config.LoadConfigInfo
		err  error
	)
	if opts.configPath != "" {
		cfg, info, err = config.LoadConfigFrom(opts.configPath)
	} else {
		cfg, info, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		return nil, info, fmt.Errorf("failed to load config: %w", err)
	}

	if opts.dataDir != "" {
		cfg.Data.DataDir = opts.dataDir
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, info, nil
}

// openStore 确保数据目录存在并打开 SQLite 存储
func openStore(cfg *config.AppConfig, logger zerolog.Logger) (*store.Store, error) {
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	st, err := store.Open(config.DBPath(cfg))
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("data_dir", dataDir).Msg("store opened")
	return st, nil
}

func newLogger(cfg *config.AppConfig) zerolog.Logger {
	return logging.New(cfg.Log)
}
