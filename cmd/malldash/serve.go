package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"malldash/internal/config"
	"malldash/internal/server"
	"malldash/internal/util"
)

type serveOptions struct {
	port       int
	dev        bool
	open       bool
	saveConfig bool
}

func newServeCmd(global *globalOptions) *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, global, opts)
		},
	}

	cmd.Flags().IntVar(&opts.port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&opts.dev, "dev", false, "开发模式")
	cmd.Flags().BoolVar(&opts.open, "open", false, "启动后打开浏览器")
	cmd.Flags().BoolVar(&opts.saveConfig, "save-config", false, "把生效的配置（含命令行覆盖）写回 config.toml")
	return cmd
}

func runServe(cmd *cobra.Command, global *globalOptions, opts serveOptions) error {
	cfg, info, err := loadConfig(global)
	if err != nil {
		return err
	}

	// 命令行参数覆盖配置
	if opts.port > 0 && !info.PortSpecified {
		cfg.Server.Port = opts.port
	}
	if opts.dev {
		cfg.Server.DevMode = true
	}

	logger := newLogger(cfg)
	if opts.saveConfig {
		path, err := saveEffectiveConfig(cfg, info, global)
		if err != nil {
			return err
		}
		logger.Info().Str("path", path).Msg("config saved")
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	srv := server.NewServer(cfg, st, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	url := fmt.Sprintf("http://localhost:%d", cfg.Server.Port)

	if (opts.open || cfg.Server.OpenBrowser) && !cfg.Server.DevMode {
		go func() {
			// 等待监听就绪
			time.Sleep(300 * time.Millisecond)
			if err := util.OpenBrowser(url); err != nil {
				logger.Warn().Err(err).Str("url", url).Msg("failed to open browser")
			}
		}()
	}

	logger.Info().Str("addr", addr).Str("config", info.Path).Msg("server starting")
	return srv.Serve(cmd.Context(), addr)
}

// saveEffectiveConfig 写回已加载的配置文件；未加载到文件时写 --config 指定的路径，再退回可执行文件目录
func saveEffectiveConfig(cfg *config.AppConfig, info config.LoadConfigInfo, global *globalOptions) (string, error) {
	path := info.Path
	if path == "" {
		path = global.configPath
	}
	return config.SaveConfig(cfg, path)
}
