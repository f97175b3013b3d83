// Command carreco 启动二手车混合推荐 HTTP 服务。
//
// 配置按 默认值 -> config.yaml（或 CONFIG_PATH）-> CARRECO_* 环境变量 加载。
// SIGHUP 触发快照刷新，SIGINT/SIGTERM 优雅退出。
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mbarek2002/car-plateform/config"
	"github.com/mbarek2002/car-plateform/logging"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.LoggerConfig())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logging.Error().Err(err).Msg("carreco exited with error")
		os.Exit(1)
	}
	logging.Info().Msg("carreco stopped")
}
