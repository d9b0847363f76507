package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/iabetor/voxd/internal/config"
	"github.com/iabetor/voxd/internal/convert"
	"github.com/iabetor/voxd/internal/logger"
	"github.com/iabetor/voxd/internal/server"
	"github.com/iabetor/voxd/internal/storage"
	"github.com/iabetor/voxd/internal/translate"
	"github.com/iabetor/voxd/internal/tts"
)

func main() {
	configPath := flag.String("config", "configs/voxd.yaml", "配置文件路径")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
			os.Exit(1)
		}
		// 没有配置文件时用默认值 + 环境变量启动
		cfg = config.Default()
	}

	if err := logger.Init(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	store, err := storage.NewStore(cfg.Storage.OutputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化音频存储失败: %v\n", err)
		os.Exit(1)
	}

	translator, err := buildTranslator(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化翻译引擎失败: %v\n", err)
		os.Exit(1)
	}

	synth, err := buildSynthesizer(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化合成引擎失败: %v\n", err)
		os.Exit(1)
	}

	conv := convert.New(translator, synth, store)
	srv := server.New(cfg, conv, store)

	logger.Infof("[main] voxd 启动中 (port=%d, tts=%s, translate=%s)",
		cfg.Server.Port, cfg.TTS.Engine, cfg.Translate.Engine)
	logger.Infof("[main] 音频输出目录: %s", store.Dir())
	if cfg.Server.Environment != "production" {
		logger.Infof("[main] API Key: %s", cfg.Server.APIKey)
	}

	// 监听系统信号，优雅关闭
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Infof("[main] 收到信号 %v，正在关闭...", sig)
		if err := srv.Shutdown(); err != nil {
			logger.Errorf("[main] 关闭服务失败: %v", err)
		}
	}()

	if err := srv.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		fmt.Fprintf(os.Stderr, "服务运行出错: %v\n", err)
		os.Exit(1)
	}

	logger.Info("[main] voxd 已停止")
}

// buildTranslator 按配置选择翻译引擎。
func buildTranslator(cfg *config.Config) (*translate.Service, error) {
	switch cfg.Translate.Engine {
	case "google":
		return translate.NewService(translate.NewGoogleEngine()), nil
	case "tencent":
		engine, err := translate.NewTencentEngine(
			cfg.Translate.Tencent.SecretID,
			cfg.Translate.Tencent.SecretKey,
			cfg.Translate.Tencent.Region,
		)
		if err != nil {
			return nil, err
		}
		return translate.NewService(engine), nil
	default:
		return nil, fmt.Errorf("未知的翻译引擎: %s", cfg.Translate.Engine)
	}
}

// buildSynthesizer 按配置选择语音合成引擎。
func buildSynthesizer(cfg *config.Config) (tts.Engine, error) {
	switch cfg.TTS.Engine {
	case "edge":
		return tts.NewEdgeEngine(cfg.TTS.Edge.Voices), nil
	case "tencent":
		return tts.NewTencentEngine(tts.TencentConfig{
			SecretID:  cfg.TTS.Tencent.SecretID,
			SecretKey: cfg.TTS.Tencent.SecretKey,
			VoiceType: cfg.TTS.Tencent.VoiceType,
			Region:    cfg.TTS.Tencent.Region,
			Speed:     cfg.TTS.Tencent.Speed,
		})
	default:
		return nil, fmt.Errorf("未知的 TTS 引擎: %s", cfg.TTS.Engine)
	}
}
