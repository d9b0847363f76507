// Package config 加载 voxd 的 YAML 配置。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config 是 voxd 的顶层配置结构。
// 所有配置在启动时装配完毕后显式传入各组件，请求处理逻辑不读取全局状态。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	TTS       TTSConfig       `yaml:"tts"`
	Translate TranslateConfig `yaml:"translate"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig HTTP 服务配置。
type ServerConfig struct {
	Port int `yaml:"port"`
	// APIKey 共享密钥，请求方通过 X-API-Key 头携带。
	APIKey string `yaml:"api_key"`
	// Environment 为 "production" 时启动日志不回显 API Key。
	Environment string `yaml:"environment"`
	// BodyLimitMB 上传内容的大小上限（MB）。
	BodyLimitMB int `yaml:"body_limit_mb"`
}

// StorageConfig 音频存储配置。
type StorageConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// TTSConfig 语音合成配置。
type TTSConfig struct {
	Engine  string        `yaml:"engine"`
	Edge    EdgeConfig    `yaml:"edge"`
	Tencent TencentConfig `yaml:"tencent"`
}

// EdgeConfig Edge TTS 配置。
type EdgeConfig struct {
	// Voices 按语言代码覆盖默认语音，如 en: en-GB-SoniaNeural。
	Voices map[string]string `yaml:"voices"`
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string  `yaml:"secret_id"`
	SecretKey string  `yaml:"secret_key"`
	VoiceType int64   `yaml:"voice_type"`
	Region    string  `yaml:"region"`
	Speed     float64 `yaml:"speed"`
}

// TranslateConfig 翻译配置。
type TranslateConfig struct {
	Engine  string                 `yaml:"engine"`
	Tencent TencentTranslateConfig `yaml:"tencent"`
}

// TencentTranslateConfig 腾讯云机器翻译配置。
type TencentTranslateConfig struct {
	SecretID  string `yaml:"secret_id"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSize    int    `yaml:"max_size"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAge     int    `yaml:"max_age"`
}

// Load 读取 YAML 配置文件并返回 Config。
// 支持 ${VAR_NAME} 形式的环境变量展开。
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件 %s 失败: %w", path, err)
	}

	// 展开环境变量，如 ${VOXD_API_KEY}
	expanded := os.Expand(string(data), func(key string) string {
		return os.Getenv(key)
	})

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}

	setDefaults(cfg)
	return cfg, nil
}

// Default 返回纯默认值配置，用于无配置文件启动。
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// setDefaults 为未设置的配置项填充默认值。
// 端口和 API Key 兼容 PORT / API_KEY 环境变量。
func setDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		if p, err := strconv.Atoi(os.Getenv("PORT")); err == nil && p > 0 {
			cfg.Server.Port = p
		} else {
			cfg.Server.Port = 8000
		}
	}
	if cfg.Server.APIKey == "" {
		cfg.Server.APIKey = os.Getenv("API_KEY")
	}
	if cfg.Server.APIKey == "" {
		cfg.Server.APIKey = "your-secret-api-key-12345"
	}
	if cfg.Server.Environment == "" {
		cfg.Server.Environment = os.Getenv("ENVIRONMENT")
	}
	if cfg.Server.BodyLimitMB == 0 {
		cfg.Server.BodyLimitMB = 20
	}

	if cfg.Storage.OutputDir == "" {
		cfg.Storage.OutputDir = "generated_audio"
	}

	if cfg.TTS.Engine == "" {
		cfg.TTS.Engine = "edge"
	}
	if cfg.TTS.Tencent.Region == "" {
		cfg.TTS.Tencent.Region = "ap-guangzhou"
	}
	if cfg.TTS.Tencent.Speed == 0 {
		cfg.TTS.Tencent.Speed = 1.0
	}

	if cfg.Translate.Engine == "" {
		cfg.Translate.Engine = "google"
	}
	if cfg.Translate.Tencent.Region == "" {
		cfg.Translate.Tencent.Region = "ap-guangzhou"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	// 去除密钥两端可能的空白（环境变量展开后常见）
	cfg.Server.APIKey = strings.TrimSpace(cfg.Server.APIKey)
}
