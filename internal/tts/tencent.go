package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	tencenttts "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/tts/v20190823"

	"github.com/iabetor/voxd/internal/logger"
)

// TencentEngine 使用腾讯云 TTS 实现语音合成。
// 适用于中国大陆网络环境；语言由所选音色决定。
type TencentEngine struct {
	client    *tencenttts.Client
	voiceType int64
	speed     float64
}

// TencentConfig 腾讯云 TTS 配置。
type TencentConfig struct {
	SecretID  string
	SecretKey string
	VoiceType int64
	Region    string
	Speed     float64
}

// NewTencentEngine 创建腾讯云 TTS 引擎。
func NewTencentEngine(cfg TencentConfig) (*TencentEngine, error) {
	if cfg.SecretID == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("腾讯云 TTS 需要 SecretID 和 SecretKey")
	}

	if cfg.VoiceType == 0 {
		cfg.VoiceType = 1001 // 默认音色：智瑜（女声）
	}
	if cfg.Region == "" {
		cfg.Region = "ap-guangzhou"
	}
	if cfg.Speed == 0 {
		cfg.Speed = 1.0
	}

	credential := common.NewCredential(cfg.SecretID, cfg.SecretKey)
	cpf := profile.NewClientProfile()
	cpf.HttpProfile.Endpoint = "tts.tencentcloudapi.com"

	client, err := tencenttts.NewClient(credential, cfg.Region, cpf)
	if err != nil {
		return nil, fmt.Errorf("创建腾讯云 TTS 客户端失败: %w", err)
	}

	logger.Infof("[tts] 腾讯云 TTS 引擎已初始化 (voice=%d, region=%s)", cfg.VoiceType, cfg.Region)

	return &TencentEngine{
		client:    client,
		voiceType: cfg.VoiceType,
		speed:     cfg.Speed,
	}, nil
}

// Synthesize 把文本合成为 MP3 并写入 outputPath。
// 腾讯云 TTS 返回 Base64 编码的 MP3 数据。
func (e *TencentEngine) Synthesize(ctx context.Context, text, lang, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	logger.Debugf("[tts] 腾讯云 TTS: 正在合成 %d 个字符，音色=%d", len([]rune(text)), e.voiceType)

	request := tencenttts.NewTextToVoiceRequest()
	request.Text = common.StringPtr(text)
	request.VoiceType = common.Int64Ptr(e.voiceType)
	request.Codec = common.StringPtr("mp3")
	request.Speed = common.Float64Ptr(e.speed)
	request.Volume = common.Float64Ptr(5.0)

	response, err := e.client.TextToVoiceWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("腾讯云 TTS 合成失败: %w", err)
	}

	if response.Response == nil || response.Response.Audio == nil {
		return fmt.Errorf("腾讯云 TTS: 未返回音频数据")
	}

	mp3Data, err := base64.StdEncoding.DecodeString(*response.Response.Audio)
	if err != nil {
		return fmt.Errorf("Base64 解码失败: %w", err)
	}

	if err := os.WriteFile(outputPath, mp3Data, 0644); err != nil {
		return fmt.Errorf("写入音频文件失败: %w", err)
	}

	logger.Debugf("[tts] 腾讯云 TTS: 已写入 %d 字节 MP3 到 %s", len(mp3Data), outputPath)
	return nil
}
