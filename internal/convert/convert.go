// Package convert 实现两个转换端点的编排：
// 归一化 →（提取）→（翻译）→ 文件名 → 合成 → 结果装配。
// 每个请求独立顺序执行，除输出目录外不共享任何可变状态。
package convert

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/iabetor/voxd/internal/audio"
	"github.com/iabetor/voxd/internal/extract"
	"github.com/iabetor/voxd/internal/language"
	"github.com/iabetor/voxd/internal/logger"
	"github.com/iabetor/voxd/internal/storage"
	"github.com/iabetor/voxd/internal/translate"
	"github.com/iabetor/voxd/internal/tts"
)

// DefaultTargetLanguage 未指定目标语言时的默认值。
const DefaultTargetLanguage = "en"

// 回显译文 / 原文时的最大长度（文件端点）。
const echoLimit = 200

var (
	// ErrEmptyText 文本端点收到了空文本。
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrEmptyContent 上传的文件中没有可提取的文本。
	ErrEmptyContent = errors.New("no text found in the file")
)

// TextRequest 文本端点的转换请求，语言字段为未归一化的原始标识。
type TextRequest struct {
	Text           string
	TargetLanguage string
	SourceLanguage string
	FileName       string // 可选的自定义输出名
}

// FileRequest 文件端点的转换请求。
type FileRequest struct {
	UploadName     string // 上传文件名（含扩展名）
	Content        io.Reader
	TargetLanguage string
	SourceLanguage string
	CustomFileName string
}

// Result 一次转换的结果。JSON 字段名与对外契约一致。
type Result struct {
	Success            bool    `json:"success"`
	Message            string  `json:"message"`
	AudioFile          string  `json:"audio_file"`
	FilePath           string  `json:"file_path"`
	GeneratedAt        string  `json:"generated_at"`
	OriginalText       string  `json:"original_text,omitempty"`
	TranslatedText     string  `json:"translated_text,omitempty"`
	TranslationApplied bool    `json:"translation_applied"`
	DurationSeconds    float64 `json:"duration_seconds,omitempty"`
}

// Converter 组合翻译服务、合成引擎和存储，在构造时显式注入。
type Converter struct {
	translator *translate.Service
	synth      tts.Engine
	store      *storage.Store
}

// New 创建编排器。
func New(translator *translate.Service, synth tts.Engine, store *storage.Store) *Converter {
	return &Converter{
		translator: translator,
		synth:      synth,
		store:      store,
	}
}

// ConvertText 把纯文本转换为语音，按需先翻译。
func (c *Converter) ConvertText(ctx context.Context, req TextRequest) (*Result, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	target, source, err := c.normalize(req.TargetLanguage, req.SourceLanguage)
	if err != nil {
		return nil, err
	}

	return c.finish(ctx, finishInput{
		originalText: req.Text,
		target:       target,
		source:       source,
		customName:   req.FileName,
		successMsg:   "Speech generated successfully",
		translatedMsg: fmt.Sprintf(
			"Text translated from %s to %s and speech generated successfully", source, target),
		clipEcho: false,
	})
}

// ConvertFile 从上传的文档提取文本后转换为语音。
// 上传内容写入临时文件，所有处理路径结束时都会删除。
func (c *Converter) ConvertFile(ctx context.Context, req FileRequest) (*Result, error) {
	target, source, err := c.normalize(req.TargetLanguage, req.SourceLanguage)
	if err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := c.store.SaveTemp(req.UploadName, req.Content)
	if err != nil {
		return nil, fmt.Errorf("保存上传文件失败: %w", err)
	}
	defer cleanup()

	ext := fileExt(req.UploadName)
	text, err := extract.Extract(tmpPath, ext)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}

	// 超长文本一次性截断，不分块
	if truncated := extract.Truncate(text); len(truncated) < len(text) {
		logger.Warnf("[convert] 文本从 %d 字符截断到 %d 字符", len([]rune(text)), extract.MaxChars)
		text = truncated
	}

	return c.finish(ctx, finishInput{
		originalText: text,
		target:       target,
		source:       source,
		customName:   req.CustomFileName,
		successMsg:   fmt.Sprintf("Speech generated successfully from %s", req.UploadName),
		translatedMsg: fmt.Sprintf(
			"File content translated from %s to %s and speech generated successfully", source, target),
		clipEcho: true,
	})
}

type finishInput struct {
	originalText  string
	target        string
	source        string
	customName    string
	successMsg    string
	translatedMsg string
	clipEcho      bool
}

// finish 执行两个端点共同的尾部：翻译 → 文件名 → 合成 → 结果装配。
func (c *Converter) finish(ctx context.Context, in finishInput) (*Result, error) {
	finalText := in.originalText
	applied := false

	// 只有源语言存在且与目标语言不同时才算应用了翻译
	if in.source != "" && in.source != in.target {
		logger.Infof("[convert] 翻译 %s -> %s", in.source, in.target)
		translated, err := c.translator.Translate(ctx, in.originalText, in.source, in.target)
		if err != nil {
			return nil, err
		}
		finalText = translated
		applied = true
	}

	name := storage.FileName(finalText, in.customName)
	outPath := c.store.Path(name)

	if err := c.synth.Synthesize(ctx, finalText, in.target, outPath); err != nil {
		return nil, err
	}

	result := &Result{
		Success:            true,
		Message:            in.successMsg,
		AudioFile:          name,
		FilePath:           "/audio/" + name,
		GeneratedAt:        time.Now().Format(time.RFC3339),
		TranslationApplied: applied,
	}
	if applied {
		result.Message = in.translatedMsg
		if in.clipEcho {
			result.OriginalText = clip(in.originalText)
			result.TranslatedText = clip(finalText)
		} else {
			result.OriginalText = in.originalText
			result.TranslatedText = finalText
		}
	}

	// 时长探测失败不影响结果
	if seconds, err := audio.Duration(outPath); err == nil {
		result.DurationSeconds = seconds
	} else {
		logger.Debugf("[convert] 音频时长探测失败: %v", err)
	}

	logger.Infof("[convert] 已生成 %s (translated=%v)", name, applied)
	return result, nil
}

// normalize 归一化目标 / 源语言，目标语言缺省为英语。
func (c *Converter) normalize(target, source string) (string, string, error) {
	if strings.TrimSpace(target) == "" {
		target = DefaultTargetLanguage
	}
	normTarget, err := language.Normalize(target)
	if err != nil {
		return "", "", err
	}
	normSource, err := language.Normalize(source)
	if err != nil {
		return "", "", err
	}
	return normTarget, normSource, nil
}

// fileExt 返回文件名最后一个点之后的扩展名（不含点）。
func fileExt(name string) string {
	ext := filepath.Ext(name)
	return strings.TrimPrefix(ext, ".")
}

// clip 把回显文本限制在 echoLimit 个字符内。
func clip(text string) string {
	runes := []rune(text)
	if len(runes) <= echoLimit {
		return text
	}
	return string(runes[:echoLimit]) + "..."
}
