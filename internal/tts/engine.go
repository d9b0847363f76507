// Package tts 负责把文本合成为 MP3 音频文件。
// 后端以 Engine 接口抽象，由配置选择具体实现（edge / tencent）。
package tts

import (
	"context"
	"errors"
)

// ErrEmptyText 表示待合成文本去除空白后为空。
// 引擎在发起任何外部调用、写入任何文件之前返回该错误。
var ErrEmptyText = errors.New("text cannot be empty")

// Engine 定义语音合成后端接口。
type Engine interface {
	// Synthesize 把 text 以 lang 语言合成为音频并写入 outputPath。
	// lang 为归一化后的 ISO 代码。
	Synthesize(ctx context.Context, text, lang, outputPath string) error
}
