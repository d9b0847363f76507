// Package translate 负责把文本在两种语言之间翻译。
// 后端以 Engine 接口抽象，由配置选择具体实现（google / tencent）。
package translate

import (
	"context"
	"fmt"
)

// Engine 定义翻译后端接口。
type Engine interface {
	// Translate 把 text 从 source 语言翻译到 target 语言。
	// source 和 target 均为归一化后的 ISO 代码。
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// FailedError 统一包装翻译后端的失败，携带底层错误信息。
type FailedError struct {
	Err error
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("translation failed: %v", e.Err)
}

func (e *FailedError) Unwrap() error { return e.Err }

// Service 在 Engine 之上实现调用方契约：
// 源语言与目标语言相同时原样返回（不发起外部调用），
// 后端失败统一包装为 *FailedError。不重试，不缓存。
type Service struct {
	engine Engine
}

// NewService 创建翻译服务。
func NewService(engine Engine) *Service {
	return &Service{engine: engine}
}

// Translate 执行翻译。source == target 时短路返回原文。
func (s *Service) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == target {
		return text, nil
	}

	out, err := s.engine.Translate(ctx, text, source, target)
	if err != nil {
		return "", &FailedError{Err: err}
	}
	return out, nil
}
