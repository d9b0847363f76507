package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/iabetor/voxd/internal/logger"
)

const defaultGoogleBaseURL = "https://translate.googleapis.com"

// GoogleEngine 通过 Google 翻译的公开 gtx 接口实现翻译，无需凭证。
type GoogleEngine struct {
	client  *http.Client
	baseURL string
}

// NewGoogleEngine 创建 Google 翻译引擎。
func NewGoogleEngine() *GoogleEngine {
	return &GoogleEngine{
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultGoogleBaseURL,
	}
}

// Translate 调用 translate_a/single 接口并拼接返回的译文分段。
func (g *GoogleEngine) Translate(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", source)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	endpoint := g.baseURL + "/translate_a/single?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("构建翻译请求失败: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("翻译请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("翻译接口返回状态 %d: %s", resp.StatusCode, string(body))
	}

	// 响应是嵌套数组：[[["译文","原文",...], ...], ...]
	var payload []interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("解析翻译响应失败: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("翻译响应为空")
	}

	segments, ok := payload[0].([]interface{})
	if !ok {
		return "", fmt.Errorf("翻译响应格式不符合预期")
	}

	var sb strings.Builder
	for _, seg := range segments {
		parts, ok := seg.([]interface{})
		if !ok || len(parts) == 0 {
			continue
		}
		if s, ok := parts[0].(string); ok {
			sb.WriteString(s)
		}
	}

	result := sb.String()
	if result == "" {
		return "", fmt.Errorf("翻译响应不含译文")
	}

	logger.Debugf("[translate] google: %s -> %s, %d -> %d 字符",
		source, target, len([]rune(text)), len([]rune(result)))

	return result, nil
}
