// Package language 负责把用户提交的语言标识（完整语言名或 ISO 代码）
// 归一化为下游翻译 / 合成服务使用的标准代码。
// 未知标识一律拒绝（严格模式），不做静默透传。
package language

import (
	"fmt"
	"strings"
)

// nameToCode 完整语言名（小写）→ ISO 代码映射表。
// 与 Google 翻译支持的语言保持一致。
var nameToCode = map[string]string{
	"afrikaans":             "af",
	"albanian":              "sq",
	"amharic":               "am",
	"arabic":                "ar",
	"armenian":              "hy",
	"assamese":              "as",
	"azerbaijani":           "az",
	"bengali":               "bn",
	"bulgarian":             "bg",
	"catalan":               "ca",
	"chinese (simplified)":  "zh-CN",
	"chinese (traditional)": "zh-TW",
	"croatian":              "hr",
	"czech":                 "cs",
	"danish":                "da",
	"dutch":                 "nl",
	"english":               "en",
	"french":                "fr",
	"german":                "de",
	"greek":                 "el",
	"gujarati":              "gu",
	"hebrew":                "he",
	"hindi":                 "hi",
	"hungarian":             "hu",
	"indonesian":            "id",
	"italian":               "it",
	"japanese":              "ja",
	"korean":                "ko",
	"malay":                 "ms",
	"marathi":               "mr",
	"nepali":                "ne",
	"norwegian":             "no",
	"persian":               "fa",
	"polish":                "pl",
	"portuguese":            "pt",
	"punjabi":               "pa",
	"romanian":              "ro",
	"russian":               "ru",
	"spanish":               "es",
	"swahili":               "sw",
	"swedish":               "sv",
	"tamil":                 "ta",
	"telugu":                "te",
	"thai":                  "th",
	"turkish":               "tr",
	"ukrainian":             "uk",
	"urdu":                  "ur",
	"vietnamese":            "vi",
}

var (
	// codeSet 小写代码 → 标准代码，用于大小写不敏感的代码匹配（如 "zh-cn" → "zh-CN"）。
	codeSet = map[string]string{}
	// displayNames 标准代码 → 展示名，供 /languages 接口使用。
	displayNames = map[string]string{}
)

// 启动时由名称表构建一次，保证代码集合与名称表严格一致。
func init() {
	for name, code := range nameToCode {
		codeSet[strings.ToLower(code)] = code
		displayNames[code] = titleCase(name)
	}
}

// UnsupportedError 表示语言标识不在支持集合内。
type UnsupportedError struct {
	Token string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported language: %q", e.Token)
}

// Normalize 把语言标识归一化为标准 ISO 代码。
// 空白输入返回空串（表示"未请求翻译"）；完整语言名和已知代码
// 均按大小写不敏感匹配；其余输入返回 *UnsupportedError。
func Normalize(token string) (string, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	if t == "" {
		return "", nil
	}
	if code, ok := nameToCode[t]; ok {
		return code, nil
	}
	if code, ok := codeSet[t]; ok {
		return code, nil
	}
	return "", &UnsupportedError{Token: strings.TrimSpace(token)}
}

// Supported 返回支持的语言表（标准代码 → 英文展示名）的副本。
func Supported() map[string]string {
	out := make(map[string]string, len(displayNames))
	for code, name := range displayNames {
		out[code] = name
	}
	return out
}

// titleCase 把 "chinese (simplified)" 这样的小写名称转为展示用的
// "Chinese (Simplified)"。只处理 ASCII，表内名称均满足。
func titleCase(name string) string {
	b := []byte(name)
	upNext := true
	for i, c := range b {
		if upNext && c >= 'a' && c <= 'z' {
			b[i] = c - 'a' + 'A'
		}
		upNext = c == ' ' || c == '('
	}
	return string(b)
}
