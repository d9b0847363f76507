// Package extract 从上传的文档（PDF / DOCX / TXT）中提取纯文本。
// 按文件扩展名分发，不支持的类型直接拒绝。
package extract

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

// MaxChars 提取文本的硬上限（字符数）。超长文本在翻译 / 合成前
// 一次性截断到该长度，不做分块处理。
const MaxChars = 5000

// UnsupportedTypeError 表示文件类型不在支持集合内。
type UnsupportedTypeError struct {
	Ext string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %q", e.Ext)
}

// Extract 按扩展名（大小写不敏感）提取 path 处文件的文本内容。
// pdf 按页序拼接，docx/doc 按段落顺序以换行连接，txt 按 UTF-8 原样读取。
func Extract(path, ext string) (string, error) {
	switch strings.ToLower(ext) {
	case "pdf":
		return fromPDF(path)
	case "docx", "doc":
		return fromDOCX(path)
	case "txt":
		return fromTXT(path)
	default:
		return "", &UnsupportedTypeError{Ext: ext}
	}
}

// Truncate 把超过 MaxChars 个字符的文本截断到前 MaxChars 个字符。
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxChars {
		return text
	}
	return string(runes[:MaxChars])
}

// fromPDF 按页序提取 PDF 中的文本并直接拼接。
func fromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("解析 PDF 失败: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("提取 PDF 第 %d 页失败: %w", i, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

// fromDOCX 按文档顺序提取段落文本，以换行符连接。
func fromDOCX(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("打开 DOCX 失败: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("读取 DOCX 信息失败: %w", err)
	}

	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("解析 DOCX 失败: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, p.String())
		}
	}
	return strings.Join(paragraphs, "\n"), nil
}

// fromTXT 把文件按 UTF-8 文本原样读取。
func fromTXT(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("读取 TXT 失败: %w", err)
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("TXT 文件不是合法的 UTF-8 编码")
	}
	return string(data), nil
}
