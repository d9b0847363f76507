package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/iabetor/voxd/internal/convert"
	"github.com/iabetor/voxd/internal/extract"
	"github.com/iabetor/voxd/internal/language"
	"github.com/iabetor/voxd/internal/logger"
	"github.com/iabetor/voxd/internal/translate"
	"github.com/iabetor/voxd/internal/tts"
)

// 客户端可见的错误 detail 上限，避免透传过长的后端报文。
const maxDetailLen = 300

// textInput 文本端点的请求体，字段名与对外契约一致。
type textInput struct {
	Text          string `json:"text"`
	FileName      string `json:"filename"`
	Language      string `json:"language"`
	TranslateFrom string `json:"translate_from"`
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "Text-to-Speech API with Translation",
		"version": "2.0.0",
		"endpoints": fiber.Map{
			"POST /tts/text":        "Convert text to speech (with optional translation)",
			"POST /tts/file":        "Upload file and convert to speech (with optional translation)",
			"GET /audio/{filename}": "Download generated audio file",
			"GET /languages":        "Get list of supported languages",
		},
		"authentication": "Required - Pass 'X-API-Key' in headers",
	})
}

func (s *Server) handleLanguages(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"supported_languages": language.Supported(),
	})
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":             "healthy",
		"tts_engine":         s.cfg.TTS.Engine,
		"translation_engine": s.cfg.Translate.Engine,
		"version":            "2.0.0",
	})
}

// handleTextToSpeech 处理 POST /tts/text。
func (s *Server) handleTextToSpeech(c *fiber.Ctx) error {
	var input textInput
	if err := c.BodyParser(&input); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Invalid JSON body")
	}

	result, err := s.conv.ConvertText(c.Context(), convert.TextRequest{
		Text:           input.Text,
		TargetLanguage: input.Language,
		SourceLanguage: input.TranslateFrom,
		FileName:       input.FileName,
	})
	if err != nil {
		return s.writeConvertError(c, err, "Error generating speech")
	}

	return c.JSON(result)
}

// handleFileToSpeech 处理 POST /tts/file（multipart 表单）。
func (s *Server) handleFileToSpeech(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Missing file upload")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Cannot read file upload")
	}
	defer file.Close()

	result, err := s.conv.ConvertFile(c.Context(), convert.FileRequest{
		UploadName:     fileHeader.Filename,
		Content:        file,
		TargetLanguage: c.FormValue("language"),
		SourceLanguage: c.FormValue("translate_from"),
		CustomFileName: c.FormValue("custom_filename"),
	})
	if err != nil {
		return s.writeConvertError(c, err, "Error processing file")
	}

	return c.JSON(result)
}

// handleDownload 处理 GET /audio/:filename。
func (s *Server) handleDownload(c *fiber.Ctx) error {
	fileName := c.Params("filename")
	if fileName == "" || !s.store.Exists(fileName) {
		return jsonError(c, fiber.StatusNotFound, "Audio file not found")
	}

	if err := c.SendFile(s.store.Path(fileName)); err != nil {
		return jsonError(c, fiber.StatusNotFound, "Audio file not found")
	}
	// SendFile 按扩展名推断类型，这里强制为音频并以附件方式下载
	c.Set(fiber.HeaderContentType, "audio/mpeg")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return nil
}

// writeConvertError 把编排器错误映射为对外状态码和 detail。
// 校验类失败 → 400，其余（外部服务故障等）→ 500。
func (s *Server) writeConvertError(c *fiber.Ctx, err error, fallbackPrefix string) error {
	var (
		langErr  *language.UnsupportedError
		typeErr  *extract.UnsupportedTypeError
		transErr *translate.FailedError
	)

	switch {
	case errors.As(err, &langErr):
		return jsonError(c, fiber.StatusBadRequest, "Unsupported language: "+langErr.Token)
	case errors.As(err, &typeErr):
		return jsonError(c, fiber.StatusBadRequest, "Unsupported file type. Use PDF, DOCX, or TXT")
	case errors.Is(err, convert.ErrEmptyText), errors.Is(err, tts.ErrEmptyText):
		return jsonError(c, fiber.StatusBadRequest, "Text cannot be empty")
	case errors.Is(err, convert.ErrEmptyContent):
		return jsonError(c, fiber.StatusBadRequest, "No text found in the file")
	case errors.As(err, &transErr):
		logger.Errorf("[http] %s %s 翻译失败: %v", c.Method(), c.Path(), err)
		return jsonError(c, fiber.StatusInternalServerError,
			"Translation error: "+transErr.Err.Error()+". Check language codes are valid.")
	default:
		logger.Errorf("[http] %s %s 失败: %v", c.Method(), c.Path(), err)
		return jsonError(c, fiber.StatusInternalServerError, fallbackPrefix+": "+err.Error())
	}
}

// jsonError 写出 {"detail": ...} 错误体，detail 超长时截断。
func jsonError(c *fiber.Ctx, status int, detail string) error {
	if len(detail) > maxDetailLen {
		detail = detail[:maxDetailLen] + "..."
	}
	return c.Status(status).JSON(fiber.Map{"detail": detail})
}
