// Package server 暴露 HTTP 接口：文本 / 文件转语音、音频下载、
// 语言表和健康检查。鉴权是单一共享密钥的精确比对。
package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/iabetor/voxd/internal/config"
	"github.com/iabetor/voxd/internal/convert"
	"github.com/iabetor/voxd/internal/logger"
	"github.com/iabetor/voxd/internal/storage"
)

// Server 是 voxd 的 HTTP 服务。
type Server struct {
	app   *fiber.App
	cfg   *config.Config
	conv  *convert.Converter
	store *storage.Store
}

// New 创建 HTTP 服务并注册全部路由。
func New(cfg *config.Config, conv *convert.Converter, store *storage.Store) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit:             cfg.Server.BodyLimitMB * 1024 * 1024,
		DisableStartupMessage: true,
	})

	// 允许浏览器跨域访问
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "*",
	}))
	app.Use(requestLogger())

	s := &Server{app: app, cfg: cfg, conv: conv, store: store}

	app.Get("/", s.handleRoot)
	app.Get("/languages", s.handleLanguages)
	app.Get("/health", s.handleHealth)

	auth := requireAPIKey(cfg.Server.APIKey)
	app.Post("/tts/text", auth, s.handleTextToSpeech)
	app.Post("/tts/file", auth, s.handleFileToSpeech)
	app.Get("/audio/:filename", auth, s.handleDownload)

	return s
}

// App 返回底层 fiber 应用（测试用）。
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen 在给定地址上开始服务，阻塞直到关闭。
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown 优雅关闭，等待在途请求完成。
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requireAPIKey 校验 X-API-Key 头与配置密钥精确相等。
func requireAPIKey(key string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("X-API-Key") != key {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"detail": "Invalid API key",
			})
		}
		return c.Next()
	}
}

// requestLogger 记录每个请求的方法、路径、状态和耗时。
func requestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		logger.Infof("[http] %s %s -> %d (%s)",
			c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
		return err
	}
}
