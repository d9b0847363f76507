// Package storage 管理生成的音频文件目录和上传文件的临时存放。
// 输出目录是一个扁平目录，文件只增不改，不维护任何索引。
package storage

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AudioExt 生成音频的统一扩展名。
const AudioExt = ".mp3"

// Store 是生成音频的文件存储。
type Store struct {
	dir string
}

// NewStore 创建存储并确保输出目录存在。
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		dir = "generated_audio"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("创建输出目录失败: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir 返回输出目录路径。
func (s *Store) Dir() string {
	return s.dir
}

// Path 返回文件名在输出目录内的完整路径。
// 只取 name 的基础名，防止路径穿越。
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// Exists 判断文件是否存在于输出目录。
func (s *Store) Exists(name string) bool {
	info, err := os.Stat(s.Path(name))
	return err == nil && !info.IsDir()
}

// SaveTemp 把上传内容写入带随机前缀的临时文件，返回路径和清理函数。
// 清理函数在每条处理路径上都必须调用（通常 defer）。
func (s *Store) SaveTemp(uploadName string, r io.Reader) (string, func(), error) {
	path := filepath.Join(os.TempDir(),
		fmt.Sprintf("voxd_%s_%s", uuid.NewString(), filepath.Base(uploadName)))

	f, err := os.Create(path)
	if err != nil {
		return "", nil, fmt.Errorf("创建临时文件失败: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("写入临时文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("关闭临时文件失败: %w", err)
	}

	cleanup := func() { os.Remove(path) }
	return path, cleanup, nil
}

// FileName 为输出音频生成文件名。
// 指定 customName 时把空格替换为下划线；否则用
// speech_<时间戳>_<文本 MD5 前 8 位> 组合出实际唯一的名称。
// 同一秒内对同一文本的并发请求会得到相同名称，后写者覆盖（已知接受的弱保证）。
func FileName(finalText, customName string) string {
	if customName != "" {
		return strings.ReplaceAll(customName, " ", "_") + AudioExt
	}

	sum := md5.Sum([]byte(finalText))
	hash := hex.EncodeToString(sum[:])[:8]
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("speech_%s_%s%s", timestamp, hash, AudioExt)
}
