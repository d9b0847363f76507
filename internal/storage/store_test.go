package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func TestFileName_CustomName(t *testing.T) {
	tests := []struct{ custom, want string }{
		{"my audio", "my_audio.mp3"},
		{"greeting", "greeting.mp3"},
		{"a b c", "a_b_c.mp3"},
	}
	for _, tt := range tests {
		if got := FileName("ignored", tt.custom); got != tt.want {
			t.Errorf("FileName(custom=%q) = %q, want %q", tt.custom, got, tt.want)
		}
	}
}

func TestFileName_Generated(t *testing.T) {
	got := FileName("Hello world", "")

	pattern := regexp.MustCompile(`^speech_\d{8}_\d{6}_[0-9a-f]{8}\.mp3$`)
	if !pattern.MatchString(got) {
		t.Errorf("FileName() = %q, 不符合 speech_<时间戳>_<哈希>.mp3 格式", got)
	}

	// 同一秒内同一文本生成的名称相同（接受的弱保证），不同文本哈希不同
	other := FileName("Goodbye world", "")
	if strings.HasSuffix(got, other[len(other)-12:]) {
		t.Errorf("不同文本生成了相同哈希: %q vs %q", got, other)
	}
}

func TestStore_PathTraversalGuard(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	got := store.Path("../../etc/passwd")
	if filepath.Dir(got) != store.Dir() {
		t.Errorf("Path() = %q 逃出了输出目录", got)
	}
	if filepath.Base(got) != "passwd" {
		t.Errorf("Path() 基础名 = %q", filepath.Base(got))
	}
}

func TestStore_Exists(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if store.Exists("nope.mp3") {
		t.Error("Exists() 对不存在的文件应当返回 false")
	}

	if err := os.WriteFile(store.Path("a.mp3"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if !store.Exists("a.mp3") {
		t.Error("Exists() 对已写入的文件应当返回 true")
	}
}

func TestStore_SaveTemp(t *testing.T) {
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	path, cleanup, err := store.SaveTemp("doc.pdf", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("SaveTemp() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取临时文件失败: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("临时文件内容 = %q", data)
	}
	if !strings.HasSuffix(path, "_doc.pdf") {
		t.Errorf("临时文件名 = %q, 应当保留上传文件名后缀", path)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("cleanup() 后临时文件应当被删除")
	}
}

func TestNewStore_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "audio")
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	info, err := os.Stat(store.Dir())
	if err != nil || !info.IsDir() {
		t.Errorf("NewStore() 应当创建输出目录: %v", err)
	}
}
