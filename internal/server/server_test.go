package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/iabetor/voxd/internal/config"
	"github.com/iabetor/voxd/internal/convert"
	"github.com/iabetor/voxd/internal/storage"
	"github.com/iabetor/voxd/internal/translate"
)

const testAPIKey = "test-key"

// fakeTranslator 假翻译后端。
type fakeTranslator struct {
	result string
	err    error
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.result, nil
}

// fakeSynth 假合成引擎，把文本写入目标文件。
type fakeSynth struct {
	err error
}

func (f *fakeSynth) Synthesize(ctx context.Context, text, lang, outputPath string) error {
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(outputPath, []byte(text), 0644)
}

func newTestServer(t *testing.T, tr translate.Engine, synthErr error) (*Server, *storage.Store) {
	t.Helper()

	store, err := storage.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Server.APIKey = testAPIKey

	conv := convert.New(translate.NewService(tr), &fakeSynth{err: synthErr}, store)
	return New(cfg, conv, store), store
}

func doJSON(t *testing.T, s *Server, method, path, apiKey string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if apiKey != "" {
		req.Header.Set("X-API-Key", apiKey)
	}

	resp, err := s.App().Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	return m
}

func TestTextEndpoint_Success(t *testing.T) {
	s, store := newTestServer(t, &fakeTranslator{}, nil)

	resp := doJSON(t, s, "POST", "/tts/text", testAPIKey, map[string]string{
		"text":     "Hello world",
		"language": "en",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Error("success 应当为 true")
	}
	if body["translation_applied"] != false {
		t.Error("translation_applied 应当为 false")
	}

	audioFile, _ := body["audio_file"].(string)
	if audioFile == "" || !store.Exists(audioFile) {
		t.Errorf("音频文件 %q 应当存在", audioFile)
	}
}

func TestTextEndpoint_WithTranslation(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{result: "Hola mundo"}, nil)

	resp := doJSON(t, s, "POST", "/tts/text", testAPIKey, map[string]string{
		"text":           "Hello world",
		"language":       "es",
		"translate_from": "en",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["translation_applied"] != true {
		t.Error("translation_applied 应当为 true")
	}
	if body["original_text"] != "Hello world" {
		t.Errorf("original_text = %v", body["original_text"])
	}
	if body["translated_text"] != "Hola mundo" {
		t.Errorf("translated_text = %v", body["translated_text"])
	}
}

func TestTextEndpoint_WrongAPIKey(t *testing.T) {
	s, store := newTestServer(t, &fakeTranslator{}, nil)

	resp := doJSON(t, s, "POST", "/tts/text", "wrong-key", map[string]string{
		"text":     "Hello world",
		"language": "en",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["detail"] != "Invalid API key" {
		t.Errorf("detail = %v", body["detail"])
	}

	entries, err := os.ReadDir(store.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Error("鉴权失败时不应写入任何文件")
	}
}

func TestTextEndpoint_MissingAPIKey(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{}, nil)

	resp := doJSON(t, s, "POST", "/tts/text", "", map[string]string{"text": "hi"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestTextEndpoint_UnsupportedLanguage(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{}, nil)

	resp := doJSON(t, s, "POST", "/tts/text", testAPIKey, map[string]string{
		"text":     "Hello",
		"language": "klingon",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	detail, _ := body["detail"].(string)
	if !strings.Contains(detail, "klingon") {
		t.Errorf("detail = %q, 应当包含无效标识", detail)
	}
}

func TestTextEndpoint_EmptyText(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{}, nil)

	resp := doJSON(t, s, "POST", "/tts/text", testAPIKey, map[string]string{
		"text":     "",
		"language": "en",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestTextEndpoint_SynthesisFailure(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{}, errors.New("provider down"))

	resp := doJSON(t, s, "POST", "/tts/text", testAPIKey, map[string]string{
		"text":     "Hello",
		"language": "en",
	})
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
}

func TestFileEndpoint_UnsupportedType(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "data.csv")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("a,b,c"))
	mw.WriteField("language", "en")
	mw.Close()

	req := httptest.NewRequest("POST", "/tts/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", testAPIKey)

	resp, err := s.App().Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["detail"] != "Unsupported file type. Use PDF, DOCX, or TXT" {
		t.Errorf("detail = %v", body["detail"])
	}
}

func TestFileEndpoint_TXT(t *testing.T) {
	s, store := newTestServer(t, &fakeTranslator{}, nil)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "notes.txt")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write([]byte("Hello from a file"))
	mw.WriteField("language", "en")
	mw.WriteField("custom_filename", "my notes")
	mw.Close()

	req := httptest.NewRequest("POST", "/tts/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-API-Key", testAPIKey)

	resp, err := s.App().Test(req, 5000)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["audio_file"] != "my_notes.mp3" {
		t.Errorf("audio_file = %v", body["audio_file"])
	}
	if !store.Exists("my_notes.mp3") {
		t.Error("音频文件应当存在")
	}
}

func TestDownload_NotFound(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{}, nil)

	resp := doJSON(t, s, "GET", "/audio/nonexistent.mp3", testAPIKey, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDownload_ServesAudio(t *testing.T) {
	s, store := newTestServer(t, &fakeTranslator{}, nil)

	if err := os.WriteFile(store.Path("a.mp3"), []byte("mp3-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	resp := doJSON(t, s, "GET", "/audio/a.mp3", testAPIKey, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if string(data) != "mp3-bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestDownload_RequiresAPIKey(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{}, nil)

	resp := doJSON(t, s, "GET", "/audio/a.mp3", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestLanguages_NoAuth(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{}, nil)

	resp := doJSON(t, s, "GET", "/languages", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	langs, ok := body["supported_languages"].(map[string]interface{})
	if !ok {
		t.Fatalf("supported_languages 类型 = %T", body["supported_languages"])
	}
	if langs["en"] != "English" {
		t.Errorf("supported_languages[en] = %v", langs["en"])
	}
}

func TestHealth_NoAuth(t *testing.T) {
	s, _ := newTestServer(t, &fakeTranslator{}, nil)

	resp := doJSON(t, s, "GET", "/health", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["status"] != "healthy" {
		t.Errorf("status 字段 = %v", body["status"])
	}
}
