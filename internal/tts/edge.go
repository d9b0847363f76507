package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pp-group/edge-tts-go/biz/service/tts/edge"

	"github.com/iabetor/voxd/internal/logger"
)

// defaultVoices 语言代码 → Edge 神经网络语音。
// 覆盖 /languages 展示表中的常用语言，其余语言回退到 fallbackVoice。
var defaultVoices = map[string]string{
	"ar":    "ar-SA-ZariyahNeural",
	"bn":    "bn-BD-NabanitaNeural",
	"cs":    "cs-CZ-VlastaNeural",
	"da":    "da-DK-ChristelNeural",
	"de":    "de-DE-KatjaNeural",
	"el":    "el-GR-AthinaNeural",
	"en":    "en-US-AriaNeural",
	"es":    "es-ES-ElviraNeural",
	"fa":    "fa-IR-DilaraNeural",
	"fr":    "fr-FR-DeniseNeural",
	"he":    "he-IL-HilaNeural",
	"hi":    "hi-IN-SwaraNeural",
	"hu":    "hu-HU-NoemiNeural",
	"id":    "id-ID-GadisNeural",
	"it":    "it-IT-ElsaNeural",
	"ja":    "ja-JP-NanamiNeural",
	"ko":    "ko-KR-SunHiNeural",
	"ms":    "ms-MY-YasminNeural",
	"nl":    "nl-NL-ColetteNeural",
	"no":    "nb-NO-PernilleNeural",
	"pl":    "pl-PL-ZofiaNeural",
	"pt":    "pt-BR-FranciscaNeural",
	"ro":    "ro-RO-AlinaNeural",
	"ru":    "ru-RU-SvetlanaNeural",
	"sv":    "sv-SE-SofieNeural",
	"sw":    "sw-KE-ZuriNeural",
	"ta":    "ta-IN-PallaviNeural",
	"th":    "th-TH-PremwadeeNeural",
	"tr":    "tr-TR-EmelNeural",
	"uk":    "uk-UA-PolinaNeural",
	"ur":    "ur-PK-UzmaNeural",
	"vi":    "vi-VN-HoaiMyNeural",
	"zh-CN": "zh-CN-XiaoxiaoNeural",
	"zh-TW": "zh-TW-HsiaoChenNeural",
}

const fallbackVoice = "en-US-AriaNeural"

// EdgeEngine 使用微软 Edge TTS 实现语音合成，
// 通过 edge-tts-go 获取 MP3 音频并写入目标文件。语速使用默认值（不减速）。
type EdgeEngine struct {
	voices map[string]string
}

// NewEdgeEngine 创建 Edge TTS 引擎。
// overrides 允许按语言代码覆盖默认语音，可为 nil。
func NewEdgeEngine(overrides map[string]string) *EdgeEngine {
	voices := make(map[string]string, len(defaultVoices))
	for lang, voice := range defaultVoices {
		voices[lang] = voice
	}
	for lang, voice := range overrides {
		voices[lang] = voice
	}
	return &EdgeEngine{voices: voices}
}

// Synthesize 把文本合成为 MP3 并写入 outputPath。
func (e *EdgeEngine) Synthesize(ctx context.Context, text, lang, outputPath string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyText
	}

	voice := e.voiceFor(lang)
	logger.Debugf("[tts] edge-tts: 正在合成 %d 个字符，语音=%s", len([]rune(text)), voice)

	// 创建 Communicate 实例并通过 Stream() 获取 MP3 音频块
	comm, err := edge.NewCommunicate(text, edge.WithVoice(voice))
	if err != nil {
		return fmt.Errorf("edge-tts 创建实例失败: %w", err)
	}

	ch, err := comm.Stream()
	if err != nil {
		return fmt.Errorf("edge-tts 开始流式合成失败: %w", err)
	}

	// 从 channel 收集所有音频数据
	var mp3Buf bytes.Buffer
	for msg := range ch {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		// Stream() 返回的 map 中，type=="audio" 的条目包含音频数据
		if msgType, ok := msg["type"].(string); ok && msgType == "audio" {
			if data, ok := msg["data"].([]byte); ok {
				mp3Buf.Write(data)
			}
		}
	}

	if mp3Buf.Len() == 0 {
		return fmt.Errorf("edge-tts: 未收到音频数据")
	}

	if err := os.WriteFile(outputPath, mp3Buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("写入音频文件失败: %w", err)
	}

	logger.Debugf("[tts] edge-tts: 已写入 %d 字节 MP3 到 %s", mp3Buf.Len(), outputPath)
	return nil
}

// voiceFor 返回语言对应的语音，未配置的语言使用回退语音。
func (e *EdgeEngine) voiceFor(lang string) string {
	if voice, ok := e.voices[lang]; ok {
		return voice
	}
	logger.Warnf("[tts] edge-tts: 语言 %s 未配置语音，回退到 %s", lang, fallbackVoice)
	return fallbackVoice
}
