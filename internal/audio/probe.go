// Package audio 提供对生成的 MP3 文件的只读探测。
package audio

import (
	"fmt"
	"os"

	"github.com/hajimehoshi/go-mp3"
)

// Duration 解码 MP3 文件并返回其时长（秒）。
// go-mp3 解码输出固定为 16-bit 双声道 PCM，每个采样帧 4 字节。
func Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("打开音频文件失败: %w", err)
	}
	defer f.Close()

	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		return 0, fmt.Errorf("MP3 解码失败: %w", err)
	}

	const bytesPerFrame = 4
	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		return 0, fmt.Errorf("MP3 采样率非法: %d", sampleRate)
	}

	return float64(decoder.Length()) / float64(sampleRate*bytesPerFrame), nil
}
