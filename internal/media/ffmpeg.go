package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// FFmpegCommand is the audio extraction binary.
const FFmpegCommand = "ffmpeg"

// AudioExtractor pulls the audio track out of a downloaded video with ffmpeg.
type AudioExtractor struct {
	binary string
	runner CommandRunner
}

// NewAudioExtractor creates an audio extractor.
func NewAudioExtractor() *AudioExtractor {
	return &AudioExtractor{
		binary: FFmpegCommand,
		runner: defaultRunner,
	}
}

// WithRunner sets a custom command runner (for testing).
func (a *AudioExtractor) WithRunner(runner CommandRunner) *AudioExtractor {
	a.runner = runner
	return a
}

// Extract writes the video's audio track as a 128k mp3 next to destDir and
// returns its path. The bitrate cap keeps files small enough for the
// transcription model regardless of reel length.
func (a *AudioExtractor) Extract(ctx context.Context, videoPath, destDir string) (string, error) {
	base := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	audioPath := filepath.Join(destDir, base+".mp3")

	args := []string{
		"-y",
		"-i", videoPath,
		"-vn",
		"-map", "a",
		"-b:a", "128k",
		audioPath,
	}

	if err := a.runner(ctx, a.binary, args...); err != nil {
		return "", fmt.Errorf("extract audio: %w", err)
	}

	return audioPath, nil
}
