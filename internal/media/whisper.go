package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WhisperCommand is the transcription binary.
const WhisperCommand = "whisper"

// DefaultModel is used when no model size is configured.
const DefaultModel = "base"

// modelSizes are the accepted whisper model names, smallest to largest.
var modelSizes = map[string]bool{
	"tiny":   true,
	"base":   true,
	"small":  true,
	"medium": true,
	"large":  true,
}

// Transcriber runs the whisper CLI against extracted audio files.
type Transcriber struct {
	binary   string
	model    string
	language string
	timeout  time.Duration
	runner   CommandRunner
}

// NewTranscriber creates a transcriber for the given model size. An unknown
// size falls back to the default.
func NewTranscriber(modelSize, language string, timeout time.Duration) *Transcriber {
	if !modelSizes[modelSize] {
		modelSize = DefaultModel
	}
	return &Transcriber{
		binary:   WhisperCommand,
		model:    modelSize,
		language: language,
		timeout:  timeout,
		runner:   defaultRunner,
	}
}

// WithRunner sets a custom command runner (for testing).
func (t *Transcriber) WithRunner(runner CommandRunner) *Transcriber {
	t.runner = runner
	return t
}

// Model returns the configured model size for logging.
func (t *Transcriber) Model() string {
	return t.model
}

// Transcribe converts an audio file to text. Whisper writes its output files
// into outputDir; the plain-text variant is read back and returned.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, outputDir string) (string, error) {
	if audioPath == "" {
		return "", fmt.Errorf("transcribe: audio path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}

	args := []string{
		audioPath,
		"--model", t.model,
		"--output_format", "txt",
		"--output_dir", outputDir,
		"--fp16", "False",
	}
	if t.language != "" {
		args = append(args, "--language", t.language)
	}

	runCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	if err := t.runner(runCtx, t.binary, args...); err != nil {
		return "", fmt.Errorf("whisper: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	textPath := filepath.Join(outputDir, baseName+".txt")

	data, err := os.ReadFile(textPath)
	if err != nil {
		return "", fmt.Errorf("whisper: read transcript: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}
