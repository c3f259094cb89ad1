package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ibeckermayer/reelscribe/internal/types"
)

type fakeDownloader struct {
	err  error
	dirs []string
}

func (f *fakeDownloader) Download(_ context.Context, _, destDir string) (string, error) {
	f.dirs = append(f.dirs, destDir)
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(destDir, "video.mp4")
	if err := os.WriteFile(path, []byte("fake video"), 0600); err != nil {
		return "", err
	}
	return path, nil
}

type fakeAudio struct {
	err error
}

func (f *fakeAudio) Extract(_ context.Context, videoPath, destDir string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(destDir, "video.mp3")
	if err := os.WriteFile(path, []byte("fake audio"), 0600); err != nil {
		return "", err
	}
	return path, nil
}

type fakeTranscriber struct {
	text string
	err  error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _, _ string) (string, error) {
	return f.text, f.err
}

func candidate() types.ReelCandidate {
	return types.ReelCandidate{
		RawURL: "https://www.instagram.com/reel/ABC/",
		ReelID: "ABC",
		Origin: types.OriginDirect,
	}
}

func TestExtractSuccess(t *testing.T) {
	dl := &fakeDownloader{}
	p := New(dl, &fakeAudio{}, &fakeTranscriber{text: "hello world"})

	rec := p.Extract(context.Background(), candidate(), "https://www.instagram.com/reel/ABC/final/", "a caption")

	if rec.Error != "" {
		t.Fatalf("unexpected error: %q", rec.Error)
	}
	if rec.Transcription != "hello world" {
		t.Errorf("transcription = %q", rec.Transcription)
	}
	if rec.Caption != "a caption" {
		t.Errorf("caption = %q", rec.Caption)
	}
	if rec.ReelID != "ABC" {
		t.Errorf("reel id = %q", rec.ReelID)
	}
	if rec.OriginalURL != "https://www.instagram.com/reel/ABC/" {
		t.Errorf("original url = %q", rec.OriginalURL)
	}
	if rec.FinalURL != "https://www.instagram.com/reel/ABC/final/" {
		t.Errorf("final url = %q", rec.FinalURL)
	}
	if rec.Timestamp == "" {
		t.Error("timestamp not set")
	}
}

func TestExtractStageFailures(t *testing.T) {
	tests := []struct {
		name      string
		pipeline  *Pipeline
		wantStage string
	}{
		{
			"download fails",
			New(&fakeDownloader{err: errors.New("404")}, &fakeAudio{}, &fakeTranscriber{text: "x"}),
			StageDownload,
		},
		{
			"audio extraction fails",
			New(&fakeDownloader{}, &fakeAudio{err: errors.New("no audio stream")}, &fakeTranscriber{text: "x"}),
			StageAudioExtract,
		},
		{
			"transcription fails",
			New(&fakeDownloader{}, &fakeAudio{}, &fakeTranscriber{err: errors.New("model crashed")}),
			StageTranscription,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.pipeline.Extract(context.Background(), candidate(), "https://final/", "caption kept")

			if rec.Error == "" {
				t.Fatal("expected contained error")
			}
			if !strings.Contains(rec.Error, tt.wantStage) {
				t.Errorf("error %q does not name stage %q", rec.Error, tt.wantStage)
			}
			// Invariant: error present implies empty transcription
			if rec.Transcription != "" {
				t.Errorf("transcription = %q, want empty on failure", rec.Transcription)
			}
			// Caption survives stage failures
			if rec.Caption != "caption kept" {
				t.Errorf("caption = %q", rec.Caption)
			}
			if rec.Timestamp == "" {
				t.Error("timestamp not set on failure record")
			}
		})
	}
}

func TestExtractCleansUpTempDir(t *testing.T) {
	dl := &fakeDownloader{}
	p := New(dl, &fakeAudio{}, &fakeTranscriber{text: "ok"})
	p.Extract(context.Background(), candidate(), "https://final/", "")

	if len(dl.dirs) != 1 {
		t.Fatalf("downloader saw %d dirs, want 1", len(dl.dirs))
	}
	if _, err := os.Stat(dl.dirs[0]); !os.IsNotExist(err) {
		t.Errorf("temp dir %q still exists", dl.dirs[0])
	}
}

func TestExtractCleansUpTempDirOnFailure(t *testing.T) {
	dl := &fakeDownloader{}
	p := New(dl, &fakeAudio{err: errors.New("boom")}, &fakeTranscriber{})
	p.Extract(context.Background(), candidate(), "https://final/", "")

	if len(dl.dirs) != 1 {
		t.Fatalf("downloader saw %d dirs, want 1", len(dl.dirs))
	}
	if _, err := os.Stat(dl.dirs[0]); !os.IsNotExist(err) {
		t.Errorf("temp dir %q still exists after failure", dl.dirs[0])
	}
}
