// Package pipeline runs the per-reel extraction sequence: download, audio
// isolation, transcription, record assembly. Each stage is independently
// fallible; a failure is captured into the record rather than propagated, so
// one bad reel never aborts the traversal.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/ibeckermayer/reelscribe/internal/types"
)

// Stage names used in contained error messages.
const (
	StageDownload      = "download"
	StageAudioExtract  = "audio extraction"
	StageTranscription = "transcription"
)

// StageError identifies which pipeline stage failed for one reel. It is
// item-local: the traversal never sees it as an error, only as a record with
// the Error field set.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Downloader fetches the reel's video into a working directory.
type Downloader interface {
	Download(ctx context.Context, url, destDir string) (string, error)
}

// AudioExtractor isolates the audio track from a downloaded video.
type AudioExtractor interface {
	Extract(ctx context.Context, videoPath, destDir string) (string, error)
}

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outputDir string) (string, error)
}

// Pipeline orchestrates the extraction stages for accepted candidates.
type Pipeline struct {
	downloader Downloader
	audio      AudioExtractor
	transcribe Transcriber
}

// New creates a pipeline over the given collaborators.
func New(d Downloader, a AudioExtractor, t Transcriber) *Pipeline {
	return &Pipeline{downloader: d, audio: a, transcribe: t}
}

// Extract runs the full stage sequence for one accepted candidate and always
// returns a record. The record's timestamp is fixed at entry; caption was
// captured by the caller from the browsing surface and is carried through
// even when a later stage fails. Temporary media artifacts are removed on
// every exit path.
func (p *Pipeline) Extract(ctx context.Context, cand types.ReelCandidate, finalURL, caption string) types.ExtractionRecord {
	record := types.NewExtractionRecord(cand.ReelID, cand.RawURL, finalURL)
	record.Caption = caption

	tmpDir, err := os.MkdirTemp("", "reelscribe-"+cand.ReelID+"-")
	if err != nil {
		record.Error = (&StageError{Stage: StageDownload, Err: err}).Error()
		return record
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			slog.Warn("failed to clean up temp dir", "dir", tmpDir, "err", err)
		}
	}()

	videoPath, err := p.downloader.Download(ctx, finalURL, tmpDir)
	if err != nil {
		record.Error = (&StageError{Stage: StageDownload, Err: err}).Error()
		return record
	}

	audioPath, err := p.audio.Extract(ctx, videoPath, tmpDir)
	if err != nil {
		record.Error = (&StageError{Stage: StageAudioExtract, Err: err}).Error()
		return record
	}

	text, err := p.transcribe.Transcribe(ctx, audioPath, tmpDir)
	if err != nil {
		record.Error = (&StageError{Stage: StageTranscription, Err: err}).Error()
		return record
	}

	record.Transcription = text
	return record
}
