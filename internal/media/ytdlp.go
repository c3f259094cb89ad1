package media

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// YTDLPCommand is the download utility binary.
const YTDLPCommand = "yt-dlp"

// Downloader fetches reel videos via yt-dlp.
type Downloader struct {
	binary  string
	timeout time.Duration
	runner  CommandRunner
}

// NewDownloader creates a downloader. A zero timeout means no per-download
// timeout beyond the caller's context.
func NewDownloader(timeout time.Duration) *Downloader {
	return &Downloader{
		binary:  YTDLPCommand,
		timeout: timeout,
		runner:  defaultRunner,
	}
}

// WithRunner sets a custom command runner (for testing).
func (d *Downloader) WithRunner(runner CommandRunner) *Downloader {
	d.runner = runner
	return d
}

// Download fetches the video at url into destDir and returns the local path.
// One transparent retry absorbs transient network failures.
func (d *Downloader) Download(ctx context.Context, url, destDir string) (string, error) {
	videoPath := filepath.Join(destDir, "video.mp4")
	args := []string{"-f", "best", "-o", videoPath, url}

	runCtx := ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	err := d.runner(runCtx, d.binary, args...)
	if err != nil && runCtx.Err() == nil {
		slog.Warn("download failed, retrying once", "url", url, "err", err)
		err = d.runner(runCtx, d.binary, args...)
	}
	if err != nil {
		return "", fmt.Errorf("download video: %w", err)
	}

	return videoPath, nil
}
