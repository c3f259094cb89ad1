package seed

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ibeckermayer/reelscribe/internal/types"
)

// fileSource reads newline-delimited reel URLs lazily, so a batch file larger
// than the requested count never gets fully parsed.
type fileSource struct {
	file    *os.File
	scanner *bufio.Scanner
	skipped int
}

// File creates a source over a newline-delimited URL file. Blank lines are
// ignored; lines that fail URL validation are soft-skipped with a warning,
// not fatal to the batch.
func File(path string) (Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSeedFile, err)
	}
	return &fileSource{
		file:    f,
		scanner: bufio.NewScanner(f),
	}, nil
}

func (fs *fileSource) Next(ctx context.Context) (types.ReelCandidate, error) {
	for fs.scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return types.ReelCandidate{}, err
		}

		line := strings.TrimSpace(fs.scanner.Text())
		if line == "" {
			continue
		}

		if err := validateReelURL(line); err != nil {
			fs.skipped++
			slog.Warn("skipping invalid seed line", "url", line, "err", err)
			continue
		}

		return types.ReelCandidate{
			RawURL: line,
			ReelID: ExtractReelID(line),
			Origin: types.OriginFile,
		}, nil
	}

	if err := fs.scanner.Err(); err != nil {
		return types.ReelCandidate{}, fmt.Errorf("%w: %v", ErrSeedFile, err)
	}
	return types.ReelCandidate{}, ErrExhausted
}

func (fs *fileSource) Close() error {
	return fs.file.Close()
}

// Skipped reports how many malformed lines were soft-skipped so far.
func (fs *fileSource) Skipped() int {
	return fs.skipped
}
