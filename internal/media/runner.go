// Package media wraps the external media utilities (yt-dlp, ffmpeg, whisper)
// behind narrow, injectable services.
package media

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external command. Services accept a custom runner
// for testing; the default shells out.
type CommandRunner func(ctx context.Context, name string, args ...string) error

func defaultRunner(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
