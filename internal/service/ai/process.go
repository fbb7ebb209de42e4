package ai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kapu/wiki-tweets-go/internal/constants"
	"github.com/kapu/wiki-tweets-go/internal/util"
)

// processWaitDelay bounds how long Run waits for inherited pipes after the
// process was killed.
const processWaitDelay = 2 * time.Second

// runProcess runs name with args in dir and returns its trimmed stdout.
// Timeouts, non-zero exits and empty output are errors.
func runProcess(ctx context.Context, dir, name string, args []string, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	cmd.WaitDelay = processWaitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "", fmt.Errorf("process timed out after %s", timeout)
	}
	if err != nil {
		preview := util.TruncateString(strings.TrimSpace(stderr.String()), constants.GeneratorConfig.StderrPreviewRunes)
		if preview != "" {
			return "", fmt.Errorf("process failed: %w: %s", err, preview)
		}
		return "", fmt.Errorf("process failed: %w", err)
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", fmt.Errorf("process produced no output")
	}
	return out, nil
}
