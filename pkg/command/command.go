// Package command runs external programs on behalf of the converter and
// the display backends.
//
// Both collaborators treat "program not installed" and "program exited
// non-zero" the same way: the attempt failed and the caller moves on to
// its next option. [IsUnavailable] reports exactly those two conditions.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes name with args and waits for it to finish.
type Runner func(ctx context.Context, name string, args ...string) error

// Exec is the default Runner. Combined output is folded into the error
// so failures are diagnosable from a single log line.
func Exec(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" {
			return fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// IsUnavailable reports whether err means the program is missing or
// exited with a non-zero status.
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var exitErr *exec.ExitError
	return errors.Is(err, exec.ErrNotFound) || errors.As(err, &exitErr)
}

// Available reports whether name resolves to an executable on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
