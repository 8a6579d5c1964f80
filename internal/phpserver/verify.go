package phpserver

import (
	"bytes"
	"context"
	"os/exec"
	"regexp"
	"strings"
	"time"
)

const verifyTimeout = 5 * time.Second

var supportedVersion = regexp.MustCompile(`^PHP [78]\.`)

// VerifyExecutable reports whether path runs a supported PHP CLI. An empty
// path means "php" from PATH.
func VerifyExecutable(ctx context.Context, path string) bool {
	version, err := ExecutableVersion(ctx, path)
	return err == nil && supportedVersion.MatchString(version)
}

// ExecutableVersion returns the first line of `path --version`.
func ExecutableVersion(ctx context.Context, path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "php"
	}
	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, path, "--version")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(out.String(), "\n")
	return strings.TrimSpace(line), nil
}
