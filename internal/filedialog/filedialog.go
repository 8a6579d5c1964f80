package filedialog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/baaaaaaaka/eledminer/internal/router"
)

var ErrUnavailable = errors.New("no file dialog command configured")

// Command runs an external picker such as `zenity --file-selection`. Its first
// line of output is the chosen path. "{kind}" in any argument is replaced by
// the dialog kind; the kind is also exported as ELEDMINER_DIALOG_KIND.
type Command struct {
	Argv []string
}

func (c Command) Open(ctx context.Context, kind router.DialogKind) (string, bool, error) {
	if len(c.Argv) == 0 {
		return "", false, ErrUnavailable
	}
	args := make([]string, len(c.Argv))
	for i, a := range c.Argv {
		args[i] = strings.ReplaceAll(a, "{kind}", string(kind))
	}

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &out
	cmd.Env = append(os.Environ(), "ELEDMINER_DIALOG_KIND="+string(kind))
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		// Pickers exit 1 when the user cancels.
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return "", false, nil
		}
		return "", false, fmt.Errorf("run %s: %w", args[0], err)
	}

	line, _, _ := strings.Cut(out.String(), "\n")
	path := strings.TrimSpace(line)
	if path == "" {
		return "", false, nil
	}
	return path, true, nil
}
