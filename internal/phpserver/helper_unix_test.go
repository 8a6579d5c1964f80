//go:build !windows

package phpserver

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/baaaaaaaka/eledminer/internal/env"
)

const fakePHPEnv = "ELEDMINER_FAKE_PHP"

// TestHelperProcess is the fake php binary. It only acts when launched by
// writeFakePHP's wrapper script.
func TestHelperProcess(t *testing.T) {
	if os.Getenv(fakePHPEnv) != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	os.Exit(runFakePHP(args))
}

func runFakePHP(args []string) int {
	if len(args) > 0 && args[0] == "--version" {
		fmt.Println(os.Getenv("FAKE_PHP_VERSION_LINE"))
		return 0
	}
	switch os.Getenv("FAKE_PHP_MODE") {
	case "exit":
		fmt.Fprintln(os.Stderr, "fake php: refusing to serve")
		return 3
	case "hang":
		time.Sleep(time.Minute)
		return 0
	}

	var addr string
	for i := 0; i+1 < len(args); i++ {
		if args[i] == "-S" {
			addr = args[i+1]
		}
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return 4
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Powered-By", "PHP/8.2.0")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"theme": os.Getenv(env.ThemeVar),
			"args":  args,
		})
	})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		_ = ln.Close()
		os.Exit(0)
	}()

	_ = (&http.Server{Handler: mux}).Serve(ln)
	return 0
}

// writeFakePHP returns an executable that re-enters this test binary as php.
func writeFakePHP(t *testing.T, mode string) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("executable: %v", err)
	}
	t.Setenv(fakePHPEnv, "1")
	t.Setenv("FAKE_PHP_MODE", mode)

	path := filepath.Join(t.TempDir(), "php")
	script := fmt.Sprintf("#!/bin/sh\nexec %q -test.run='^TestHelperProcess$' -- \"$@\"\n", exe)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake php: %v", err)
	}
	return path
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "php")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}
