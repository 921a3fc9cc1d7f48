package e2e

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	expect "github.com/Netflix/go-expect"
	"github.com/creack/pty"
)

// buildMoments builds the moments binary for testing.
// Returns the path to the binary and a cleanup function.
func buildMoments(t *testing.T) (string, func()) {
	t.Helper()
	dir := t.TempDir()
	binPath := filepath.Join(dir, "moments")

	rootDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	// Assume we are in test/e2e, go up 2 levels
	rootDir = filepath.Join(rootDir, "..", "..")

	cmd := exec.Command("go", "build", "-o", binPath, "./cmd/moments")
	cmd.Dir = rootDir
	if out, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build failed: %v\n%s", err, out)
	}

	return binPath, func() { os.RemoveAll(dir) }
}

func TestE2E_OfflineFeed(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the binary")
	}
	binPath, cleanup := buildMoments(t)
	defer cleanup()

	// Clean home directory so the test uses a fresh ~/.moments/moments.db
	homeDir := t.TempDir()
	if err := seedFixtureDB(homeDir); err != nil {
		t.Fatalf("failed to seed fixture db: %v", err)
	}

	var outputBuf bytes.Buffer
	console, err := expect.NewConsole(
		expect.WithStdout(&outputBuf),
		expect.WithDefaultTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("failed to create console: %v", err)
	}
	defer console.Close()

	if err := pty.Setsize(console.Tty(), &pty.Winsize{Cols: 100, Rows: 30}); err != nil {
		t.Fatalf("failed to set pty size: %v", err)
	}

	cmd := exec.Command(binPath, "--offline")
	cmd.Env = append(os.Environ(), "HOME="+homeDir, "MOMENTS_UI_ANIMATE=false")
	cmd.Stdin = console.Tty()
	cmd.Stdout = console.Tty()
	cmd.Stderr = console.Tty()
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start: %v", err)
	}
	defer func() { _ = cmd.Process.Kill() }()

	dumpLogs := func() {
		logs, _ := filepath.Glob(filepath.Join(homeDir, ".moments", "logs", "*.log"))
		for _, p := range logs {
			if b, err := os.ReadFile(p); err == nil {
				t.Logf("%s:\n%s", filepath.Base(p), b)
			}
		}
	}

	// 1. First slide and position
	t.Log("Waiting for first slide...")
	if _, err := console.ExpectString("Fixture moment one"); err != nil {
		dumpLogs()
		t.Fatalf("first slide not shown: %v\nOutput buffer:\n%s", err, outputBuf.String())
	}
	if _, err := console.ExpectString("1/2"); err != nil {
		t.Fatalf("position not shown: %v\nOutput buffer:\n%s", err, outputBuf.String())
	}

	// 2. Advance
	time.Sleep(500 * time.Millisecond) // Allow UI to stabilize
	if _, err := console.Send("j"); err != nil {
		t.Fatalf("failed to send j: %v", err)
	}
	if _, err := console.ExpectString("2/2"); err != nil {
		t.Fatalf("j did not advance: %v\nOutput buffer:\n%s", err, outputBuf.String())
	}

	// 3. Quit
	time.Sleep(500 * time.Millisecond)
	if _, err := console.Send("q"); err != nil {
		t.Fatalf("failed to send q: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case <-done:
		t.Log("Process exited successfully")
	case <-time.After(3 * time.Second):
		dumpLogs()
		t.Error("Process did not exit after 'q'")
	}
}
