package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("STUDYROOM_USER", "")
	path := filepath.Join(dir, "config.toml")
	content := `user_id = "tester"

[paths]
data_dir = "` + filepath.ToSlash(filepath.Join(dir, "data")) + `"
log_dir = "` + filepath.ToSlash(filepath.Join(dir, "logs")) + `"

[tracker]
timezone = "UTC"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func requireContains(t *testing.T, out, want string) {
	t.Helper()
	if !strings.Contains(out, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, out)
	}
}

func TestLogThenListSessions(t *testing.T) {
	cfgPath := writeTestConfig(t)

	out, err := runCLI(t, "--config", cfgPath, "log", "25")
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	requireContains(t, out, "Logged 25m")

	out, err = runCLI(t, "--config", cfgPath, "logs")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	requireContains(t, out, "25m")
	requireContains(t, out, "25 min")
	requireContains(t, out, "Recent window: 1 of 7 sessions")
	requireContains(t, out, "Streak: 1 day(s)")

	out, err = runCLI(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "No archived sessions")
}

func TestLogRotatesIntoHistory(t *testing.T) {
	cfgPath := writeTestConfig(t)

	for i := 0; i < 8; i++ {
		if _, err := runCLI(t, "--config", cfgPath, "log", "1h"); err != nil {
			t.Fatalf("log %d: %v", i, err)
		}
	}

	out, err := runCLI(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "60 min")

	out, err = runCLI(t, "--config", cfgPath, "history", "--clear")
	if err != nil {
		t.Fatalf("history --clear: %v", err)
	}
	requireContains(t, out, "Deleted 1 archived session(s)")
}

func TestLogRejectsBadDuration(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCLI(t, "--config", cfgPath, "log", "soon"); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestUserFlagOverridesConfig(t *testing.T) {
	cfgPath := writeTestConfig(t)
	if _, err := runCLI(t, "--config", cfgPath, "--user", "other", "log", "10"); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "--config", cfgPath, "logs")
	if err != nil {
		t.Fatal(err)
	}
	requireContains(t, out, "No study sessions yet")
}

func TestConfigInitAndValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse overwriting")
	}

	out, err = runCLI(t, "--config", target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}
