package localexec

import (
	"os/exec"
	"strings"
	"testing"
)

func requireBash(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available")
	}
}

func TestRunner_Run(t *testing.T) {
	requireBash(t)
	r := NewRunner()

	stdout, stderr, err := r.Run("echo out; echo err >&2")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if strings.TrimSpace(stdout) != "out" || strings.TrimSpace(stderr) != "err" {
		t.Errorf("stdout=%q stderr=%q", stdout, stderr)
	}

	if _, _, err := r.Run("exit 3"); err == nil {
		t.Error("expected error for non-zero exit")
	}
}

func TestRunner_RunWithStdin(t *testing.T) {
	requireBash(t)
	stdout, _, err := NewRunner().RunWithStdin("s3cret", "cat")
	if err != nil {
		t.Fatalf("RunWithStdin() error = %v", err)
	}
	if stdout != "s3cret" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestRedact(t *testing.T) {
	if got := redact("docker login -p hunter2"); got != "docker ..." {
		t.Errorf("redact() = %q", got)
	}
	if got := redact("whoami"); got != "whoami" {
		t.Errorf("redact() = %q", got)
	}
}
