package provision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/lite-lake/infra-swarmops/internal/constants"
)

func TestChecker_CheckAll(t *testing.T) {
	client := newFakeClient().
		on("sudo -n true", response{}).
		on("docker --version", response{stdout: "Docker version 28.5.2, build ecc6942\n"}).
		on("ufw status", response{stdout: "Status: active\n"}).
		on("is-active fail2ban", response{stdout: "active\n"}).
		on("is-active auditd", response{stdout: "inactive\n", err: errExit}).
		on("sshd -T", response{stdout: "port 22\npermitrootlogin no\n"})
	engine := newFakeEngine()
	engine.swarmActive, engine.manager = true, true
	engine.networks[constants.ProxyNetwork] = true

	results := NewChecker(client, hardenedHost(), engine).CheckAll(context.Background())

	proxy := "Network " + constants.ProxyNetwork
	want := map[string]CheckStatus{
		"Connection":        CheckStatusOK,
		"Sudo Passwordless": CheckStatusOK,
		"Docker":            CheckStatusOK,
		"Swarm":             CheckStatusOK,
		proxy:               CheckStatusOK,
		"Firewall":          CheckStatusOK,
		"fail2ban":          CheckStatusOK,
		"auditd":            CheckStatusWarning,
		"SSH Root Login":    CheckStatusOK,
	}
	if len(results) != len(want) {
		t.Fatalf("got %d results, want %d", len(results), len(want))
	}
	for _, r := range results {
		if status, ok := want[r.Name]; !ok || status != r.Status {
			t.Errorf("%s = %v (%s), want %v", r.Name, r.Status, r.Message, status)
		}
		if r.Name == "Docker" && r.Message != "28.5.2" {
			t.Errorf("Docker message = %q", r.Message)
		}
	}
	if HasErrors(results) {
		t.Error("HasErrors() = true")
	}
}

func TestChecker_Failures(t *testing.T) {
	client := newFakeClient().
		on("sudo -n true", response{err: errExit}).
		on("docker --version", response{err: errExit}).
		on("sshd -T", response{stdout: "permitrootlogin yes\n"})
	engine := newFakeEngine()
	engine.infoErr = errors.New("cannot connect")

	c := NewChecker(client, hardenedHost(), engine)

	if r := c.CheckSudo(); r.Status != CheckStatusError {
		t.Errorf("CheckSudo() = %+v", r)
	}
	if r := c.CheckDocker(); r.Status != CheckStatusError {
		t.Errorf("CheckDocker() = %+v", r)
	}
	if r := c.CheckSwarm(context.Background()); r.Status != CheckStatusError {
		t.Errorf("CheckSwarm() = %+v", r)
	}
	if r := c.CheckRootLogin(); r.Status != CheckStatusWarning || r.Detail != "yes" {
		t.Errorf("CheckRootLogin() = %+v", r)
	}
	if r := c.CheckService("fail2ban", false); r.Status != CheckStatusOK {
		t.Errorf("CheckService(unwanted) = %+v", r)
	}
	if !HasErrors(c.CheckAll(context.Background())) {
		t.Error("HasErrors() = false")
	}
}

func TestFormatResults(t *testing.T) {
	out := FormatResults("edge-1", []CheckResult{
		{Name: "Docker", Status: CheckStatusOK, Message: "28.5.2"},
		{Name: "Firewall", Status: CheckStatusWarning, Message: "Inactive"},
		{Name: "Sudo Passwordless", Status: CheckStatusError, Message: "Requires password"},
	})
	for _, want := range []string{"[edge-1] Host Check", "✅ 28.5.2", "⚠️ Inactive", "❌ Requires password"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
