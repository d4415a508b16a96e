package ssh

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"golang.org/x/crypto/ssh"
)

func newTestKey(t *testing.T) ssh.PublicKey {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	key, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("wrap key: %v", err)
	}
	return key
}

func TestHostKeyCallback_TrustOnFirstUse(t *testing.T) {
	knownHosts := filepath.Join(t.TempDir(), "nested", "known_hosts")
	remote := &net.TCPAddr{IP: net.ParseIP("203.0.113.7"), Port: 22}
	key := newTestKey(t)

	cb, err := createHostKeyCallback(knownHosts)
	if err != nil {
		t.Fatalf("createHostKeyCallback() error = %v", err)
	}
	if err := cb("203.0.113.7:22", remote, key); err != nil {
		t.Fatalf("first connection should be accepted, got %v", err)
	}

	data, err := os.ReadFile(knownHosts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "203.0.113.7") {
		t.Errorf("known_hosts should contain host, got %q", data)
	}

	cb, err = createHostKeyCallback(knownHosts)
	if err != nil {
		t.Fatal(err)
	}
	if err := cb("203.0.113.7:22", remote, key); err != nil {
		t.Errorf("known key should be accepted, got %v", err)
	}

	err = cb("203.0.113.7:22", remote, newTestKey(t))
	if !errors.Is(err, domain.ErrSSHHostKeyMismatch) {
		t.Errorf("changed key should be rejected with ErrSSHHostKeyMismatch, got %v", err)
	}
}

func TestCreateHostKeyCallback_InvalidKnownHosts(t *testing.T) {
	knownHosts := filepath.Join(t.TempDir(), "known_hosts")
	if err := os.WriteFile(knownHosts, []byte("invalid content"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := createHostKeyCallback(knownHosts); err == nil {
		t.Error("expected error for invalid known_hosts")
	}
}

func TestAuthMethods(t *testing.T) {
	if _, err := authMethods(Options{}); !errors.Is(err, domain.ErrRequired) {
		t.Errorf("expected ErrRequired without credentials, got %v", err)
	}
	methods, err := authMethods(Options{Password: "secret"})
	if err != nil || len(methods) != 1 {
		t.Errorf("password auth: %d methods, err %v", len(methods), err)
	}
	if _, err := authMethods(Options{KeyFile: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("expected error for missing key file")
	}
}

func TestNewClient_InvalidKnownHosts(t *testing.T) {
	knownHosts := filepath.Join(t.TempDir(), "known_hosts")
	if err := os.WriteFile(knownHosts, []byte("invalid content"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := NewClient(Options{Host: "localhost", User: "deploy", Password: "x", KnownHostsPath: knownHosts})
	if err == nil {
		t.Error("expected error when known_hosts file is invalid, got nil")
	}
}
