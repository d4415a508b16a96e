package provision

import (
	"strings"
	"testing"
)

func TestRenderSSHD(t *testing.T) {
	tests := []struct {
		name string
		data sshdData
		want []string
		not  []string
	}{
		{
			name: "hardened",
			data: sshdData{Port: 2222, DisableRootLogin: true, DisablePasswordAuth: true, MaxAuthTries: 3, AllowUsers: []string{"deploy", "ops"}},
			want: []string{"Port 2222", "PermitRootLogin no", "PasswordAuthentication no", "AllowUsers deploy ops"},
		},
		{
			name: "permissive",
			data: sshdData{Port: 22, MaxAuthTries: 3},
			want: []string{"PermitRootLogin prohibit-password", "PasswordAuthentication yes"},
			not:  []string{"AllowUsers"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := render("sshd.conf", tt.data)
			if err != nil {
				t.Fatalf("render() error = %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(out), w) {
					t.Errorf("missing %q in:\n%s", w, out)
				}
			}
			for _, n := range tt.not {
				if strings.Contains(string(out), n) {
					t.Errorf("unexpected %q in:\n%s", n, out)
				}
			}
		})
	}
}

func TestRender_MissingKey(t *testing.T) {
	if _, err := render("sudoers", map[string]string{}); err == nil {
		t.Error("render() with missing key should fail")
	}
}
