package entity

import (
	"errors"
	"testing"

	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/valueobject"
)

func boolPtr(b bool) *bool { return &b }

func TestHostIP_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ip      HostIP
		wantErr error
	}{
		{name: "empty ips are valid", ip: HostIP{}},
		{name: "invalid public ip", ip: HostIP{Public: "invalid"}, wantErr: domain.ErrInvalidIP},
		{name: "invalid private ip", ip: HostIP{Private: "10.0.0"}, wantErr: domain.ErrInvalidIP},
		{name: "valid ipv4", ip: HostIP{Public: "203.0.113.1", Private: "10.0.0.1"}},
		{name: "valid ipv6", ip: HostIP{Public: "2001:db8::1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ip.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestHostSSH_Validate(t *testing.T) {
	tests := []struct {
		name    string
		ssh     HostSSH
		wantErr error
	}{
		{
			name:    "missing host",
			ssh:     HostSSH{User: "root", Password: valueobject.SecretRef{Plain: "pass"}},
			wantErr: domain.ErrRequired,
		},
		{
			name:    "port out of range",
			ssh:     HostSSH{Host: "vps", Port: 70000, User: "root", Password: valueobject.SecretRef{Plain: "pass"}},
			wantErr: domain.ErrInvalidPort,
		},
		{
			name:    "missing user",
			ssh:     HostSSH{Host: "vps", Password: valueobject.SecretRef{Plain: "pass"}},
			wantErr: domain.ErrRequired,
		},
		{
			name:    "no credentials",
			ssh:     HostSSH{Host: "vps", User: "root"},
			wantErr: domain.ErrRequired,
		},
		{
			name: "password auth",
			ssh:  HostSSH{Host: "vps", User: "root", Password: valueobject.SecretRef{Secret: "root_pass"}},
		},
		{
			name: "key auth",
			ssh:  HostSSH{Host: "vps", Port: 2222, User: "deploy", KeyFile: "~/.ssh/id_ed25519"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ssh.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestHostSSH_GetPort(t *testing.T) {
	if got := (&HostSSH{}).GetPort(); got != 22 {
		t.Errorf("GetPort() = %d, want 22", got)
	}
	if got := (&HostSSH{Port: 2222}).GetPort(); got != 2222 {
		t.Errorf("GetPort() = %d, want 2222", got)
	}
}

func TestProvision_Validate(t *testing.T) {
	tests := []struct {
		name    string
		p       Provision
		wantErr error
	}{
		{
			name:    "password auth disabled without keys",
			p:       Provision{AdminUser: "deploy"},
			wantErr: domain.ErrLockoutRisk,
		},
		{
			name:    "root login disabled without admin user",
			p:       Provision{AuthorizedKeys: []string{"ssh-ed25519 AAAA"}},
			wantErr: domain.ErrLockoutRisk,
		},
		{
			name: "root login kept without admin user",
			p: Provision{
				AuthorizedKeys:   []string{"ssh-ed25519 AAAA"},
				DisableRootLogin: boolPtr(false),
			},
		},
		{
			name:    "invalid admin user",
			p:       Provision{AdminUser: "Bad User", AuthorizedKeys: []string{"k"}},
			wantErr: domain.ErrInvalidName,
		},
		{
			name:    "invalid port rule",
			p:       Provision{AdminUser: "deploy", AuthorizedKeys: []string{"k"}, AllowedPorts: []string{"http"}},
			wantErr: domain.ErrInvalidPort,
		},
		{
			name:    "port rule out of range",
			p:       Provision{AdminUser: "deploy", AuthorizedKeys: []string{"k"}, AllowedPorts: []string{"99999/tcp"}},
			wantErr: domain.ErrInvalidPort,
		},
		{
			name: "full hardening",
			p: Provision{
				AdminUser:      "deploy",
				AuthorizedKeys: []string{"ssh-ed25519 AAAA"},
				SSHPort:        2222,
				AllowedPorts:   []string{"8080", "5432/tcp", "60000:61000/udp"},
				SwarmPorts:     true,
				Fail2ban:       Fail2ban{Enabled: true},
				Auditd:         true,
			},
		},
		{
			name: "password auth explicitly kept",
			p: Provision{
				AdminUser:           "deploy",
				DisablePasswordAuth: boolPtr(false),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestProvision_Defaults(t *testing.T) {
	p := &Provision{}
	if !p.RootLoginDisabled() || !p.PasswordAuthDisabled() {
		t.Error("root login and password auth should be disabled by default")
	}
	if p.GetSSHPort() != 22 {
		t.Errorf("GetSSHPort() = %d", p.GetSSHPort())
	}
	if p.GetDockerLogMaxSize() != "10m" {
		t.Errorf("GetDockerLogMaxSize() = %s", p.GetDockerLogMaxSize())
	}
	if p.Fail2ban.GetMaxRetry() != 5 || p.Fail2ban.GetBanTime() != 3600 {
		t.Error("unexpected fail2ban defaults")
	}
}

func TestHost_Validate(t *testing.T) {
	tests := []struct {
		name    string
		host    Host
		wantErr error
	}{
		{name: "missing name", host: Host{Local: true}, wantErr: domain.ErrInvalidName},
		{name: "local host needs no ssh", host: Host{Name: "laptop", Local: true}},
		{name: "remote host needs ssh", host: Host{Name: "vps"}, wantErr: domain.ErrRequired},
		{
			name:    "invalid advertise addr",
			host:    Host{Name: "vps", Local: true, Swarm: HostSwarm{AdvertiseAddr: "eth0"}},
			wantErr: domain.ErrInvalidIP,
		},
		{
			name:    "provision errors surface",
			host:    Host{Name: "vps", Local: true, Provision: &Provision{}},
			wantErr: domain.ErrLockoutRisk,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.host.Validate()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error = %v", err)
			}
		})
	}
}

func TestHost_AdvertiseAddr(t *testing.T) {
	h := Host{IP: HostIP{Public: "203.0.113.10"}}
	if h.AdvertiseAddr() != "203.0.113.10" {
		t.Errorf("AdvertiseAddr() = %q", h.AdvertiseAddr())
	}
	h.Swarm.AdvertiseAddr = "10.0.0.5"
	if h.AdvertiseAddr() != "10.0.0.5" {
		t.Errorf("AdvertiseAddr() = %q", h.AdvertiseAddr())
	}
}
