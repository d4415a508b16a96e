package entity

import (
	"fmt"
	"net"
	"regexp"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/valueobject"
)

var (
	usernamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)
	portRulePattern = regexp.MustCompile(`^(\d{1,5})(?::(\d{1,5}))?(?:/(tcp|udp))?$`)
)

type HostIP struct {
	Public  string `yaml:"public,omitempty"`
	Private string `yaml:"private,omitempty"`
}

func (i *HostIP) Validate() error {
	if i.Public != "" && net.ParseIP(i.Public) == nil {
		return fmt.Errorf("%w: public IP %s", domain.ErrInvalidIP, i.Public)
	}
	if i.Private != "" && net.ParseIP(i.Private) == nil {
		return fmt.Errorf("%w: private IP %s", domain.ErrInvalidIP, i.Private)
	}
	return nil
}

type HostSSH struct {
	Host     string                `yaml:"host"`
	Port     int                   `yaml:"port,omitempty"`
	User     string                `yaml:"user"`
	Password valueobject.SecretRef `yaml:"password,omitempty"`
	KeyFile  string                `yaml:"key_file,omitempty"`
}

func (s *HostSSH) GetPort() int {
	if s.Port == 0 {
		return constants.DefaultSSHPort
	}
	return s.Port
}

func (s *HostSSH) Validate() error {
	if s.Host == "" {
		return domain.RequiredField("ssh host")
	}
	if s.Port < 0 || s.Port > constants.MaxPortNumber {
		return fmt.Errorf("%w: ssh port must be between 1 and %d", domain.ErrInvalidPort, constants.MaxPortNumber)
	}
	if s.User == "" {
		return domain.RequiredField("ssh user")
	}
	if s.Password.IsEmpty() && s.KeyFile == "" {
		return domain.RequiredField("ssh password or key_file")
	}
	return nil
}

type Fail2ban struct {
	Enabled  bool `yaml:"enabled"`
	MaxRetry int  `yaml:"max_retry,omitempty"`
	BanTime  int  `yaml:"ban_time,omitempty"`
}

func (f Fail2ban) GetMaxRetry() int {
	if f.MaxRetry <= 0 {
		return 5
	}
	return f.MaxRetry
}

func (f Fail2ban) GetBanTime() int {
	if f.BanTime <= 0 {
		return 3600
	}
	return f.BanTime
}

// Provision describes the hardening applied by `host provision`.
type Provision struct {
	AdminUser           string   `yaml:"admin_user,omitempty"`
	AuthorizedKeys      []string `yaml:"authorized_keys,omitempty"`
	SSHPort             int      `yaml:"ssh_port,omitempty"`
	DisableRootLogin    *bool    `yaml:"disable_root_login,omitempty"`
	DisablePasswordAuth *bool    `yaml:"disable_password_auth,omitempty"`
	AllowedPorts        []string `yaml:"allowed_ports,omitempty"`
	SwarmPorts          bool     `yaml:"swarm_ports,omitempty"`
	Fail2ban            Fail2ban `yaml:"fail2ban,omitempty"`
	Auditd              bool     `yaml:"auditd,omitempty"`
	DockerLogMaxSize    string   `yaml:"docker_log_max_size,omitempty"`
}

func (p *Provision) RootLoginDisabled() bool {
	return p.DisableRootLogin == nil || *p.DisableRootLogin
}

func (p *Provision) PasswordAuthDisabled() bool {
	return p.DisablePasswordAuth == nil || *p.DisablePasswordAuth
}

func (p *Provision) GetSSHPort() int {
	if p.SSHPort == 0 {
		return constants.DefaultSSHPort
	}
	return p.SSHPort
}

func (p *Provision) GetDockerLogMaxSize() string {
	if p.DockerLogMaxSize == "" {
		return "10m"
	}
	return p.DockerLogMaxSize
}

func (p *Provision) Validate() error {
	if p.AdminUser != "" && !usernamePattern.MatchString(p.AdminUser) {
		return fmt.Errorf("%w: admin_user %q", domain.ErrInvalidName, p.AdminUser)
	}
	if p.SSHPort < 0 || p.SSHPort > constants.MaxPortNumber {
		return fmt.Errorf("%w: ssh_port %d", domain.ErrInvalidPort, p.SSHPort)
	}
	for _, rule := range p.AllowedPorts {
		if err := ValidatePortRule(rule); err != nil {
			return err
		}
	}
	if p.PasswordAuthDisabled() && len(p.AuthorizedKeys) == 0 {
		return fmt.Errorf("%w: password auth disabled without authorized_keys", domain.ErrLockoutRisk)
	}
	if p.RootLoginDisabled() && p.AdminUser == "" {
		return fmt.Errorf("%w: root login disabled without admin_user", domain.ErrLockoutRisk)
	}
	return nil
}

// ValidatePortRule accepts ufw style rules such as "8080", "443/tcp" or "60000:61000/udp".
func ValidatePortRule(rule string) error {
	m := portRulePattern.FindStringSubmatch(strings.TrimSpace(rule))
	if m == nil {
		return fmt.Errorf("%w: %q", domain.ErrInvalidPort, rule)
	}
	for _, part := range m[1:3] {
		if part == "" {
			continue
		}
		if _, err := ParsePort(part); err != nil {
			return err
		}
	}
	return nil
}

type HostSwarm struct {
	AdvertiseAddr string `yaml:"advertise_addr,omitempty"`
}

type Host struct {
	Name      string     `yaml:"name"`
	Local     bool       `yaml:"local,omitempty"`
	IP        HostIP     `yaml:"ip,omitempty"`
	SSH       HostSSH    `yaml:"ssh,omitempty"`
	Provision *Provision `yaml:"provision,omitempty"`
	Swarm     HostSwarm  `yaml:"swarm,omitempty"`
}

func (h *Host) Validate() error {
	if h.Name == "" {
		return fmt.Errorf("%w: host name is required", domain.ErrInvalidName)
	}
	if err := h.IP.Validate(); err != nil {
		return err
	}
	if !h.Local {
		if err := h.SSH.Validate(); err != nil {
			return err
		}
	}
	if h.Provision != nil {
		if err := h.Provision.Validate(); err != nil {
			return fmt.Errorf("provision: %w", err)
		}
	}
	if h.Swarm.AdvertiseAddr != "" && net.ParseIP(h.Swarm.AdvertiseAddr) == nil {
		return fmt.Errorf("%w: advertise_addr %s", domain.ErrInvalidIP, h.Swarm.AdvertiseAddr)
	}
	return nil
}

// AdvertiseAddr picks the swarm advertise address, falling back to the public IP.
func (h *Host) AdvertiseAddr() string {
	if h.Swarm.AdvertiseAddr != "" {
		return h.Swarm.AdvertiseAddr
	}
	return h.IP.Public
}

func (h *Host) GetProvision() *Provision {
	if h.Provision == nil {
		return &Provision{}
	}
	return h.Provision
}
