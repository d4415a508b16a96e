package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/application/ensure"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/ssh"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/transport"
)

const (
	sshdDropIn      = "/etc/ssh/sshd_config.d/99-swarmops.conf"
	jailLocal       = "/etc/fail2ban/jail.local"
	auditRules      = "/etc/audit/rules.d/99-swarmops.rules"
	dockerDaemon    = "/etc/docker/daemon.json"
	sudoersDir      = "/etc/sudoers.d"
	dockerLogFiles  = 3
	sshMaxAuthTries = 3

	basePackages     = "ufw fail2ban auditd curl ca-certificates"
	dockerScript     = "https://get.docker.com"
	dockerScriptPath = "/tmp/get-docker.sh"
)

var swarmPorts = []string{"2377/tcp", "7946/tcp", "7946/udp", "4789/udp"}

var errSkipped = errors.New("skipped")

// Provisioner hardens a host and prepares it for swarm deployments.
type Provisioner struct {
	client  contract.HostClient
	host    *entity.Host
	cfg     *entity.Provision
	ensurer *ensure.Ensurer
}

func NewProvisioner(client contract.HostClient, host *entity.Host, engine contract.Engine) *Provisioner {
	return &Provisioner{
		client:  client,
		host:    host,
		cfg:     host.GetProvision(),
		ensurer: ensure.New(engine),
	}
}

// Run executes the steps in their fixed order. The first failure stops the run
// and every later step is reported as skipped.
func (p *Provisioner) Run(ctx context.Context, steps []Step) []SyncResult {
	ctx = logger.WithHost(logger.WithOperation(ctx, "provision"), p.host.Name)
	log := logger.FromContext(ctx)

	selected := make(map[Step]bool, len(steps))
	for _, s := range steps {
		selected[s] = true
	}

	var results []SyncResult
	var failed Step
	for _, step := range AllSteps {
		if !selected[step] {
			continue
		}
		if failed != "" {
			results = append(results, SyncResult{
				Name:    string(step),
				Skipped: true,
				Message: fmt.Sprintf("not run: %s failed", failed),
			})
			continue
		}

		var msg string
		err := logger.TimedOperation(ctx, "provision."+string(step), func() error {
			var err error
			msg, err = p.runStep(ctx, step)
			if errors.Is(err, errSkipped) {
				return nil
			}
			return err
		})
		switch {
		case err != nil:
			failed = step
			results = append(results, SyncResult{
				Name:    string(step),
				Message: "Failed",
				Error:   fmt.Errorf("%w: %s: %w", domain.ErrProvisionStep, step, err),
			})
		case msg == "" || strings.HasPrefix(msg, "skipped"):
			results = append(results, SyncResult{Name: string(step), Skipped: true, Message: msg})
		default:
			log.Info("provision step done", "step", step, "result", msg)
			results = append(results, SyncResult{Name: string(step), Success: true, Message: msg})
		}
	}
	return results
}

func (p *Provisioner) runStep(ctx context.Context, step Step) (string, error) {
	switch step {
	case StepPackages:
		return p.packages()
	case StepUser:
		return p.user()
	case StepSSH:
		return p.sshd()
	case StepFirewall:
		return p.firewall()
	case StepFail2ban:
		return p.fail2ban()
	case StepAuditd:
		return p.auditd()
	case StepDocker:
		return p.docker()
	case StepSwarm:
		res, err := p.ensurer.EnsureSwarm(ctx, p.host.AdvertiseAddr())
		if err != nil {
			return "", err
		}
		return res.String(), nil
	case StepNetwork:
		res, err := p.ensurer.EnsureNetwork(ctx, constants.ProxyNetwork, ensure.Labels(""))
		if err != nil {
			return "", err
		}
		return res.String(), nil
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownStep, step)
}

func (p *Provisioner) packages() (string, error) {
	if err := p.run("apt-get update", "sudo DEBIAN_FRONTEND=noninteractive apt-get update -q"); err != nil {
		return "", err
	}
	if err := p.run("apt-get install", "sudo DEBIAN_FRONTEND=noninteractive apt-get install -y -q "+basePackages); err != nil {
		return "", err
	}
	return "Installed " + basePackages, nil
}

func (p *Provisioner) user() (string, error) {
	name := p.cfg.AdminUser
	if name == "" {
		return "skipped: no admin_user configured", errSkipped
	}
	quoted := ssh.ShellEscape(name)

	created := false
	if _, _, err := p.client.Run("id -u " + quoted); err != nil {
		if err := p.run("useradd", "sudo useradd -m -s /bin/bash "+quoted); err != nil {
			return "", err
		}
		created = true
	}
	if err := p.run("usermod", "sudo usermod -aG sudo "+quoted); err != nil {
		return "", err
	}

	if len(p.cfg.AuthorizedKeys) > 0 {
		sshDir := homeDir(name) + "/.ssh"
		if err := p.client.MkdirAllSudoWithPerm(sshDir, "700"); err != nil {
			return "", err
		}
		keys := strings.Join(p.cfg.AuthorizedKeys, "\n") + "\n"
		if err := transport.SyncContent(p.client, []byte(keys), sshDir+"/authorized_keys", "600"); err != nil {
			return "", err
		}
		if err := p.run("chown", fmt.Sprintf("sudo chown -R %s:%s %s", quoted, quoted, ssh.ShellEscape(sshDir))); err != nil {
			return "", err
		}
	}

	if err := p.installSudoers(name); err != nil {
		return "", err
	}

	if created {
		return fmt.Sprintf("Created %s", name), nil
	}
	return fmt.Sprintf("Updated %s", name), nil
}

// installSudoers stages the drop-in under a dotted name, which sudo ignores,
// and only moves it into place once visudo accepts it.
func (p *Provisioner) installSudoers(name string) error {
	content, err := render("sudoers", sudoersData{User: name})
	if err != nil {
		return err
	}
	final := fmt.Sprintf("%s/90-swarmops-%s", sudoersDir, name)
	staged := fmt.Sprintf("%s/.swarmops-%s.tmp", sudoersDir, name)
	if err := transport.SyncContent(p.client, content, staged, "440"); err != nil {
		return err
	}
	if err := p.run("visudo", "sudo visudo -cf "+ssh.ShellEscape(staged)); err != nil {
		p.client.Run("sudo rm -f " + ssh.ShellEscape(staged))
		return err
	}
	return p.run("install sudoers", fmt.Sprintf("sudo mv %s %s", ssh.ShellEscape(staged), ssh.ShellEscape(final)))
}

func (p *Provisioner) sshd() (string, error) {
	if err := p.checkLockout(); err != nil {
		return "", err
	}

	port := p.cfg.GetSSHPort()
	content, err := render("sshd.conf", sshdData{
		Port:                port,
		DisableRootLogin:    p.cfg.RootLoginDisabled(),
		DisablePasswordAuth: p.cfg.PasswordAuthDisabled(),
		MaxAuthTries:        sshMaxAuthTries,
		AllowUsers:          p.allowUsers(),
	})
	if err != nil {
		return "", err
	}
	if err := transport.SyncContent(p.client, content, sshdDropIn, "644"); err != nil {
		return "", err
	}
	if err := p.run("sshd -t", "sudo sshd -t"); err != nil {
		p.client.Run("sudo rm -f " + sshdDropIn)
		return "", err
	}

	// A port change must be reachable before sshd starts listening on it.
	if stdout, _, err := p.client.Run("sudo ufw status 2>/dev/null"); err == nil && strings.Contains(stdout, "Status: active") {
		if err := p.run("ufw allow", fmt.Sprintf("sudo ufw allow %d/tcp", port)); err != nil {
			return "", err
		}
	}

	if err := p.run("reload ssh", "sudo systemctl reload ssh || sudo systemctl reload sshd"); err != nil {
		return "", err
	}
	return fmt.Sprintf("sshd on port %d", port), nil
}

func (p *Provisioner) checkLockout() error {
	login := p.loginUser()
	if p.cfg.RootLoginDisabled() && login == "root" {
		return fmt.Errorf("%w: root login disabled and no admin_user", domain.ErrLockoutRisk)
	}
	if !p.cfg.PasswordAuthDisabled() {
		return nil
	}
	keys := homeDir(login) + "/.ssh/authorized_keys"
	if _, _, err := p.client.Run("sudo test -s " + ssh.ShellEscape(keys)); err != nil {
		return fmt.Errorf("%w: password auth disabled but %s is empty", domain.ErrLockoutRisk, keys)
	}
	return nil
}

func (p *Provisioner) loginUser() string {
	if p.cfg.AdminUser != "" {
		return p.cfg.AdminUser
	}
	if p.host.SSH.User != "" {
		return p.host.SSH.User
	}
	return "root"
}

func (p *Provisioner) allowUsers() []string {
	if p.cfg.AdminUser == "" {
		return nil
	}
	users := []string{p.cfg.AdminUser}
	current := p.host.SSH.User
	if current != "" && current != p.cfg.AdminUser && !(current == "root" && p.cfg.RootLoginDisabled()) {
		users = append(users, current)
	}
	return users
}

func (p *Provisioner) firewallRules() []string {
	rules := []string{fmt.Sprintf("%d/tcp", p.cfg.GetSSHPort())}
	if !p.host.Local {
		rules = append(rules, fmt.Sprintf("%d/tcp", p.host.SSH.GetPort()))
	}
	rules = append(rules, "80/tcp", "443/tcp")
	if p.cfg.SwarmPorts {
		rules = append(rules, swarmPorts...)
	}
	rules = append(rules, p.cfg.AllowedPorts...)

	seen := make(map[string]bool, len(rules))
	out := rules[:0]
	for _, r := range rules {
		r = strings.TrimSpace(r)
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
	}
	return out
}

func (p *Provisioner) firewall() (string, error) {
	if err := p.run("ufw default", "sudo ufw default deny incoming"); err != nil {
		return "", err
	}
	if err := p.run("ufw default", "sudo ufw default allow outgoing"); err != nil {
		return "", err
	}
	rules := p.firewallRules()
	for _, rule := range rules {
		if err := entity.ValidatePortRule(rule); err != nil {
			return "", err
		}
		if err := p.run("ufw allow", "sudo ufw allow "+rule); err != nil {
			return "", err
		}
	}
	if err := p.run("ufw enable", "sudo ufw --force enable"); err != nil {
		return "", err
	}
	return "Allowed " + strings.Join(rules, ", "), nil
}

func (p *Provisioner) fail2ban() (string, error) {
	if !p.cfg.Fail2ban.Enabled {
		return "skipped: disabled", errSkipped
	}
	content, err := render("jail.local", jailData{
		Port:     p.cfg.GetSSHPort(),
		MaxRetry: p.cfg.Fail2ban.GetMaxRetry(),
		BanTime:  p.cfg.Fail2ban.GetBanTime(),
	})
	if err != nil {
		return "", err
	}
	if err := transport.SyncContent(p.client, content, jailLocal, "644"); err != nil {
		return "", err
	}
	if err := p.run("enable fail2ban", "sudo systemctl enable --now fail2ban"); err != nil {
		return "", err
	}
	if err := p.run("restart fail2ban", "sudo systemctl restart fail2ban"); err != nil {
		return "", err
	}
	return "sshd jail active", nil
}

func (p *Provisioner) auditd() (string, error) {
	if !p.cfg.Auditd {
		return "skipped: disabled", errSkipped
	}
	content, err := render("audit.rules", nil)
	if err != nil {
		return "", err
	}
	if err := transport.SyncContent(p.client, content, auditRules, "640"); err != nil {
		return "", err
	}
	if err := p.run("augenrules", "sudo augenrules --load"); err != nil {
		return "", err
	}
	if err := p.run("enable auditd", "sudo systemctl enable --now auditd"); err != nil {
		return "", err
	}
	return "Rules loaded", nil
}

func (p *Provisioner) docker() (string, error) {
	installed := false
	if _, _, err := p.client.Run("docker --version"); err != nil {
		logger.Info("installing docker", "host", p.host.Name, "script", dockerScript)
		if err := p.run("install docker", fmt.Sprintf("curl -fsSL %s -o %s && sudo sh %s && rm -f %s",
			dockerScript, dockerScriptPath, dockerScriptPath, dockerScriptPath)); err != nil {
			return "", err
		}
		installed = true
	}
	if err := p.run("enable docker", "sudo systemctl enable --now docker"); err != nil {
		return "", err
	}

	content, err := render("daemon.json", daemonData{
		LogMaxSize: p.cfg.GetDockerLogMaxSize(),
		LogMaxFile: dockerLogFiles,
	})
	if err != nil {
		return "", err
	}
	existing, _, _ := p.client.Run("sudo cat " + dockerDaemon + " 2>/dev/null")
	if strings.TrimSpace(existing) != strings.TrimSpace(string(content)) {
		if err := transport.SyncContent(p.client, content, dockerDaemon, "644"); err != nil {
			return "", err
		}
		if err := p.run("restart docker", "sudo systemctl restart docker"); err != nil {
			return "", err
		}
	}

	if p.cfg.AdminUser != "" {
		if err := p.run("usermod", "sudo usermod -aG docker "+ssh.ShellEscape(p.cfg.AdminUser)); err != nil {
			return "", err
		}
	}

	if installed {
		return "Installed", nil
	}
	return "Configured", nil
}

func (p *Provisioner) run(op, cmd string) error {
	_, stderr, err := p.client.Run(cmd)
	if err != nil {
		return domain.NewCommandError(op, strings.TrimSpace(stderr), err)
	}
	return nil
}

func homeDir(user string) string {
	if user == "root" {
		return "/root"
	}
	return "/home/" + user
}

func FormatSyncResults(hostName string, results []SyncResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] Provision\n", hostName))
	for _, r := range results {
		icon := "✅"
		msg := r.Message
		switch {
		case r.Skipped:
			icon = "⏭️"
		case !r.Success:
			icon = "❌"
			if r.Error != nil {
				msg = r.Error.Error()
			}
		}
		sb.WriteString(fmt.Sprintf("  %-20s %s %s\n", r.Name+":", icon, msg))
	}
	return sb.String()
}

// Failed returns the first failed result, if any.
func Failed(results []SyncResult) *SyncResult {
	for i := range results {
		if !results[i].Success && !results[i].Skipped {
			return &results[i]
		}
	}
	return nil
}
