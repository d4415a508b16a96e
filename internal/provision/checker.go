package provision

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/contract"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
)

var dockerVersionPattern = regexp.MustCompile(`Docker version (\d+\.\d+\.\d+)`)

// Checker reports the state of a host without changing it.
type Checker struct {
	runner contract.Runner
	host   *entity.Host
	engine contract.Engine
}

func NewChecker(runner contract.Runner, host *entity.Host, engine contract.Engine) *Checker {
	return &Checker{runner: runner, host: host, engine: engine}
}

func (c *Checker) CheckAll(ctx context.Context) []CheckResult {
	var results []CheckResult

	conn := CheckResult{Name: "Connection", Status: CheckStatusOK, Message: "OK"}
	if c.host.Local {
		conn.Message = "local"
	}
	results = append(results, conn)

	results = append(results, c.CheckSudo())
	results = append(results, c.CheckDocker())
	results = append(results, c.CheckSwarm(ctx))
	results = append(results, c.CheckProxyNetwork(ctx))
	results = append(results, c.CheckFirewall())
	results = append(results, c.CheckService("fail2ban", c.host.GetProvision().Fail2ban.Enabled))
	results = append(results, c.CheckService("auditd", c.host.GetProvision().Auditd))
	results = append(results, c.CheckRootLogin())

	return results
}

func (c *Checker) CheckSudo() CheckResult {
	_, _, err := c.runner.Run("sudo -n true 2>&1")
	if err != nil {
		return CheckResult{
			Name:    "Sudo Passwordless",
			Status:  CheckStatusError,
			Message: "Requires password",
			Detail:  err.Error(),
		}
	}
	return CheckResult{Name: "Sudo Passwordless", Status: CheckStatusOK, Message: "OK"}
}

func (c *Checker) CheckDocker() CheckResult {
	stdout, _, err := c.runner.Run("docker --version 2>/dev/null")
	if err != nil {
		return CheckResult{Name: "Docker", Status: CheckStatusError, Message: "Not installed"}
	}
	if m := dockerVersionPattern.FindStringSubmatch(stdout); len(m) > 1 {
		return CheckResult{Name: "Docker", Status: CheckStatusOK, Message: m[1]}
	}
	return CheckResult{Name: "Docker", Status: CheckStatusOK, Message: strings.TrimSpace(stdout)}
}

func (c *Checker) CheckSwarm(ctx context.Context) CheckResult {
	info, err := c.engine.Info(ctx)
	if err != nil {
		return CheckResult{Name: "Swarm", Status: CheckStatusError, Message: "Docker unavailable", Detail: err.Error()}
	}
	switch {
	case !info.SwarmActive:
		return CheckResult{Name: "Swarm", Status: CheckStatusWarning, Message: "Inactive"}
	case !info.SwarmManager:
		return CheckResult{Name: "Swarm", Status: CheckStatusWarning, Message: "Active (worker)"}
	}
	return CheckResult{Name: "Swarm", Status: CheckStatusOK, Message: "Active (manager)"}
}

func (c *Checker) CheckProxyNetwork(ctx context.Context) CheckResult {
	name := "Network " + constants.ProxyNetwork
	exists, err := c.engine.NetworkExists(ctx, constants.ProxyNetwork)
	if err != nil {
		return CheckResult{Name: name, Status: CheckStatusError, Message: "Check failed", Detail: err.Error()}
	}
	if !exists {
		return CheckResult{Name: name, Status: CheckStatusWarning, Message: "Missing"}
	}
	return CheckResult{Name: name, Status: CheckStatusOK, Message: "OK"}
}

func (c *Checker) CheckFirewall() CheckResult {
	stdout, _, err := c.runner.Run("sudo ufw status 2>/dev/null")
	if err != nil {
		return CheckResult{Name: "Firewall", Status: CheckStatusWarning, Message: "ufw not installed"}
	}
	if strings.Contains(stdout, "Status: active") {
		return CheckResult{Name: "Firewall", Status: CheckStatusOK, Message: "Active"}
	}
	return CheckResult{Name: "Firewall", Status: CheckStatusWarning, Message: "Inactive"}
}

// CheckService only warns about an inactive service when the host config asks for it.
func (c *Checker) CheckService(service string, wanted bool) CheckResult {
	stdout, _, _ := c.runner.Run(fmt.Sprintf("systemctl is-active %s 2>/dev/null", service))
	state := strings.TrimSpace(stdout)
	if state == "active" {
		return CheckResult{Name: service, Status: CheckStatusOK, Message: "Active"}
	}
	if state == "" {
		state = "unknown"
	}
	if !wanted {
		return CheckResult{Name: service, Status: CheckStatusOK, Message: "Not configured", Detail: state}
	}
	return CheckResult{Name: service, Status: CheckStatusWarning, Message: "Not active", Detail: state}
}

func (c *Checker) CheckRootLogin() CheckResult {
	stdout, _, err := c.runner.Run("sudo sshd -T 2>/dev/null")
	if err != nil {
		return CheckResult{Name: "SSH Root Login", Status: CheckStatusWarning, Message: "Unknown", Detail: err.Error()}
	}
	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Fields(line)
		if len(fields) != 2 || fields[0] != "permitrootlogin" {
			continue
		}
		if fields[1] == "no" {
			return CheckResult{Name: "SSH Root Login", Status: CheckStatusOK, Message: "Disabled"}
		}
		return CheckResult{Name: "SSH Root Login", Status: CheckStatusWarning, Message: "Allowed", Detail: fields[1]}
	}
	return CheckResult{Name: "SSH Root Login", Status: CheckStatusWarning, Message: "Unknown"}
}

func FormatResults(hostName string, results []CheckResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%s] Host Check\n", hostName))

	for _, r := range results {
		icon := "✅"
		switch r.Status {
		case CheckStatusWarning:
			icon = "⚠️"
		case CheckStatusError:
			icon = "❌"
		}

		sb.WriteString(fmt.Sprintf("  %-20s %s %s\n", r.Name+":", icon, r.Message))
	}

	return sb.String()
}

// HasErrors reports whether any check failed outright.
func HasErrors(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == CheckStatusError {
			return true
		}
	}
	return false
}
