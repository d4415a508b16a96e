package provision

import (
	"fmt"
	"strings"

	"github.com/lite-lake/infra-swarmops/internal/domain"
)

type Step string

const (
	StepPackages Step = "packages"
	StepUser     Step = "user"
	StepSSH      Step = "ssh"
	StepFirewall Step = "firewall"
	StepFail2ban Step = "fail2ban"
	StepAuditd   Step = "auditd"
	StepDocker   Step = "docker"
	StepSwarm    Step = "swarm"
	StepNetwork  Step = "network"
)

// AllSteps is the fixed execution order.
var AllSteps = []Step{
	StepPackages,
	StepUser,
	StepSSH,
	StepFirewall,
	StepFail2ban,
	StepAuditd,
	StepDocker,
	StepSwarm,
	StepNetwork,
}

func ParseStep(name string) (Step, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, s := range AllSteps {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrUnknownStep, name)
}

// SelectSteps applies --only and --skip and returns the steps in execution order.
func SelectSteps(only, skip []string) ([]Step, error) {
	include := make(map[Step]bool)
	for _, name := range only {
		s, err := ParseStep(name)
		if err != nil {
			return nil, err
		}
		include[s] = true
	}
	exclude := make(map[Step]bool)
	for _, name := range skip {
		s, err := ParseStep(name)
		if err != nil {
			return nil, err
		}
		exclude[s] = true
	}

	var steps []Step
	for _, s := range AllSteps {
		if len(include) > 0 && !include[s] {
			continue
		}
		if exclude[s] {
			continue
		}
		steps = append(steps, s)
	}
	return steps, nil
}

func StepNames() []string {
	names := make([]string, len(AllSteps))
	for i, s := range AllSteps {
		names[i] = string(s)
	}
	return names
}
