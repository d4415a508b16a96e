package deploy

import (
	"fmt"
	"strings"
)

// Instructions is the post-deploy summary shown to the operator.
func Instructions(r *Result) string {
	var sb strings.Builder
	if r.DryRun {
		sb.WriteString(fmt.Sprintf("Rendered %s (%s) for host %s\n", r.Stack, r.Kind, r.Host))
	} else {
		sb.WriteString(fmt.Sprintf("Deployed %s (%s) to host %s\n", r.Stack, r.Kind, r.Host))
	}
	if r.ComposePath != "" {
		sb.WriteString(fmt.Sprintf("  compose: %s\n", r.ComposePath))
		sb.WriteString(fmt.Sprintf("  sha256:  %s\n", r.ComposeHash))
	}

	for _, e := range r.Ensured {
		if e.Changed() {
			sb.WriteString(fmt.Sprintf("  %s\n", e))
		}
	}

	if len(r.URLs) > 0 {
		sb.WriteString("\nEndpoints:\n")
		for _, u := range r.URLs {
			sb.WriteString(fmt.Sprintf("  %s\n", u))
		}
		if !r.DryRun {
			sb.WriteString("  Certificates are issued on first request; DNS must point at the host.\n")
		}
	}

	sb.WriteString(GeneratedSecrets(r))
	return sb.String()
}

// GeneratedSecrets lists secrets created during the run, including runs that
// failed after creating them.
func GeneratedSecrets(r *Result) string {
	if r == nil || len(r.Generated) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("\nGenerated secrets (shown once, store them now):\n")
	for _, name := range r.GeneratedSecrets() {
		sb.WriteString(fmt.Sprintf("  %-28s %s\n", name, r.Generated[name]))
	}
	return sb.String()
}
