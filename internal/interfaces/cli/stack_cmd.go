package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/lite-lake/infra-swarmops/internal/application/deploy"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/stacks"
)

type deployFlags struct {
	rotateSecrets bool
	dryRun        bool
	autoApprove   bool
	noPrompt      bool
}

func newStackCommand(ctx *Context) *cobra.Command {
	var df deployFlags
	var removeApprove bool

	stackCmd := &cobra.Command{
		Use:   "stack",
		Short: "Stack operations",
		Long:  "Render, deploy and inspect the stacks listed in stacks.yaml.",
	}

	stackKindsCmd := &cobra.Command{
		Use:   "kinds",
		Short: "List catalogue kinds",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runStackKinds(ctx, cmd.OutOrStdout())
		},
	}

	stackListCmd := &cobra.Command{
		Use:   "list",
		Short: "List configured stacks",
		Long:  "List configured stacks with their last recorded deployment.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStackList(ctx, cmd.OutOrStdout())
		},
	}

	stackShowCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Show stack details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStackShow(ctx, cmd.OutOrStdout(), args[0])
		},
	}

	stackRenderCmd := &cobra.Command{
		Use:   "render <name>",
		Short: "Render the compose file",
		Long:  "Render the compose file into the deployments directory and print it. Nothing is sent to the host.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStackRender(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), args[0], df.noPrompt)
		},
	}

	stackDeployCmd := &cobra.Command{
		Use:   "deploy <name>",
		Short: "Deploy a stack",
		Long:  "Ensure the proxy network, volumes and secrets, then run docker stack deploy.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStackDeploy(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), args[0], df)
		},
	}

	stackRemoveCmd := &cobra.Command{
		Use:   "remove <name>",
		Short: "Remove a stack",
		Long:  "Run docker stack rm. Volumes and secrets are kept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStackRemove(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), args[0], removeApprove)
		},
	}

	stackStatusCmd := &cobra.Command{
		Use:   "status <name>",
		Short: "Show stack services",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStackStatus(ctx, cmd.OutOrStdout(), args[0])
		},
	}

	stackRenderCmd.Flags().BoolVar(&df.noPrompt, "no-prompt", false, "Fail instead of prompting for missing inputs")
	stackDeployCmd.Flags().BoolVar(&df.rotateSecrets, "rotate-secrets", false, "Replace existing swarm secrets")
	stackDeployCmd.Flags().BoolVar(&df.dryRun, "dry-run", false, "Render only")
	stackDeployCmd.Flags().BoolVar(&df.autoApprove, "auto-approve", false, "Do not ask for confirmation")
	stackDeployCmd.Flags().BoolVar(&df.noPrompt, "no-prompt", false, "Fail instead of prompting for missing inputs")
	stackRemoveCmd.Flags().BoolVar(&removeApprove, "auto-approve", false, "Do not ask for confirmation")

	stackCmd.AddCommand(stackKindsCmd)
	stackCmd.AddCommand(stackListCmd)
	stackCmd.AddCommand(stackShowCmd)
	stackCmd.AddCommand(stackRenderCmd)
	stackCmd.AddCommand(stackDeployCmd)
	stackCmd.AddCommand(stackRemoveCmd)
	stackCmd.AddCommand(stackStatusCmd)

	return stackCmd
}

func runStackKinds(ctx *Context, out io.Writer) {
	registry := ctx.Workflow().Registry()
	for _, kind := range registry.Kinds() {
		def, _ := registry.Lookup(kind)
		fmt.Fprintf(out, "- %-10s %s\n", kind, def.Description())
	}
}

func runStackList(ctx *Context, out io.Writer) error {
	wf, cfg, err := ctx.load(commandContext("stack.list"))
	if err != nil {
		return err
	}
	st, err := wf.StateStore().Load(commandContext("stack.list"))
	if err != nil {
		return err
	}

	if len(cfg.Stacks) == 0 {
		fmt.Fprintln(out, "No stacks configured.")
		return nil
	}
	for _, s := range cfg.Stacks {
		line := fmt.Sprintf("- %s (kind: %s, host: %s", s.Name, s.Kind, s.Host)
		if s.Domain != "" {
			line += ", domain: " + s.Domain
		}
		line += ")"
		if d, ok := st.Deployments[s.Name]; ok {
			line += fmt.Sprintf(" deployed %s sha256:%s", d.DeployedAt.Format("2006-01-02 15:04"), shortHash(d.ComposeHash))
		} else {
			line += " not deployed"
		}
		fmt.Fprintln(out, line)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func runStackShow(ctx *Context, out io.Writer, name string) error {
	wf, cfg, err := ctx.load(commandContext("stack.show"))
	if err != nil {
		return err
	}
	s, err := cfg.FindStack(name)
	if err != nil {
		return err
	}
	def, err := wf.Registry().Lookup(s.Kind)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal stack: %w", err)
	}

	fmt.Fprintf(out, "%s: %s\n", cases.Title(language.English).String(def.Kind()), s.Name)
	fmt.Fprintf(out, "%s\n\n", def.Description())
	fmt.Fprintln(out, strings.TrimRight(string(data), "\n"))

	fmt.Fprintln(out, "\nInputs:")
	for _, in := range def.Inputs() {
		fmt.Fprintf(out, "  - %s\n", describeInput(s, in))
	}
	if vols := def.Volumes(s); len(vols) > 0 {
		fmt.Fprintf(out, "Volumes:   %s\n", strings.Join(vols, ", "))
	}
	if secs := def.Secrets(s); len(secs) > 0 {
		fmt.Fprintf(out, "Secrets:   %s\n", strings.Join(secs, ", "))
	}

	values, _ := stacks.ResolveValues(def, s, cfg.GetSecretsMap(), nil, func(in stacks.Input) bool { return !in.IsSecret() })
	if hosts := def.Hostnames(s, values); len(hosts) > 0 {
		fmt.Fprintf(out, "Hostnames: %s\n", strings.Join(hosts, ", "))
	}
	return nil
}

func describeInput(s *entity.Stack, in stacks.Input) string {
	desc := in.Key
	if in.Label != "" {
		desc += " (" + in.Label + ")"
	}
	var notes []string
	if _, ok := s.Params[in.Key]; ok {
		notes = append(notes, "set")
	}
	if in.Required {
		notes = append(notes, "required")
	}
	if in.Default != "" {
		notes = append(notes, fmt.Sprintf("default %q", in.Default))
	}
	if in.IsSecret() {
		secret := "secret " + s.ResourceName(in.Secret)
		if in.Generate {
			secret += ", generated when missing"
		}
		notes = append(notes, secret)
	}
	if len(notes) > 0 {
		desc += ": " + strings.Join(notes, ", ")
	}
	return desc
}

func promptFor(noPrompt bool, reader *bufio.Reader, out io.Writer) stacks.PromptFunc {
	if noPrompt {
		return nil
	}
	return newLinePrompter(reader, out).Prompt
}

func runStackRender(ctx *Context, in io.Reader, out io.Writer, name string, noPrompt bool) error {
	c := commandContext("stack.render")
	wf, cfg, err := ctx.load(c)
	if err != nil {
		return err
	}
	pool := wf.NewPool(cfg)
	defer pool.CloseAll()

	res, err := wf.NewDeployer(cfg, pool).Render(c, name, promptFor(noPrompt, bufio.NewReader(in), out))
	if err != nil {
		return err
	}
	data, err := os.ReadFile(res.ComposePath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "# %s\n", res.ComposePath)
	fmt.Fprint(out, string(data))
	return nil
}

func runStackDeploy(ctx *Context, in io.Reader, out io.Writer, name string, df deployFlags) error {
	c := commandContext("stack.deploy")
	wf, cfg, err := ctx.load(c)
	if err != nil {
		return err
	}
	s, err := cfg.FindStack(name)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(in)
	if !df.dryRun && !df.autoApprove {
		msg := fmt.Sprintf("Deploy stack %s (%s) to host %s?", s.Name, s.Kind, s.Host)
		if df.rotateSecrets {
			msg = fmt.Sprintf("Deploy stack %s (%s) to host %s and replace its secrets?", s.Name, s.Kind, s.Host)
		}
		if !Confirm(reader, out, msg, false) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	pool := wf.NewPool(cfg)
	defer pool.CloseAll()

	res, err := wf.NewDeployer(cfg, pool).Deploy(c, name, deploy.Options{
		DryRun:        df.dryRun,
		RotateSecrets: df.rotateSecrets,
		Prompt:        promptFor(df.noPrompt, reader, out),
	})
	if err != nil {
		fmt.Fprint(out, deploy.GeneratedSecrets(res))
		return err
	}
	fmt.Fprint(out, deploy.Instructions(res))
	return nil
}

func runStackRemove(ctx *Context, in io.Reader, out io.Writer, name string, autoApprove bool) error {
	c := commandContext("stack.remove")
	wf, cfg, err := ctx.load(c)
	if err != nil {
		return err
	}
	s, err := cfg.FindStack(name)
	if err != nil {
		return err
	}
	if !autoApprove && !Confirm(in, out, fmt.Sprintf("Remove stack %s from host %s?", s.Name, s.Host), false) {
		fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	pool := wf.NewPool(cfg)
	defer pool.CloseAll()

	if err := wf.NewDeployer(cfg, pool).Remove(c, name); err != nil {
		return err
	}
	fmt.Fprintf(out, "Removed %s. Volumes and secrets were kept.\n", name)
	return nil
}

func runStackStatus(ctx *Context, out io.Writer, name string) error {
	c := commandContext("stack.status")
	wf, cfg, err := ctx.load(c)
	if err != nil {
		return err
	}
	pool := wf.NewPool(cfg)
	defer pool.CloseAll()

	services, err := wf.NewDeployer(cfg, pool).Status(c, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "[%s] Services\n", name)
	for _, svc := range services {
		fmt.Fprintf(out, "  %-30s %-11s %-7s %s\n", svc.Name, svc.Mode, svc.Replicas, svc.Image)
	}
	return nil
}
