package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-swarmops/internal/application/orchestrator"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/logger"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/transport"
	"github.com/lite-lake/infra-swarmops/internal/provision"
)

type provisionFlags struct {
	only        []string
	skip        []string
	autoApprove bool
}

func newHostCommand(ctx *Context) *cobra.Command {
	var filters Filters
	var pf provisionFlags

	hostCmd := &cobra.Command{
		Use:   "host",
		Short: "Host operations",
		Long:  "Check and provision the hosts listed in hosts.yaml.",
	}

	hostCheckCmd := &cobra.Command{
		Use:   "check",
		Short: "Check host status",
		Long:  "Report sudo, Docker, Swarm, firewall and hardening status without changing anything.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHostCheck(ctx, cmd.OutOrStdout(), filters.Host)
		},
	}

	hostProvisionCmd := &cobra.Command{
		Use:   "provision",
		Short: "Harden and prepare hosts",
		Long: "Run the provisioning steps in order: " + strings.Join(provision.StepNames(), ", ") + ".\n" +
			"The run stops at the first failed step.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHostProvision(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), filters.Host, pf)
		},
	}

	hostCmd.PersistentFlags().StringVar(&filters.Host, "host", "", "Only this host")
	hostProvisionCmd.Flags().StringSliceVar(&pf.only, "only", nil, "Run only these steps")
	hostProvisionCmd.Flags().StringSliceVar(&pf.skip, "skip", nil, "Skip these steps")
	hostProvisionCmd.Flags().BoolVar(&pf.autoApprove, "auto-approve", false, "Do not ask for confirmation")

	hostCmd.AddCommand(hostCheckCmd)
	hostCmd.AddCommand(hostProvisionCmd)

	return hostCmd
}

type hostOperation func(ctx context.Context, wf *orchestrator.Workflow, pool *transport.Pool, host *entity.Host) error

// processHosts runs fn for every selected host and keeps going after a failure.
func processHosts(ctx *Context, out io.Writer, op string, hostName string, fn hostOperation) error {
	wf, cfg, err := ctx.load(commandContext(op))
	if err != nil {
		return err
	}
	hosts, err := orchestrator.SelectHosts(cfg, hostName)
	if err != nil {
		return err
	}

	pool := wf.NewPool(cfg)
	defer pool.CloseAll()

	var failed []string
	for _, host := range hosts {
		hctx := logger.WithHost(commandContext(op), host.Name)
		if err := fn(hctx, wf, pool, host); err != nil {
			fmt.Fprintf(out, "[%s] %v\n", host.Name, err)
			failed = append(failed, host.Name)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%s failed on %s", op, strings.Join(failed, ", "))
	}
	return nil
}

func runHostCheck(ctx *Context, out io.Writer, hostName string) error {
	return processHosts(ctx, out, "host.check", hostName, func(c context.Context, wf *orchestrator.Workflow, pool *transport.Pool, host *entity.Host) error {
		client, engine, err := wf.OpenHost(c, pool, host)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		defer engine.Close()

		results := provision.NewChecker(client, host, engine).CheckAll(c)
		fmt.Fprint(out, provision.FormatResults(host.Name, results))
		if provision.HasErrors(results) {
			return errors.New("checks failed")
		}
		return nil
	})
}

func runHostProvision(ctx *Context, in io.Reader, out io.Writer, hostName string, pf provisionFlags) error {
	steps, err := provision.SelectSteps(pf.only, pf.skip)
	if err != nil {
		return err
	}
	if len(steps) == 0 {
		fmt.Fprintln(out, "No steps selected.")
		return nil
	}
	reader := bufio.NewReader(in)

	return processHosts(ctx, out, "host.provision", hostName, func(c context.Context, wf *orchestrator.Workflow, pool *transport.Pool, host *entity.Host) error {
		fmt.Fprintf(out, "[%s] Steps: %s\n", host.Name, joinSteps(steps))
		if !pf.autoApprove && !Confirm(reader, out, fmt.Sprintf("Provision %s?", host.Name), false) {
			fmt.Fprintf(out, "[%s] Skipped.\n", host.Name)
			return nil
		}

		client, engine, err := wf.OpenHost(c, pool, host)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		defer engine.Close()

		results := provision.NewProvisioner(client, host, engine).Run(c, steps)
		fmt.Fprint(out, provision.FormatSyncResults(host.Name, results))
		if f := provision.Failed(results); f != nil {
			return f.Error
		}
		return nil
	})
}

func joinSteps(steps []provision.Step) string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}
