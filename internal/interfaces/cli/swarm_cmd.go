package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-swarmops/internal/application/ensure"
	"github.com/lite-lake/infra-swarmops/internal/application/orchestrator"
	"github.com/lite-lake/infra-swarmops/internal/constants"
	"github.com/lite-lake/infra-swarmops/internal/domain/entity"
	"github.com/lite-lake/infra-swarmops/internal/infrastructure/transport"
)

func newSwarmCommand(ctx *Context) *cobra.Command {
	var filters Filters

	swarmCmd := &cobra.Command{
		Use:   "swarm",
		Short: "Swarm operations",
	}

	swarmInitCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize Swarm mode",
		Long:  "Initialize Docker Swarm when inactive and create the " + constants.ProxyNetwork + " overlay network.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSwarmInit(ctx, cmd.OutOrStdout(), filters.Host)
		},
	}

	swarmCmd.PersistentFlags().StringVar(&filters.Host, "host", "", "Only this host")
	swarmCmd.AddCommand(swarmInitCmd)

	return swarmCmd
}

func runSwarmInit(ctx *Context, out io.Writer, hostName string) error {
	return processHosts(ctx, out, "swarm.init", hostName, func(c context.Context, wf *orchestrator.Workflow, pool *transport.Pool, host *entity.Host) error {
		_, engine, err := wf.OpenHost(c, pool, host)
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		defer engine.Close()

		ens := ensure.New(engine)
		swarm, err := ens.EnsureSwarm(c, host.AdvertiseAddr())
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[%s] %s\n", host.Name, swarm)

		network, err := ens.EnsureNetwork(c, constants.ProxyNetwork, ensure.Labels(""))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "[%s] %s\n", host.Name, network)
		return nil
	})
}
