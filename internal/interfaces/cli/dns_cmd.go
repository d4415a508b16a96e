package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lite-lake/infra-swarmops/internal/application/dnssync"
)

func newDNSCommand(ctx *Context) *cobra.Command {
	var filters Filters
	var dryRun bool

	dnsCmd := &cobra.Command{
		Use:   "dns",
		Short: "DNS operations",
	}

	dnsSyncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Point stack hostnames at their host",
		Long:  "Create or update an A record for every hostname of every stack that names a dns provider.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDNSSync(ctx, cmd.OutOrStdout(), filters.Stack, dryRun)
		},
	}

	dnsSyncCmd.Flags().StringVar(&filters.Stack, "stack", "", "Only this stack")
	dnsSyncCmd.Flags().BoolVar(&dryRun, "dry-run", false, "List the records without calling the provider")
	dnsCmd.AddCommand(dnsSyncCmd)

	return dnsCmd
}

func runDNSSync(ctx *Context, out io.Writer, stack string, dryRun bool) error {
	c := commandContext("dns.sync")
	wf, cfg, err := ctx.load(c)
	if err != nil {
		return err
	}

	changes, err := wf.NewDNSSyncer(cfg).Sync(c, stack, dryRun)
	printDNSChanges(out, changes, dryRun)
	if err != nil {
		return err
	}
	if failed := countFailed(changes); failed > 0 {
		return fmt.Errorf("%d of %d records failed", failed, len(changes))
	}
	return nil
}

func printDNSChanges(out io.Writer, changes []dnssync.Change, dryRun bool) {
	if len(changes) == 0 {
		fmt.Fprintln(out, "No DNS records to sync.")
		return
	}
	for _, ch := range changes {
		record := fmt.Sprintf("%s A %s (zone %s via %s)", ch.Hostname, ch.Record.Value, ch.Zone, ch.Provider)
		switch {
		case dryRun:
			fmt.Fprintf(out, "  ~ %s\n", record)
		case ch.Err != nil:
			fmt.Fprintf(out, "  ❌ %s: %v\n", record, ch.Err)
		default:
			fmt.Fprintf(out, "  ✅ %s: %s\n", record, ch.Action)
		}
	}
}

func countFailed(changes []dnssync.Change) int {
	n := 0
	for _, ch := range changes {
		if ch.Err != nil {
			n++
		}
	}
	return n
}
