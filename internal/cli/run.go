package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/procman"
	"github.com/viant/procman/model/process"
	"github.com/viant/procman/runtime/table"
)

var (
	runProcs    int
	runCycles   int
	runSnapshot string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create processes and run dispatch cycles",
	Long:  "Boot every configured domain, create --procs processes per domain at entries 0x1000, 0x2000, ... and run --cycles scheduler driven dispatches.",
	Args:  cobra.NoArgs,
	RunE:  runRun,
}

func init() {
	runCmd.Flags().IntVarP(&runProcs, "procs", "n", 4, "processes created per domain")
	runCmd.Flags().IntVar(&runCycles, "cycles", 8, "dispatch cycles per domain")
	runCmd.Flags().StringVar(&runSnapshot, "snapshot", "", "directory or afs URL receiving table snapshots")
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	config, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if runSnapshot != "" {
		config.Snapshot.URL = runSnapshot
	}
	srv, err := procman.New(procman.WithConfig(config), procman.WithLogger(newLogger()))
	if err != nil {
		return err
	}
	defer srv.Shutdown(ctx)

	if err = srv.Boot(ctx); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, domain := range srv.Domains() {
		dispatched, err := simulate(cmd, domain)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, renderDomain(domain, dispatched))
		if srv.Snapshots() == nil {
			continue
		}
		taken, err := domain.Snapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, mutedStyle.Render("snapshot "+taken.ID))
	}
	return nil
}

// simulate fills the domain and counts dispatches per process.
func simulate(cmd *cobra.Command, domain *procman.Domain) (map[process.ID]int, error) {
	ctx := cmd.Context()
	for i := 1; i <= runProcs; i++ {
		_, err := domain.Create(ctx, process.Address(0x1000*i))
		if errors.Is(err, table.ErrTableFull) {
			fmt.Fprintln(cmd.ErrOrStderr(), warnStyle.Render(fmt.Sprintf("%s: table full after %d processes", domain.Name(), domain.Len())))
			break
		}
		if err != nil {
			return nil, err
		}
	}
	dispatched := map[process.ID]int{}
	if domain.Len() == 0 {
		return dispatched, nil
	}
	for i := 0; i < runCycles; i++ {
		next := domain.Schedule(ctx, nil)
		if next == nil {
			break
		}
		dispatched[next.ID]++
	}
	return dispatched, nil
}
