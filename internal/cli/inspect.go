package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/afs"
	"github.com/viant/procman/service/dao"
	"github.com/viant/procman/service/dao/snapshot/fs"
)

var (
	inspectSnapshot string
	inspectDomain   string
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "List stored table snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store, err := fs.New(ctx, afs.New(), inspectSnapshot, newLogger())
		if err != nil {
			return err
		}
		var parameters []*dao.Parameter
		if inspectDomain != "" {
			parameters = append(parameters, dao.NewParameter("Domain", inspectDomain))
		}
		snapshots, err := store.List(ctx, parameters...)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(snapshots) == 0 {
			fmt.Fprintln(out, mutedStyle.Render("no snapshots in "+store.BaseURL()))
			return nil
		}
		for _, aSnapshot := range snapshots {
			fmt.Fprintln(out, renderSnapshot(aSnapshot))
		}
		return nil
	},
}

func init() {
	inspectCmd.Flags().StringVarP(&inspectSnapshot, "snapshot", "s", "", "directory or afs URL holding snapshots")
	inspectCmd.Flags().StringVar(&inspectDomain, "domain", "", "only show snapshots of this domain")
	_ = inspectCmd.MarkFlagRequired("snapshot")
}
