package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/yasinhessnawi1/strack/internal/catalog"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the known-service catalog",
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known services",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Default()
		if err != nil {
			return eris.Wrap(err, "load catalog")
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DOMAIN\tNAME\tCATEGORY\tCURRENCY\tPLANS")
		for _, svc := range cat.All() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n",
				svc.Domain, svc.Name, svc.Category, svc.DefaultCurrency, len(svc.TypicalPrices))
		}
		return tw.Flush()
	},
}

var catalogLookupCmd = &cobra.Command{
	Use:   "lookup <name|alias|domain>",
	Short: "Look up one known service",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := catalog.Default()
		if err != nil {
			return eris.Wrap(err, "load catalog")
		}

		q := strings.Join(args, " ")
		svc := cat.FindByAliasOrName(q)
		if svc == nil {
			svc = cat.FindByURL(q)
		}
		if svc == nil {
			return eris.Errorf("no known service matches %q", q)
		}
		return writeJSON(cmd.OutOrStdout(), svc)
	},
}

func init() {
	catalogCmd.AddCommand(catalogListCmd, catalogLookupCmd)
	rootCmd.AddCommand(catalogCmd)
}
