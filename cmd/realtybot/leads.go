package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ent0n29/realtybot/internal/leads"
)

var (
	leadsLimit int
	leadsJSON  bool
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "Inspect captured leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent leads",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := leads.NewStore(cmd.Context(), leads.Config{
			Backend:     cfg.LeadStore,
			DatabaseURL: cfg.DatabaseURL,
			SQLitePath:  cfg.LeadSQLitePath,
		})
		if err != nil {
			return fmt.Errorf("lead store init failed: %w", err)
		}
		defer store.Close()

		lister, ok := store.(leads.Lister)
		if !ok {
			return fmt.Errorf("lead store %q cannot list leads", cfg.LeadStore)
		}
		records, err := lister.List(cmd.Context(), leadsLimit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if leadsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(records)
		}
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "REFERENCE\tCREATED\tNAME\tPHONE\tINTEREST")
		for _, r := range records {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				r.Reference, r.CreatedAt.Format("2006-01-02 15:04"), r.Name, r.Phone, r.PropertyInterest)
		}
		return w.Flush()
	},
}

func init() {
	leadsListCmd.Flags().IntVar(&leadsLimit, "limit", 20, "Maximum number of leads to show")
	leadsListCmd.Flags().BoolVar(&leadsJSON, "json", false, "Print leads as JSON")
	leadsCmd.AddCommand(leadsListCmd)
}
