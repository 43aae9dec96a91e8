package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"bot-ofertas/internal/database"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Mostra os últimos alertas enviados",
	RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *database.DB, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		records, err := db.AlertHistory(ctx, limit)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nenhum alerta no histórico.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "QUANDO\tPRODUTO\tPREÇO\tDESCONTO\tREGRA\t")
		for _, r := range records {
			rule := "-"
			if r.RuleID != nil {
				rule = fmt.Sprint(*r.RuleID)
			}
			name := r.ProductName
			if name == "" {
				name = r.Key.Ref
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n", r.AlertedAt.Local().Format("2006-01-02 15:04"), name, r.Key.Price, r.Discount, rule)
		}
		return w.Flush()
	}),
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().Int("limit", 50, "Número máximo de alertas")
}
