package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"bot-ofertas/internal/database"
	"bot-ofertas/internal/models"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Gerencia as regras de monitoramento",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista as regras cadastradas",
	RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *database.DB, args []string) error {
		rules, err := db.ListRules(ctx)
		if err != nil {
			return err
		}
		if len(rules) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nenhuma regra cadastrada.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "ID\tTIPO\tVALOR\tDESCONTO MÍN.\tATIVA\t")
		for _, r := range rules {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.0f%%\t%s\t\n", r.ID, r.Kind, r.Value, r.MinDiscountPercent, yesNo(r.Enabled))
		}
		return w.Flush()
	}),
}

var rulesAddCmd = &cobra.Command{
	Use:   "add <brand|keyword> <valor>",
	Short: "Adiciona uma regra",
	Args:  cobra.MinimumNArgs(2),
	RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *database.DB, args []string) error {
		kind, err := models.ParseRuleKind(args[0])
		if err != nil {
			return err
		}
		minDiscount, _ := cmd.Flags().GetFloat64("min")
		if err := validDiscount(minDiscount); err != nil {
			return err
		}
		id, err := db.AddRule(ctx, kind, strings.Join(args[1:], " "), minDiscount)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Regra %d adicionada.\n", id)
		return nil
	}),
}

var rulesRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove uma regra",
	Args:  cobra.ExactArgs(1),
	RunE: withRuleID(func(ctx context.Context, cmd *cobra.Command, db *database.DB, id int64) error {
		if err := db.DeleteRule(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Regra %d removida.\n", id)
		return nil
	}),
}

var rulesToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Ativa ou desativa uma regra",
	Args:  cobra.ExactArgs(1),
	RunE: withRuleID(func(ctx context.Context, cmd *cobra.Command, db *database.DB, id int64) error {
		if err := db.ToggleRule(ctx, id); err != nil {
			return err
		}
		rule, err := db.GetRule(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Regra %d ativa: %s\n", id, yesNo(rule.Enabled))
		return nil
	}),
}

var rulesEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Altera o valor ou o desconto mínimo de uma regra",
	Args:  cobra.ExactArgs(1),
	RunE: withRuleID(func(ctx context.Context, cmd *cobra.Command, db *database.DB, id int64) error {
		var value *string
		var minDiscount *float64
		if cmd.Flags().Changed("value") {
			v, _ := cmd.Flags().GetString("value")
			value = &v
		}
		if cmd.Flags().Changed("min") {
			d, _ := cmd.Flags().GetFloat64("min")
			if err := validDiscount(d); err != nil {
				return err
			}
			minDiscount = &d
		}
		if value == nil && minDiscount == nil {
			return fmt.Errorf("informe --value e/ou --min")
		}
		if err := db.UpdateRule(ctx, id, value, minDiscount); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Regra %d atualizada.\n", id)
		return nil
	}),
}

// withDB abre o banco para comandos que só precisam dele
func withDB(run func(ctx context.Context, cmd *cobra.Command, db *database.DB, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()
		return run(ctx, cmd, db, args)
	}
}

func withRuleID(run func(ctx context.Context, cmd *cobra.Command, db *database.DB, id int64) error) func(*cobra.Command, []string) error {
	return withDB(func(ctx context.Context, cmd *cobra.Command, db *database.DB, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("ID inválido: %s", args[0])
		}
		return run(ctx, cmd, db, id)
	})
}

func validDiscount(d float64) error {
	if d < 0 || d > 100 {
		return fmt.Errorf("desconto inválido %v: use um valor entre 0 e 100", d)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}

func init() {
	rootCmd.AddCommand(rulesCmd)
	rulesCmd.AddCommand(rulesListCmd, rulesAddCmd, rulesRemoveCmd, rulesToggleCmd, rulesEditCmd)

	rulesAddCmd.Flags().Float64("min", 20, "Desconto mínimo em %")
	rulesEditCmd.Flags().String("value", "", "Novo valor (marca ou palavra-chave)")
	rulesEditCmd.Flags().Float64("min", 0, "Novo desconto mínimo em %")
}
