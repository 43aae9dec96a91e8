package cli

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"text/tabwriter"
	"time"

	"bot-ofertas/internal/bot"
	"bot-ofertas/internal/database"

	"github.com/spf13/cobra"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Gerencia as configurações salvas no banco",
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Lista as configurações",
	RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *database.DB, args []string) error {
		settings, err := db.AllSettings(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "CHAVE\tVALOR\t")
		for _, key := range database.SettingKeys {
			value, ok := settings[key]
			if !ok {
				value = "(padrão)"
			} else if key == database.SettingTelegramToken {
				value = maskToken(value)
			}
			fmt.Fprintf(w, "%s\t%s\t\n", key, value)
		}
		return w.Flush()
	}),
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <chave> <valor>",
	Short: "Altera uma configuração",
	Long: `Altera uma configuração salva no banco.

Um "serve" em execução aplica a nova URL e as credenciais no próximo ciclo, e o novo
intervalo ao fim do próximo ciclo.`,
	Args:  cobra.ExactArgs(2),
	RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *database.DB, args []string) error {
		key, value := args[0], args[1]
		if !slices.Contains(database.SettingKeys, key) {
			return fmt.Errorf("chave desconhecida %q; use uma de %v", key, database.SettingKeys)
		}
		if key == database.SettingMonitoringInterval {
			if minutes, err := strconv.Atoi(value); err != nil || minutes <= 0 {
				return fmt.Errorf("intervalo inválido %q: use um número inteiro de minutos", value)
			}
		}
		if err := db.SetSetting(ctx, key, value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s atualizado.\n", key)
		return nil
	}),
}

var settingsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Envia uma mensagem de teste pelo Telegram",
	RunE: withDB(func(ctx context.Context, cmd *cobra.Command, db *database.DB, args []string) error {
		token, err := db.GetSetting(ctx, database.SettingTelegramToken, cfg.TelegramBotToken)
		if err != nil {
			return err
		}
		chatID, err := db.GetSetting(ctx, database.SettingTelegramChatID, cfg.TelegramChatID)
		if err != nil {
			return err
		}
		if token == "" || chatID == "" {
			return fmt.Errorf("token e chat ID do Telegram precisam estar configurados")
		}

		sendCtx, cancel := context.WithTimeout(ctx, cfg.SendTimeout)
		defer cancel()
		text := fmt.Sprintf("✅ <b>Teste do bot de ofertas</b>\nConexão OK em %s", time.Now().Format("02/01/2006 15:04"))
		if err := bot.NewSender(cfg.SendTimeout).Send(sendCtx, token, chatID, text); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Mensagem de teste enviada.")
		return nil
	}),
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "…" + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(settingsCmd)
	settingsCmd.AddCommand(settingsListCmd, settingsSetCmd, settingsTestCmd)
}
