package cli

import (
	"context"
	"fmt"

	"bot-ofertas/internal/monitor"

	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Executa um ciclo de verificação agora",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		scheduler, err := newScheduler(ctx, db)
		if err != nil {
			return err
		}

		res := scheduler.RunOnce(ctx)
		fmt.Fprintf(cmd.OutOrStdout(), "Resultado: %s\n", res.Outcome)
		fmt.Fprintf(cmd.OutOrStdout(), "Candidatos: %d  Encontrados: %d  Novos: %d  Já alertados: %d\n",
			res.Candidates, res.Matched, res.New, res.Suppressed)
		fmt.Fprintf(cmd.OutOrStdout(), "Mensagens enviadas: %d  Falhas: %d  Gravados: %d\n",
			res.MessagesSent, res.SendErrors, res.Recorded)

		switch res.Outcome {
		case monitor.OutcomeError, monitor.OutcomePersistenceError:
			return res.Err
		case monitor.OutcomeBusy:
			return fmt.Errorf("outro ciclo já está em andamento")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
