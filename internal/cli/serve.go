package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bot-ofertas/internal/bot"
	"bot-ofertas/internal/database"
	"bot-ofertas/internal/logger"
	"bot-ofertas/internal/metrics"

	"github.com/spf13/cobra"
)

// longPollTimeout precisa ser maior que o timeout de 60s do getUpdates
const longPollTimeout = 90 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Inicia o monitoramento periódico e os comandos do Telegram",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		db, err := openDB(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		scheduler, err := newScheduler(ctx, db)
		if err != nil {
			return err
		}

		if cfg.MetricsAddr != "" {
			server := &http.Server{Addr: cfg.MetricsAddr, Handler: metricsMux()}
			go func() {
				logger.Log.Infof("Métricas disponíveis em http://%s/metrics", cfg.MetricsAddr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Log.Errorf("Erro no servidor de métricas: %v", err)
				}
			}()
			defer server.Close()
		}

		followIntervalSetting(db, scheduler)
		scheduler.Start()

		token, err := db.GetSetting(ctx, database.SettingTelegramToken, cfg.TelegramBotToken)
		if err != nil {
			logger.Log.Warnf("Erro ao ler token do Telegram: %v", err)
		}
		if token != "" {
			telegramBot, err := bot.Init(token, longPollTimeout)
			if err != nil {
				logger.Log.Warnf("Comandos do Telegram desativados: %v", err)
			} else {
				handler := bot.NewHandler(telegramBot, db, scheduler, authorizedChatID(ctx, db), database.SettingMonitoringInterval)
				go handler.Listen(ctx)
			}
		} else {
			logger.Log.Warn("Token do Telegram não configurado, comandos desativados")
		}

		<-ctx.Done()
		logger.Log.Info("Encerrando bot...")
		scheduler.Stop()
		return nil
	},
}

func metricsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
