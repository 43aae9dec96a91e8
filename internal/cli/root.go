package cli

import (
	"fmt"
	"os"

	"bot-ofertas/config"
	"bot-ofertas/internal/logger"

	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bot",
	Short: "Alertas de menor preço do toppreise.ch no Telegram",
	Long: `bot verifica periodicamente as ofertas do toppreise.ch (ou do feed do preispirat.ch),
aplica as regras de marca e palavra-chave cadastradas e envia cada oferta nova uma única vez
para o Telegram.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return fmt.Errorf("erro ao carregar configurações: %w", err)
		}
		level := cfg.LogLevel
		if cmd.Flags().Changed("loglevel") {
			level = logLevel
		}
		return logger.SetLogLevel(level)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.bot-ofertas.yaml)")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "loglevel", "l", "info", "Set log level. Available: debug, info, warn, error")
}
