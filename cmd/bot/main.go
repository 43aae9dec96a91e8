package main

import (
	"bot-ofertas/internal/cli"
	"bot-ofertas/internal/logger"

	"github.com/joho/godotenv"
)

func main() {
	// Carregar variáveis de ambiente
	if err := godotenv.Load(); err != nil {
		logger.Log.Debug("Arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	cli.Execute()
}
