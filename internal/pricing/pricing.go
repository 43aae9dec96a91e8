// Package pricing converte textos de preço no formato suíço em números e
// calcula descontos.
package pricing

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	// ErrUnparseable indica que o texto não pôde ser lido como preço
	ErrUnparseable = errors.New("preço ilegível")
	// ErrNonPositiveOldPrice indica preço antigo <= 0, sem desconto calculável
	ErrNonPositiveOldPrice = errors.New("preço antigo não positivo")
)

var (
	currencyTokens = []string{"SFr.", "Fr.", "CHF"}
	// separadores de milhar: vírgula, apóstrofo e o apóstrofo tipográfico usado em de-CH
	thousandsReplacer = strings.NewReplacer(",", "", "'", "", "\u2019", "")
	decimalRe         = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)$`)
)

// Parse lê um preço como "CHF 1'299.00", "3.84" ou "189.-".
// Nunca entra em pânico: qualquer resíduo não numérico vira ErrUnparseable.
func Parse(text string) (float64, error) {
	cleaned := text
	for _, token := range currencyTokens {
		cleaned = strings.ReplaceAll(cleaned, token, "")
	}
	cleaned = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '\u00a0', '\u202f', '\u2009':
			return -1
		}
		return r
	}, cleaned)
	cleaned = thousandsReplacer.Replace(cleaned)

	// ".-" significa franco redondo, sem centavos
	for _, suffix := range []string{".-", ".\u2013", ".\u2014"} {
		if strings.HasSuffix(cleaned, suffix) {
			cleaned = strings.TrimSuffix(cleaned, suffix)
			break
		}
	}

	if !decimalRe.MatchString(cleaned) {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}
	return value, nil
}

// DiscountPercent calcula (old - new) / old * 100 sem arredondar.
// Só é definido para old > 0.
func DiscountPercent(oldPrice, newPrice float64) (float64, error) {
	if oldPrice <= 0 {
		return 0, ErrNonPositiveOldPrice
	}
	return (oldPrice - newPrice) / oldPrice * 100, nil
}

// FormatCHF formata um valor como "CHF 1,299.00"
func FormatCHF(value float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf("CHF %.2f", value)
}

// FormatDiscount arredonda para o percentual inteiro mais próximo, apenas para exibição
func FormatDiscount(percent float64) string {
	return fmt.Sprintf("-%.0f%%", percent)
}
