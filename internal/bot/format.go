package bot

import (
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	"bot-ofertas/internal/models"
	"bot-ofertas/internal/pricing"
)

// MaxMessageLength é o limite do Telegram para o texto de uma mensagem
const MaxMessageLength = 4096

const alertHeader = "🔥 <b>Alerta de menor preço!</b>\n"

// escapeHTML escapa caracteres especiais do HTML
func escapeHTML(text string) string {
	return html.EscapeString(text)
}

// writeProduct escreve o bloco de um produto; loja e link só aparecem se existirem
func writeProduct(b *strings.Builder, p models.MatchedProduct) {
	fmt.Fprintf(b, "📱 <b>%s</b>\n", escapeHTML(p.Name))
	fmt.Fprintf(b, "💰 %s → %s (%s)\n", p.OldPrice, p.NewPrice, pricing.FormatDiscount(p.DiscountPercent))
	if p.Shop != "" {
		fmt.Fprintf(b, "🏪 %s\n", escapeHTML(p.Shop))
	}
	if p.URL != "" {
		fmt.Fprintf(b, "🔗 <a href=\"%s\">Link do produto</a>\n", escapeHTML(p.URL))
	}
	b.WriteString("\n")
}

// FormatMessage monta uma mensagem HTML com todos os produtos
func FormatMessage(products []models.MatchedProduct) string {
	var b strings.Builder
	b.WriteString(alertHeader)
	b.WriteString("\n")
	for _, p := range products {
		writeProduct(&b, p)
	}
	return b.String()
}

// BuildMessages decide entre uma mensagem única ou uma por produto.
// Se tudo cabe em MaxMessageLength, vai tudo junto; senão cada produto
// vira uma mensagem própria (mesmo que um produto sozinho passe do limite).
func BuildMessages(products []models.MatchedProduct) []string {
	if len(products) == 0 {
		return nil
	}

	combined := FormatMessage(products)
	if utf8.RuneCountInString(combined) <= MaxMessageLength {
		return []string{combined}
	}

	messages := make([]string, 0, len(products))
	for _, p := range products {
		messages = append(messages, FormatMessage([]models.MatchedProduct{p}))
	}
	return messages
}
