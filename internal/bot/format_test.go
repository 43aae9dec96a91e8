package bot

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"bot-ofertas/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matched(name string) models.MatchedProduct {
	return models.MatchedProduct{
		Name:            name,
		OldPrice:        "CHF 1,299.00",
		NewPrice:        "CHF 999.00",
		DiscountPercent: 23.09,
		URL:             "https://www.toppreise.ch/p/" + name,
	}
}

// productsOfTotalLength cria n produtos cuja mensagem combinada tem exatamente total caracteres
func productsOfTotalLength(t *testing.T, n, total int) []models.MatchedProduct {
	t.Helper()
	products := make([]models.MatchedProduct, n)
	for i := range products {
		products[i] = models.MatchedProduct{Name: fmt.Sprintf("p%03d", i), OldPrice: "CHF 2.00", NewPrice: "CHF 1.00", DiscountPercent: 50}
	}
	base := utf8.RuneCountInString(FormatMessage(products))
	require.LessOrEqual(t, base, total)

	extra := total - base
	for i := 0; extra > 0; i = (i + 1) % n {
		products[i].Name += "x"
		extra--
	}
	require.Equal(t, total, utf8.RuneCountInString(FormatMessage(products)))
	return products
}

func TestFormatMessage(t *testing.T) {
	p := matched("ipad")
	p.Shop = "Digitec"
	msg := FormatMessage([]models.MatchedProduct{p})

	assert.True(t, strings.HasPrefix(msg, alertHeader))
	assert.Contains(t, msg, "📱 <b>ipad</b>\n")
	assert.Contains(t, msg, "💰 CHF 1,299.00 → CHF 999.00 (-23%)\n")
	assert.Contains(t, msg, "🏪 Digitec\n")
	assert.Contains(t, msg, `🔗 <a href="https://www.toppreise.ch/p/ipad">Link do produto</a>`)
}

func TestFormatMessage_OptionalFields(t *testing.T) {
	p := models.MatchedProduct{Name: "Apple <Watch> & Co", OldPrice: "CHF 10.00", NewPrice: "CHF 5.00", DiscountPercent: 50}
	msg := FormatMessage([]models.MatchedProduct{p})

	assert.Contains(t, msg, "Apple &lt;Watch&gt; &amp; Co")
	assert.NotContains(t, msg, "🏪")
	assert.NotContains(t, msg, "🔗")
}

func TestBuildMessages_Empty(t *testing.T) {
	assert.Empty(t, BuildMessages(nil))
}

func TestBuildMessages_SingleOversizedProduct(t *testing.T) {
	p := matched(strings.Repeat("a", 5000))
	msgs := BuildMessages([]models.MatchedProduct{p})
	require.Len(t, msgs, 1)
	assert.Greater(t, utf8.RuneCountInString(msgs[0]), MaxMessageLength)
}

func TestBuildMessages_AllFitInOne(t *testing.T) {
	products := productsOfTotalLength(t, 60, 3000)
	msgs := BuildMessages(products)
	require.Len(t, msgs, 1)
	for _, p := range products {
		assert.Contains(t, msgs[0], p.Name)
	}
}

func TestBuildMessages_ExactLimitStaysTogether(t *testing.T) {
	products := productsOfTotalLength(t, 10, MaxMessageLength)
	assert.Len(t, BuildMessages(products), 1)
}

func TestBuildMessages_SplitsOnePerProduct(t *testing.T) {
	products := productsOfTotalLength(t, 100, 6000)
	msgs := BuildMessages(products)
	require.Len(t, msgs, 100)
	for i, msg := range msgs {
		assert.Contains(t, msg, products[i].Name)
		assert.LessOrEqual(t, utf8.RuneCountInString(msg), MaxMessageLength)
	}
}
