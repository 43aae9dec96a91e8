// Package matcher avalia candidatos contra as regras de monitoramento.
package matcher

import (
	"errors"
	"fmt"
	"strings"

	"bot-ofertas/internal/models"
	"bot-ofertas/internal/pricing"
)

// ErrNoName indica um candidato sem fabricante e sem nome
var ErrNoName = errors.New("candidato sem nome")

// Mode é resolvido uma vez por ciclo: LegacyBrandFilter ou RuleSet
type Mode interface {
	mode()
}

// LegacyBrandFilter é o modo antigo de filtro único por marca.
// Brand vazio aceita qualquer fabricante.
type LegacyBrandFilter struct {
	Brand       string
	MinDiscount float64
}

// RuleSet é o modo normal, com a lista de regras ativas
type RuleSet struct {
	Rules []models.WatchRule
}

func (LegacyBrandFilter) mode() {}
func (RuleSet) mode()           {}

// MatchRules retorna todas as regras satisfeitas, na ordem recebida.
// O limite de desconto é inclusivo e comparado sem arredondamento.
func MatchRules(manufacturer, fullName string, discount float64, rules []models.WatchRule) []models.WatchRule {
	mfg := strings.ToLower(manufacturer)
	name := strings.ToLower(fullName)

	var matched []models.WatchRule
	for _, rule := range rules {
		if discount < rule.MinDiscountPercent {
			continue
		}
		value := strings.ToLower(rule.Value)
		switch rule.Kind {
		case models.RuleBrand:
			if strings.Contains(mfg, value) {
				matched = append(matched, rule)
			}
		case models.RuleKeyword:
			if strings.Contains(name, value) {
				matched = append(matched, rule)
			}
		}
	}
	return matched
}

// Evaluate transforma um candidato em zero ou mais produtos encontrados.
// Candidatos inválidos (sem nome, preço ilegível, preço antigo <= 0) retornam erro
// e devem ser apenas descartados pelo chamador.
func Evaluate(c models.Candidate, mode Mode) ([]models.MatchedProduct, error) {
	fullName := c.FullName()
	if fullName == "" {
		return nil, ErrNoName
	}

	oldPrice, err := pricing.Parse(c.OldPriceText)
	if err != nil {
		return nil, fmt.Errorf("preço antigo de %s: %w", fullName, err)
	}
	newPrice, err := pricing.Parse(c.NewPriceText)
	if err != nil {
		return nil, fmt.Errorf("preço novo de %s: %w", fullName, err)
	}
	discount, err := pricing.DiscountPercent(oldPrice, newPrice)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", fullName, err)
	}

	base := models.MatchedProduct{
		Name:            fullName,
		OldPrice:        pricing.FormatCHF(oldPrice),
		NewPrice:        pricing.FormatCHF(newPrice),
		DiscountPercent: discount,
		Shop:            c.Shop,
		URL:             c.URL,
	}

	switch m := mode.(type) {
	case RuleSet:
		var products []models.MatchedProduct
		for _, rule := range MatchRules(c.Manufacturer, fullName, discount, m.Rules) {
			p := base
			id := rule.ID
			p.MatchedRuleID = &id
			products = append(products, p)
		}
		return products, nil
	case LegacyBrandFilter:
		if m.Brand != "" && !strings.Contains(strings.ToLower(c.Manufacturer), strings.ToLower(m.Brand)) {
			return nil, nil
		}
		if discount < m.MinDiscount {
			return nil, nil
		}
		return []models.MatchedProduct{base}, nil
	}
	return nil, fmt.Errorf("modo de comparação desconhecido: %T", mode)
}
