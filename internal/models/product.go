package models

import (
	"fmt"
	"strings"
	"time"
)

// RuleKind indica contra qual campo do produto uma regra é comparada
type RuleKind string

const (
	// RuleBrand compara o valor da regra com o fabricante
	RuleBrand RuleKind = "brand"
	// RuleKeyword compara o valor da regra com o nome completo (fabricante + nome)
	RuleKeyword RuleKind = "keyword"
)

// ParseRuleKind converte o texto digitado pelo usuário em um RuleKind
func ParseRuleKind(s string) (RuleKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "brand", "marca":
		return RuleBrand, nil
	case "keyword", "palavra":
		return RuleKeyword, nil
	}
	return "", fmt.Errorf("tipo de regra inválido: %q (use brand ou keyword)", s)
}

// WatchRule representa uma regra de monitoramento definida pelo usuário
type WatchRule struct {
	ID                 int64
	Kind               RuleKind
	Value              string
	MinDiscountPercent float64
	Enabled            bool
	CreatedAt          time.Time
}

// Candidate é um produto cru, como veio da página ou do feed
type Candidate struct {
	Manufacturer string
	Name         string
	OldPriceText string
	NewPriceText string
	URL          string
	Shop         string
}

// FullName junta fabricante e nome do produto
func (c Candidate) FullName() string {
	if c.Name == "" {
		return strings.TrimSpace(c.Manufacturer)
	}
	return strings.TrimSpace(c.Manufacturer + " " + c.Name)
}

// MatchedProduct é um candidato que passou por uma regra (ou pelo filtro legado)
type MatchedProduct struct {
	Name            string
	OldPrice        string // já formatado, ex: "CHF 1,299.00"
	NewPrice        string
	DiscountPercent float64
	Shop            string
	URL             string
	MatchedRuleID   *int64 // nil apenas no modo legado
}

// Key retorna a chave de deduplicação do produto
func (p MatchedProduct) Key() ProductKey {
	ref := p.URL
	if ref == "" {
		ref = p.Name
	}
	return ProductKey{Ref: ref, Price: p.NewPrice}
}

// ProductKey identifica um alerta: URL (ou nome, quando não há URL) + preço formatado
type ProductKey struct {
	Ref   string
	Price string
}

func (k ProductKey) String() string {
	return k.Ref + " @ " + k.Price
}

// AlertRecord é uma linha do histórico de alertas enviados
type AlertRecord struct {
	ID          int64
	Key         ProductKey
	ProductName string
	Discount    string
	RuleID      *int64
	AlertedAt   time.Time
}
