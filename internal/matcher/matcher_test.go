package matcher

import (
	"testing"

	"bot-ofertas/internal/models"
	"bot-ofertas/internal/pricing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func brand(id int64, value string, min float64) models.WatchRule {
	return models.WatchRule{ID: id, Kind: models.RuleBrand, Value: value, MinDiscountPercent: min, Enabled: true}
}

func keyword(id int64, value string, min float64) models.WatchRule {
	return models.WatchRule{ID: id, Kind: models.RuleKeyword, Value: value, MinDiscountPercent: min, Enabled: true}
}

func TestMatchRules_BoundaryIsInclusive(t *testing.T) {
	rules := []models.WatchRule{brand(1, "apple", 20)}

	assert.Len(t, MatchRules("Apple", "Apple iPad Air", 20.0, rules), 1)
	assert.Empty(t, MatchRules("Apple", "Apple iPad Air", 19.99, rules))
}

func TestMatchRules_Substring(t *testing.T) {
	rules := []models.WatchRule{
		keyword(1, "iPad", 10),
		brand(2, "sam", 10),
		keyword(3, "macbook", 10),
	}

	got := MatchRules("Apple", "Apple iPad Pro 11", 15, rules)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	got = MatchRules("Samsung", "Samsung Galaxy S24", 15, rules)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].ID)

	// substring sem tokenização: "iPadcase" também casa
	assert.Len(t, MatchRules("Generic", "Generic iPadcase", 15, rules), 1)
}

func TestMatchRules_ReturnsAllMatches(t *testing.T) {
	rules := []models.WatchRule{
		brand(1, "apple", 10),
		keyword(2, "airpods", 30),
		keyword(3, "airpods pro", 50),
	}

	got := MatchRules("Apple", "Apple AirPods Pro 2", 35, rules)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)
}

func TestEvaluate_RuleSet(t *testing.T) {
	c := models.Candidate{
		Manufacturer: "Apple",
		Name:         "iPad Air 11",
		OldPriceText: "1'000.00",
		NewPriceText: "800.-",
		URL:          "https://www.toppreise.ch/preisvergleich/ipad-air",
	}
	mode := RuleSet{Rules: []models.WatchRule{brand(7, "apple", 20), keyword(9, "ipad", 20), keyword(10, "iphone", 0)}}

	got, err := Evaluate(c, mode)
	require.NoError(t, err)
	require.Len(t, got, 2)
	for _, p := range got {
		assert.Equal(t, "Apple iPad Air 11", p.Name)
		assert.Equal(t, "CHF 1,000.00", p.OldPrice)
		assert.Equal(t, "CHF 800.00", p.NewPrice)
		assert.Equal(t, 20.0, p.DiscountPercent)
		require.NotNil(t, p.MatchedRuleID)
	}
	assert.Equal(t, int64(7), *got[0].MatchedRuleID)
	assert.Equal(t, int64(9), *got[1].MatchedRuleID)
}

func TestEvaluate_Legacy(t *testing.T) {
	c := models.Candidate{Manufacturer: "Apple", Name: "AirPods", OldPriceText: "100.00", NewPriceText: "70.00"}

	got, err := Evaluate(c, LegacyBrandFilter{Brand: "apple", MinDiscount: 20})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Nil(t, got[0].MatchedRuleID)

	got, err = Evaluate(c, LegacyBrandFilter{Brand: "sony", MinDiscount: 20})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Evaluate(c, LegacyBrandFilter{Brand: "", MinDiscount: 40})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = Evaluate(c, LegacyBrandFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestEvaluate_InvalidCandidates(t *testing.T) {
	mode := RuleSet{Rules: []models.WatchRule{keyword(1, "", 0)}}

	_, err := Evaluate(models.Candidate{OldPriceText: "10", NewPriceText: "5"}, mode)
	assert.ErrorIs(t, err, ErrNoName)

	_, err = Evaluate(models.Candidate{Name: "x", OldPriceText: "n/a", NewPriceText: "5"}, mode)
	assert.ErrorIs(t, err, pricing.ErrUnparseable)

	_, err = Evaluate(models.Candidate{Name: "x", OldPriceText: "10", NewPriceText: ""}, mode)
	assert.ErrorIs(t, err, pricing.ErrUnparseable)

	_, err = Evaluate(models.Candidate{Name: "x", OldPriceText: "0.00", NewPriceText: "5"}, mode)
	assert.ErrorIs(t, err, pricing.ErrNonPositiveOldPrice)
}
