package remote

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/mealbyte/foodserve/internal/utils"
	"github.com/mealbyte/foodserve/pkg/match"
	"github.com/mealbyte/foodserve/pkg/serving"
	"github.com/mealbyte/foodserve/pkg/suggest"
)

// productRecord mirrors the raw upstream record. The database is
// community-maintained, so every numeric field may arrive as a number,
// a quoted string, or garbage; flexFloat absorbs all three.
type productRecord struct {
	Name        string     `json:"product_name"`
	Code        string     `json:"code"`
	ServingSize string     `json:"serving_size"`
	Nutriments  nutriments `json:"nutriments"`
}

type nutriments struct {
	KcalServing flexFloat `json:"energy-kcal_serving"`
	Kcal100g    flexFloat `json:"energy-kcal_100g"`
	Kcal100ml   flexFloat `json:"energy-kcal_100ml"`
	Kcal        flexFloat `json:"energy-kcal"`

	ProteinServing flexFloat `json:"proteins_serving"`
	Protein100g    flexFloat `json:"proteins_100g"`
	Protein100ml   flexFloat `json:"proteins_100ml"`

	CarbsServing flexFloat `json:"carbohydrates_serving"`
	Carbs100g    flexFloat `json:"carbohydrates_100g"`
	Carbs100ml   flexFloat `json:"carbohydrates_100ml"`

	FatServing flexFloat `json:"fat_serving"`
	Fat100g    flexFloat `json:"fat_100g"`
	Fat100ml   flexFloat `json:"fat_100ml"`
}

// macroBasis says which column the chosen calorie figure came from, so
// protein/carbs/fat are read off the same column.
type macroBasis int

const (
	basisNone macroBasis = iota
	basisServing
	basisPer100g
	basisPer100ml
)

// resolveBasis picks calories in the fixed priority order: serving-based
// when a serving size resolved, then per-100g, per-100ml, and the
// unscoped generic field last. basisNone means the record is unusable.
func resolveBasis(rec productRecord, size *serving.Size) (*float64, macroBasis) {
	n := rec.Nutriments
	if size != nil && n.KcalServing.val != nil {
		return n.KcalServing.val, basisServing
	}
	if n.Kcal100g.val != nil {
		return n.Kcal100g.val, basisPer100g
	}
	if n.Kcal100ml.val != nil {
		return n.Kcal100ml.val, basisPer100ml
	}
	if n.Kcal.val != nil {
		return n.Kcal.val, basisServing
	}
	return nil, basisNone
}

func (n nutriments) pick(basis macroBasis, servingV, per100gV, per100mlV flexFloat) *float64 {
	switch basis {
	case basisServing:
		if servingV.val != nil {
			return servingV.val
		}
	case basisPer100ml:
		if per100mlV.val != nil {
			return per100mlV.val
		}
	}
	return per100gV.val
}

// toProduct normalizes a raw record, or returns nil when the record is
// malformed: junk name, or no reliable calorie figure on any basis. A
// suggestion with zero macro data is worse than no suggestion.
func (c *Client) toProduct(rec productRecord) *suggest.Product {
	if !match.LooksLikeItemName(rec.Name) {
		return nil
	}

	n := rec.Nutriments
	size := serving.ForProduct(rec.ServingSize, n.KcalServing.val, n.Kcal100g.val, n.Kcal100ml.val)
	calories, basis := resolveBasis(rec, size)
	if basis == basisNone {
		return nil
	}

	p := &suggest.Product{
		Name:     strings.TrimSpace(rec.Name),
		Barcode:  rec.Code,
		Calories: calories,
		Protein:  n.pick(basis, n.ProteinServing, n.Protein100g, n.Protein100ml),
		Carbs:    n.pick(basis, n.CarbsServing, n.Carbs100g, n.Carbs100ml),
		Fats:     n.pick(basis, n.FatServing, n.Fat100g, n.Fat100ml),
	}
	if size != nil {
		p.WeightAmount = &size.Amount
		p.WeightUnit = size.Unit
		p.WeightGrams = size.GramsEq
		p.WeightMl = size.MlEq
	}
	return p
}

// toScored converts a search record into a scored suggestion, or nil when
// the record is malformed or irrelevant to the query.
func (c *Client) toScored(rec productRecord, query string) *suggest.Scored {
	product := c.toProduct(rec)
	if product == nil {
		return nil
	}

	score := c.scorer.Score(product.Name, query)
	if !c.relevant(product.Name, query, score) {
		return nil
	}

	itemType := suggest.TypeFood
	if product.WeightUnit == serving.Milliliters || product.WeightMl != nil {
		itemType = suggest.TypeLiquid
	}

	var label string
	if product.WeightAmount != nil {
		label = (&serving.Size{Amount: *product.WeightAmount, Unit: product.WeightUnit}).Label()
	}

	return &suggest.Scored{
		Suggestion: suggest.Suggestion{
			ID:           rec.Code,
			Name:         product.Name,
			Barcode:      product.Barcode,
			ServingLabel: label,
			Source:       c.cfg.Tag,
			Prefill: suggest.Macros{
				Calories:     product.Calories,
				Protein:      product.Protein,
				Carbs:        product.Carbs,
				Fats:         product.Fats,
				WeightAmount: product.WeightAmount,
				WeightUnit:   string(product.WeightUnit),
				Type:         itemType,
			},
		},
		Score: score,
	}
}

// relevant: direct token/substring overlap, or a close enough score.
func (c *Client) relevant(name, query string, score float64) bool {
	n := utils.Normalize(name)
	q := utils.Normalize(query)
	if strings.Contains(n, q) || strings.Contains(q, n) {
		return true
	}
	if c.scorer.TokenCoverage(n, q) > 0 {
		return true
	}
	return score <= c.cfg.RelevanceMax
}

// flexFloat decodes a JSON value that may be a number, a numeric string,
// null, or junk. Junk decodes to "unknown" rather than failing the whole
// record.
type flexFloat struct {
	val *float64
}

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	f.val = &v
	return nil
}
