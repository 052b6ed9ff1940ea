// Package serving normalizes free-text serving descriptions ("100g",
// "1 portion", "2 x 330 ml") into a canonical amount + unit record with
// optional gram/milliliter equivalents.
package serving

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mealbyte/foodserve/internal/utils"
)

// Unit is the canonical serving unit.
type Unit string

const (
	Grams       Unit = "g"
	Milliliters Unit = "ml"
	Portion     Unit = "portion"
)

// Size is a normalized serving description. The equivalents are nil when
// unknown; absence always means "unknown", never zero.
type Size struct {
	Amount     float64
	Unit       Unit
	GramsEq    *float64
	MlEq *float64
}

// Label renders text the way the app displays servings.
func (s *Size) Label() string {
	amount := strconv.FormatFloat(s.Amount, 'f', -1, 64)
	switch s.Unit {
	case Portion:
		if s.Amount == 1 {
			return "1 portion"
		}
		return amount + " portions"
	default:
		return amount + " " + string(s.Unit)
	}
}

var (
	kgPattern      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*kg\b`)
	gramPattern    = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:g|gr|grams?)\b`)
	literPattern   = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:l|liters?|litres?)\b`)
	mlPattern      = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:ml|milliliters?|millilitres?)\b`)
	portionPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)?\s*(?:servings?|portions?)\b`)
)

// Parse turns a free-text serving description into a Size.
// Returns nil when nothing is recognizable and no fallback unit is given.
// European label data uses "," as the decimal separator, so commas are
// folded into dots before matching.
func Parse(text string, fallback Unit) *Size {
	t := strings.ReplaceAll(utils.Normalize(text), ",", ".")

	grams := matchAmount(gramPattern, t)
	if kg := matchAmount(kgPattern, t); kg != nil {
		v := *kg * 1000
		grams = &v
	}
	ml := matchAmount(mlPattern, t)
	if ml == nil {
		// "0.5 l" style; only consulted when ml didn't hit, since the
		// liter pattern would otherwise also see the trailing l of "ml"
		if l := matchAmount(literPattern, t); l != nil {
			v := *l * 1000
			ml = &v
		}
	}

	if m := portionPattern.FindStringSubmatch(t); m != nil {
		amount := 1.0
		if m[1] != "" {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil && v > 0 {
				amount = v
			}
		}
		// a label like "1 serving (30 g)" carries its own equivalents
		return &Size{Amount: amount, Unit: Portion, GramsEq: grams, MlEq: ml}
	}

	if grams != nil {
		return &Size{Amount: *grams, Unit: Grams, GramsEq: grams}
	}
	if ml != nil {
		return &Size{Amount: *ml, Unit: Milliliters, MlEq: ml}
	}

	if fallback != "" {
		return &Size{Amount: 1, Unit: fallback}
	}
	return nil
}

// ForProduct derives serving info for a remote record whose macros may be
// reported per serving, per 100g or per 100ml. Preference order follows
// the macro basis: serving figures first, then the per-100 bases. When the
// label gave no parseable weight but both a per-serving and a per-100g
// calorie figure exist, the implied gram weight of one serving is
// recovered as (kcalServing / kcal100g) * 100.
func ForProduct(servingText string, kcalServing, kcal100g, kcal100ml *float64) *Size {
	size := Parse(servingText, "")

	if size != nil {
		if size.Unit == Portion && size.GramsEq == nil && size.MlEq == nil {
			size.GramsEq = impliedGrams(kcalServing, kcal100g)
		}
		return size
	}

	if kcalServing != nil {
		return &Size{Amount: 1, Unit: Portion, GramsEq: impliedGrams(kcalServing, kcal100g)}
	}
	if kcal100g != nil {
		v := 100.0
		return &Size{Amount: 100, Unit: Grams, GramsEq: &v}
	}
	if kcal100ml != nil {
		v := 100.0
		return &Size{Amount: 100, Unit: Milliliters, MlEq: &v}
	}
	return nil
}

func impliedGrams(kcalServing, kcal100g *float64) *float64 {
	if kcalServing == nil || kcal100g == nil || *kcal100g <= 0 {
		return nil
	}
	v := *kcalServing / *kcal100g * 100
	return &v
}

func matchAmount(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}
