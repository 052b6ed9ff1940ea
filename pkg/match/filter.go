package match

import (
	"regexp"

	"github.com/mealbyte/foodserve/internal/utils"
)

// Third-party food databases carry a surprising amount of packaging and
// promotional text where product names should be. These lists suppress the
// worst of it before any scoring happens.
var denyTerms = []string{
	"sweepstake",
	"coupon",
	"gift card",
	"promo code",
	"free inside",
	"collect points",
	"loyalty card",
	// merchandise that food databases list next to actual food
	"yoga mat",
	"t-shirt",
	"keychain",
	"sticker pack",
}

var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`scan\s+(to|&|and)\s+win`),
	regexp.MustCompile(`\bwin\s+a\b`),
	regexp.MustCompile(`\bqr\s*code\b`),
	regexp.MustCompile(`\blimited\s+edition\s+promo\b`),
}

// LooksLikeItemName reports whether a candidate string plausibly names a
// food or drink item. Too-short strings, strings without letters and
// denylisted packaging text are all rejected.
func LooksLikeItemName(name string) bool {
	n := utils.Normalize(name)
	if len(n) < 2 {
		return false
	}
	if !utils.ContainsLetter(n) {
		return false
	}
	for _, term := range denyTerms {
		if utils.StringContainsIgnoreCase(n, term) {
			return false
		}
	}
	for _, re := range denyPatterns {
		if re.MatchString(n) {
			return false
		}
	}
	return true
}
