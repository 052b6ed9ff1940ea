package serving

import (
	"testing"
)

func fptr(v float64) *float64 { return &v }

func TestParse(t *testing.T) {
	cases := []struct {
		text        string
		fallback    Unit
		want        *Size
		description string
	}{
		{"100g", "", &Size{Amount: 100, Unit: Grams, GramsEq: fptr(100)}, "plain grams"},
		{"100 g", "", &Size{Amount: 100, Unit: Grams, GramsEq: fptr(100)}, "grams with space"},
		{"1 kg", "", &Size{Amount: 1000, Unit: Grams, GramsEq: fptr(1000)}, "kilograms scale up"},
		{"2,5 g", "", &Size{Amount: 2.5, Unit: Grams, GramsEq: fptr(2.5)}, "comma decimal separator"},
		{"330 ml", "", &Size{Amount: 330, Unit: Milliliters, MlEq: fptr(330)}, "milliliters"},
		{"0.5 l", "", &Size{Amount: 500, Unit: Milliliters, MlEq: fptr(500)}, "liters scale up"},
		{"1 portion", "", &Size{Amount: 1, Unit: Portion}, "single portion"},
		{"2 servings", "", &Size{Amount: 2, Unit: Portion}, "serving count"},
		{"serving", "", &Size{Amount: 1, Unit: Portion}, "bare serving word defaults to 1"},
		{"1 serving (30 g)", "", &Size{Amount: 1, Unit: Portion, GramsEq: fptr(30)}, "portion keeps gram equivalent"},
		{"1 portion (250 ml)", "", &Size{Amount: 1, Unit: Portion, MlEq: fptr(250)}, "portion keeps ml equivalent"},
		{"12 oz", Grams, &Size{Amount: 1, Unit: Grams}, "unknown unit falls back"},
		{"12 oz", "", nil, "unknown unit without fallback"},
		{"", "", nil, "empty text"},
		{"tasty snack", "", nil, "no numbers no units"},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			got := Parse(tc.text, tc.fallback)
			assertSize(t, got, tc.want)
		})
	}
}

func TestForProduct(t *testing.T) {
	cases := []struct {
		text        string
		kcalServing *float64
		kcal100g    *float64
		kcal100ml   *float64
		want        *Size
		description string
	}{
		{
			"30 g", fptr(150), fptr(500), nil,
			&Size{Amount: 30, Unit: Grams, GramsEq: fptr(30)},
			"explicit label wins over derivation",
		},
		{
			"1 serving", fptr(150), fptr(500), nil,
			&Size{Amount: 1, Unit: Portion, GramsEq: fptr(30)},
			"portion label derives implied grams from kcal ratio",
		},
		{
			"", fptr(150), fptr(500), nil,
			&Size{Amount: 1, Unit: Portion, GramsEq: fptr(30)},
			"no label at all still derives a portion",
		},
		{
			"", fptr(150), nil, nil,
			&Size{Amount: 1, Unit: Portion},
			"serving kcal without per-100g basis gives no weight",
		},
		{
			"", nil, fptr(52), nil,
			&Size{Amount: 100, Unit: Grams, GramsEq: fptr(100)},
			"per-100g basis synthesizes 100 g",
		},
		{
			"", nil, nil, fptr(42),
			&Size{Amount: 100, Unit: Milliliters, MlEq: fptr(100)},
			"per-100ml basis synthesizes 100 ml",
		},
		{
			"", nil, nil, nil,
			nil,
			"nothing known",
		},
	}

	for _, tc := range cases {
		t.Run(tc.description, func(t *testing.T) {
			got := ForProduct(tc.text, tc.kcalServing, tc.kcal100g, tc.kcal100ml)
			assertSize(t, got, tc.want)
		})
	}
}

func TestLabel(t *testing.T) {
	cases := []struct {
		size Size
		want string
	}{
		{Size{Amount: 100, Unit: Grams}, "100 g"},
		{Size{Amount: 330, Unit: Milliliters}, "330 ml"},
		{Size{Amount: 1, Unit: Portion}, "1 portion"},
		{Size{Amount: 2, Unit: Portion}, "2 portions"},
		{Size{Amount: 2.5, Unit: Grams}, "2.5 g"},
	}
	for _, tc := range cases {
		if got := tc.size.Label(); got != tc.want {
			t.Errorf("Label() = %q, want %q", got, tc.want)
		}
	}
}

func assertSize(t *testing.T, got, want *Size) {
	t.Helper()
	if (got == nil) != (want == nil) {
		t.Fatalf("got %+v, want %+v", got, want)
	}
	if got == nil {
		return
	}
	if got.Amount != want.Amount || got.Unit != want.Unit {
		t.Errorf("got %v %s, want %v %s", got.Amount, got.Unit, want.Amount, want.Unit)
	}
	assertFloat(t, "grams equivalent", got.GramsEq, want.GramsEq)
	assertFloat(t, "ml equivalent", got.MlEq, want.MlEq)
}

func assertFloat(t *testing.T, label string, got, want *float64) {
	t.Helper()
	if (got == nil) != (want == nil) {
		t.Errorf("%s: got %v, want %v", label, got, want)
		return
	}
	if got != nil && *got != *want {
		t.Errorf("%s: got %v, want %v", label, *got, *want)
	}
}
