package suggest

// DefaultCatalog is the builtin quick-add list: common items a user logs
// constantly, with keyword aliases for how people actually type them.
func DefaultCatalog() []CatalogItem {
	return []CatalogItem{
		{Name: "Water", Keywords: []string{"h2o", "tap water", "sparkling water"}, Type: TypeLiquid},
		{Name: "Black Coffee", Keywords: []string{"coffee", "americano", "espresso"}, Type: TypeLiquid},
		{Name: "Coffee with Milk", Keywords: []string{"latte", "flat white", "cappuccino"}, Type: TypeLiquid},
		{Name: "Green Tea", Keywords: []string{"tea", "matcha"}, Type: TypeLiquid},
		{Name: "Orange Juice", Keywords: []string{"oj", "juice"}, Type: TypeLiquid},
		{Name: "Whole Milk", Keywords: []string{"milk"}, Type: TypeLiquid},
		{Name: "Diet Coke (can)", Keywords: []string{"diet coke", "coke zero", "diet soda"}, Type: TypeLiquid},
		{Name: "Protein Shake", Keywords: []string{"whey", "shake", "protein powder"}, Type: TypeLiquid},
		{Name: "Beer (pint)", Keywords: []string{"beer", "lager", "ale"}, Type: TypeLiquid},
		{Name: "Red Wine (glass)", Keywords: []string{"wine"}, Type: TypeLiquid},

		{Name: "Banana", Keywords: []string{"nana"}, Type: TypeFood},
		{Name: "Apple", Keywords: []string{}, Type: TypeFood},
		{Name: "Orange", Keywords: []string{}, Type: TypeFood},
		{Name: "Blueberries", Keywords: []string{"berries"}, Type: TypeFood},
		{Name: "Avocado", Keywords: []string{"avo"}, Type: TypeFood},

		{Name: "Plain Greek Yogurt", Keywords: []string{"yogurt", "yoghurt", "greek yogurt"}, Type: TypeFood},
		{Name: "Cottage Cheese", Keywords: []string{}, Type: TypeFood},
		{Name: "Cheddar Cheese", Keywords: []string{"cheese"}, Type: TypeFood},
		{Name: "Boiled Egg", Keywords: []string{"egg", "eggs"}, Type: TypeFood},
		{Name: "Scrambled Eggs", Keywords: []string{}, Type: TypeFood},

		{Name: "Oatmeal", Keywords: []string{"oats", "porridge"}, Type: TypeFood},
		{Name: "Whole Wheat Bread (slice)", Keywords: []string{"bread", "toast"}, Type: TypeFood},
		{Name: "White Rice (cooked)", Keywords: []string{"rice"}, Type: TypeFood},
		{Name: "Pasta (cooked)", Keywords: []string{"spaghetti", "noodles"}, Type: TypeFood},
		{Name: "Granola", Keywords: []string{"muesli", "cereal"}, Type: TypeFood},

		{Name: "Chicken Breast", Keywords: []string{"chicken"}, Type: TypeFood},
		{Name: "Salmon Fillet", Keywords: []string{"salmon", "fish"}, Type: TypeFood},
		{Name: "Ground Beef", Keywords: []string{"beef", "mince"}, Type: TypeFood},
		{Name: "Tofu", Keywords: []string{}, Type: TypeFood},
		{Name: "Canned Tuna", Keywords: []string{"tuna"}, Type: TypeFood},

		{Name: "Peanut Butter", Keywords: []string{"pb", "nut butter"}, Type: TypeFood},
		{Name: "Almonds", Keywords: []string{"nuts"}, Type: TypeFood},
		{Name: "Olive Oil (tbsp)", Keywords: []string{"oil"}, Type: TypeFood},
		{Name: "Dark Chocolate (square)", Keywords: []string{"chocolate", "choc"}, Type: TypeFood},
		{Name: "Protein Bar", Keywords: []string{"bar"}, Type: TypeFood},

		{Name: "Mixed Salad", Keywords: []string{"salad", "greens"}, Type: TypeFood},
		{Name: "Baked Potato", Keywords: []string{"potato"}, Type: TypeFood},
		{Name: "Sweet Potato", Keywords: []string{}, Type: TypeFood},
		{Name: "Broccoli (steamed)", Keywords: []string{"broccoli"}, Type: TypeFood},
		{Name: "Hummus", Keywords: []string{}, Type: TypeFood},
	}
}
