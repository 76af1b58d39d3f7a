// Package seed holds the built-in category catalog. Stores load it on
// startup so every backend exposes the same defaults before any
// user-defined categories exist.
package seed

import "github.com/Carlos-Bolano/Pocka/internal/core"

// Categories returns a fresh copy of the default catalog. Entries carry
// no id or timestamps; the store fills those in when it seeds itself.
func Categories() []core.Category {
	out := make([]core.Category, len(catalog))
	copy(out, catalog)
	return out
}

func cat(name, iconName, iconFamily string, kind core.CategoryKind) core.Category {
	return core.Category{
		Name: name,
		Icon: core.Icon{Family: iconFamily, Name: iconName},
		Kind: kind,
	}
}

var catalog = []core.Category{
	cat("Debts", "hand-holding-usd", "FontAwesome5", core.CategoryExpense),
	cat("Shopping", "shopping-cart", "FontAwesome", core.CategoryExpense),
	cat("Food", "food-fork-drink", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Phone", "phone-iphone", "MaterialIcons", core.CategoryExpense),
	cat("Entertainment", "popcorn", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Education", "school", "MaterialIcons", core.CategoryExpense),
	cat("Beauty", "face-woman", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Sports", "sports-soccer", "MaterialIcons", core.CategoryExpense),
	cat("Social", "account-group", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Transport", "train", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Clothing", "shirt", "FontAwesome6", core.CategoryExpense),
	cat("Car", "car", "FontAwesome", core.CategoryExpense),
	cat("Alcohol", "beer", "FontAwesome5", core.CategoryExpense),
	cat("Cigarettes", "smoking", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Electronics", "tablet-mobile-combo", "Entypo", core.CategoryExpense),
	cat("Travel", "plane", "FontAwesome", core.CategoryExpense),
	cat("Health", "heartbeat", "FontAwesome", core.CategoryExpense),
	cat("Pets", "dog", "FontAwesome5", core.CategoryExpense),
	cat("Repairs", "tools", "FontAwesome5", core.CategoryExpense),
	cat("Housing", "home", "FontAwesome", core.CategoryExpense),
	cat("Home", "sofa", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Lottery", "ticket-percent", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Snacks", "food-apple", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Kids", "baby-carriage", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Vegetables", "pepper-hot", "FontAwesome6", core.CategoryExpense),
	cat("Fruits", "fruit-watermelon", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Utilities", "lightbulb-on", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Insurance", "shield-check", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Taxes", "file-document-outline", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Groceries", "basket", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Restaurants", "silverware-fork-knife", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Coffee", "coffee", "FontAwesome", core.CategoryExpense),
	cat("Subscriptions", "credit-card-settings-outline", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Gym", "weight-lifter", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Personal Care", "face-mask", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Hobbies", "gamepad-variant", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Pet Supplies", "paw", "FontAwesome", core.CategoryExpense),
	cat("Bank Fees", "bank", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Legal", "gavel", "FontAwesome5", core.CategoryExpense),
	cat("Child Care", "baby-face-outline", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Cleaning", "broom", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Gardening", "flower", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Vacation", "beach", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Car Purchase", "car-settings", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Emergency", "shield-alert-outline", "MaterialCommunityIcons", core.CategoryExpense),
	cat("New Business", "lightbulb-outline", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Wedding", "ring", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Renovation", "wrench", "FontAwesome", core.CategoryExpense),
	cat("Health Goal", "heart-plus-outline", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Savings", "piggy-bank", "FontAwesome5", core.CategoryExpense),
	cat("Salary", "cash", "MaterialCommunityIcons", core.CategoryIncome),
	cat("Freelance", "briefcase-check", "MaterialCommunityIcons", core.CategoryIncome),
	cat("Gifts", "gift", "FontAwesome", core.CategoryIncome),
	cat("Refunds", "cash-refund", "MaterialCommunityIcons", core.CategoryIncome),
	cat("Bonus", "star-circle-outline", "MaterialCommunityIcons", core.CategoryIncome),
	cat("Rental Income", "home-account", "MaterialCommunityIcons", core.CategoryIncome),
	cat("Side Hustle", "rocket-launch-outline", "MaterialCommunityIcons", core.CategoryIncome),
	cat("Allowance", "child", "FontAwesome", core.CategoryIncome),
	cat("Pension", "account-tie-outline", "MaterialCommunityIcons", core.CategoryIncome),
	cat("Debts (Income)", "hand-holding-usd", "FontAwesome5", core.CategoryIncome),
	cat("Investment (Income)", "chart-areaspline", "MaterialCommunityIcons", core.CategoryIncome),
	cat("Investment (Expense)", "chart-line", "MaterialCommunityIcons", core.CategoryExpense),
	cat("Gifts (Expense)", "gift", "FontAwesome", core.CategoryExpense),
}
