package core

// DefaultCategories are provisioned once for every newly registered user.
var DefaultCategories = []Category{
	{Name: "Salary", Description: "Monthly salary and wages"},
	{Name: "Groceries", Description: "Food and household items"},
	{Name: "Transportation", Description: "Gas, public transit, car expenses"},
	{Name: "Entertainment", Description: "Movies, dining out, hobbies"},
	{Name: "Utilities", Description: "Electricity, water, internet, phone"},
}

// DefaultCategoriesFor returns a fresh copy of DefaultCategories owned by userID.
func DefaultCategoriesFor(userID int64) []Category {
	out := make([]Category, len(DefaultCategories))
	for i, c := range DefaultCategories {
		c.UserID = userID
		out[i] = c
	}
	return out
}
