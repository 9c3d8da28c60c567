package task

// Category is a static catalog entry. The catalog is fixed and not
// user-editable; tasks referencing an unknown category are tolerated
// and display as "Uncategorized".
type Category struct {
	ID       string
	Name     string
	Color    string
	Icon     string
	Keywords []string
}

// DefaultCategoryID is assigned when no catalog keyword matches.
const DefaultCategoryID = "personal"

// catalog order is load-bearing: the quick-add parser assigns the
// first entry whose keyword list matches, so this slice must keep a
// stable order across builds.
var catalog = []Category{
	{
		ID:       "personal",
		Name:     "Personal",
		Color:    "#8b5cf6",
		Icon:     "user",
		Keywords: []string{"call", "mom", "dad", "family", "friend", "birthday", "anniversary"},
	},
	{
		ID:       "work",
		Name:     "Work",
		Color:    "#3b82f6",
		Icon:     "briefcase",
		Keywords: []string{"meeting", "report", "email", "boss", "client", "deadline", "presentation", "office"},
	},
	{
		ID:       "shopping",
		Name:     "Shopping",
		Color:    "#f59e0b",
		Icon:     "shopping-cart",
		Keywords: []string{"buy", "shop", "purchase", "order", "groceries", "store"},
	},
	{
		ID:       "health",
		Name:     "Health",
		Color:    "#10b981",
		Icon:     "heart",
		Keywords: []string{"doctor", "gym", "workout", "medicine", "dentist", "exercise", "appointment"},
	},
	{
		ID:       "home",
		Name:     "Home",
		Color:    "#ef4444",
		Icon:     "home",
		Keywords: []string{"clean", "laundry", "repair", "garden", "dishes", "vacuum", "fix"},
	},
	{
		ID:       "finance",
		Name:     "Finance",
		Color:    "#14b8a6",
		Icon:     "credit-card",
		Keywords: []string{"pay", "bill", "bank", "budget", "invoice", "tax", "rent"},
	},
}

// Catalog returns the fixed category catalog in its stable iteration
// order.
func Catalog() []Category {
	out := make([]Category, len(catalog))
	copy(out, catalog)
	return out
}

// CategoryByID looks up a catalog entry.
func CategoryByID(id string) (Category, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// CategoryDisplayName returns the display name for a category key,
// falling back to "Uncategorized" for unknown keys.
func CategoryDisplayName(id string) string {
	if c, ok := CategoryByID(id); ok {
		return c.Name
	}
	return "Uncategorized"
}
