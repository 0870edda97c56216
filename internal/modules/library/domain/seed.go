package domain

type SeedBook struct {
	Title    string
	Author   string
	ISBN     string
	Category string
	// Borrower, when set, names the seed member who has the book on loan.
	Borrower string
}

type SeedMember struct {
	Name  string
	Email string
}

// Demo data used by the seed command on an empty library.
var (
	SeedCategories = []string{"Romance", "Fantasy", "Horror"}

	SeedBooks = []SeedBook{
		{Title: "Heated Rivalry", Author: "Rachel Reid", ISBN: "978-1335534637", Category: "Romance"},
		{Title: "Fifty Shades of Grey", Author: "E.L. James", ISBN: "978-0345803481", Category: "Romance"},
		{Title: "The Witcher", Author: "Andrzej Sapkowski", Category: "Fantasy", Borrower: "Derrick M."},
		{Title: "It", Author: "Stephen King", Category: "Horror"},
	}

	SeedMembers = []SeedMember{
		{Name: "Justin P.", Email: "justin@example.com"},
		{Name: "Derrick M.", Email: "derrick@example.com"},
		{Name: "Noah D.", Email: "noah@example.com"},
	}
)
