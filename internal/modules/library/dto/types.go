package dto

import "time"

type CreateCategoryInput struct {
	Name string
}

type BookInput struct {
	Title      string
	Author     string
	ISBN       string
	CategoryID string
}

type UpdateBookInput struct {
	BookID string
	BookInput
}

type ImportPDFInput struct {
	Path       string
	CategoryID string
}

type CreateMemberInput struct {
	Name  string
	Email string
}

type BorrowInput struct {
	BookID   string
	MemberID string
	// DueDays of zero means the configured default.
	DueDays int
}

type BookQuery struct {
	CategoryID    string
	Search        string
	AvailableOnly bool
}

type LoanQuery struct {
	Filter   string
	MemberID string
}

// MutationOutput mirrors domain.Outcome. Applied is false when the request
// was rejected; Reason says why.
type MutationOutput struct {
	Applied bool
	ID      string
	Reason  string
}

type CategoryOutput struct {
	ID        string
	Name      string
	BookCount int
}

type BookOutput struct {
	ID           string
	Title        string
	Author       string
	ISBN         string
	CategoryID   string
	CategoryName string
	AddedAt      time.Time
	IsAvailable  bool
}

type MemberOutput struct {
	ID          string
	Name        string
	Email       string
	JoinedAt    time.Time
	ActiveLoans int
}

type MemberDetailOutput struct {
	MemberOutput
	Active []LoanOutput
	Past   []LoanOutput
}

type LoanOutput struct {
	ID          string
	BookID      string
	BookTitle   string
	BookAuthor  string
	MemberID    string
	MemberName  string
	MemberEmail string
	BorrowedAt  time.Time
	DueAt       time.Time
	ReturnedAt  time.Time
	Status      string
	StatusLabel string
	DaysOverdue int
}

type StatsOutput struct {
	Categories     int
	Books          int
	AvailableBooks int
	Members        int
	OpenLoans      int
	OverdueLoans   int
	Summary        string
}

// SnapshotOutput is a full copy of the library, used for exports.
type SnapshotOutput struct {
	Categories []CategoryRecord `json:"categories"`
	Books      []BookRecord     `json:"books"`
	Members    []MemberRecord   `json:"members"`
	Loans      []LoanRecord     `json:"loans"`
}

type CategoryRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type BookRecord struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	ISBN        string    `json:"isbn,omitempty"`
	CategoryID  string    `json:"category_id,omitempty"`
	AddedAt     time.Time `json:"added_at"`
	IsAvailable bool      `json:"is_available"`
}

type MemberRecord struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	JoinedAt time.Time `json:"joined_at"`
}

type LoanRecord struct {
	ID         string     `json:"id"`
	BookID     string     `json:"book_id"`
	MemberID   string     `json:"member_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueAt      *time.Time `json:"due_at,omitempty"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
}

// ChangeEvent is published after every successful commit.
type ChangeEvent struct {
	Stats StatsOutput
}
