package dto

import "time"

type CreateInput struct {
	Label string
}

type BackupOutput struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// BackupDetail summarizes a stored backup without returning its rows.
type BackupDetail struct {
	Key           string
	SchemaVersion int
	Label         string
	CreatedAt     time.Time
	Categories    int
	Books         int
	Members       int
	Loans         int
}
