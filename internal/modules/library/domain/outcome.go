package domain

// Outcome reports what a mutating operation did. A rejected operation has
// Applied == false and a Reason; nothing was written.
type Outcome struct {
	Applied bool
	ID      string
	Reason  string
}

func Applied(id string) Outcome {
	return Outcome{Applied: true, ID: id}
}

func Skipped(reason string) Outcome {
	return Outcome{Reason: reason}
}
