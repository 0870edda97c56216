package domain

// DocumentMetadata is what could be read from an imported document. Empty
// fields were not present in the file.
type DocumentMetadata struct {
	Title  string
	Author string
	Pages  int
}
