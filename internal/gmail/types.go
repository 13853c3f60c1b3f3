package gmail

type MessageID string

type Header struct {
	Name  string
	Value string
}

// ListPage is one page of message identifiers. An empty NextPageToken means
// there are no further pages.
type ListPage struct {
	IDs           []MessageID
	NextPageToken string
}

// Query is a mailbox search expression in Gmail syntax, e.g. "newer_than:1h".
type Query struct {
	Raw string
}

const (
	HeaderFrom = "From"
	HeaderTo   = "To"
)
