package domain

// InboundMessage is one user message carrying URLs to ingest. URLs are
// already extracted from markup and capped; UserNote holds whatever
// non-link text accompanied them, empty when there was none.
type InboundMessage struct {
	Channel   string
	Timestamp string
	UserID    string
	URLs      []string
	UserNote  string
}
