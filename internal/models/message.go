package models

// Message is one incoming chat event, consumed once per cognition cycle.
type Message struct {
	ID           string
	ChannelID    string
	AuthorID     string
	AuthorName   string // display name, used when addressing the model
	Content      string
	IsDM         bool
	MentionsBot  bool
	IsReplyToBot bool
}

// HistoryEntry is one prior channel message fed to the history compressor.
type HistoryEntry struct {
	AuthorName string
	Content    string
	FromBot    bool
}
