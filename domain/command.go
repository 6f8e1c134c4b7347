package domain

// SetNameCommand carries the display name a caller wants to take.
// Any non-empty string is acceptable, duplicates and whitespace included.
type SetNameCommand struct {
	Name string `validate:"required"`
}

// SendMessageCommand carries the text of a chat message to append.
type SendMessageCommand struct {
	Text string `validate:"required"`
}
