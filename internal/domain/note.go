package domain

import "time"

// Note is the aggregate for work items assigned to users. Ticket numbers are
// allocated from a database sequence starting at 500.
type Note struct {
	ID        string
	TicketNum int64
	UserID    string
	Username  string // assignee username, populated on reads
	Title     string
	Text      string
	Completed bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
