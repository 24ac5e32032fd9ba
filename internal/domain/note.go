package domain

import "time"

type NoteId = int64

type Note struct {
	Id         NoteId
	UserId     UserId
	BookId     BookId
	PageNumber *int
	NoteText   string
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}
