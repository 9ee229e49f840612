package models

import "time"

type Message struct {
	ID        int64
	UserID    int64
	Text      string
	CreatedAt time.Time
}
