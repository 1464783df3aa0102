package blacklist

import "time"

// Entry blocks an email address from the alumni platform.
type Entry struct {
	ID        int64
	Email     string
	Reason    string
	AddedBy   int64
	CreatedAt time.Time
}
