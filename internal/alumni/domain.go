package alumni

import "time"

// Alumni is an alumni profile awaiting or holding verification.
type Alumni struct {
	ID         int64
	Name       string
	Email      string
	GradYear   int
	Verified   bool
	VerifiedAt *time.Time
	CreatedAt  time.Time
}
