package models

// Profile is a read view of a user with graph and message counts.
type Profile struct {
	User      *User
	Followers int64
	Following int64
	Messages  int64
}
