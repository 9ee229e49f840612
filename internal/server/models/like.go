package models

// LikeState is the outcome of a like toggle.
type LikeState int

const (
	LikeStateUnliked LikeState = iota
	LikeStateLiked
)

func (s LikeState) String() string {
	if s == LikeStateLiked {
		return "liked"
	}
	return "unliked"
}
