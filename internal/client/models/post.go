package models

import "time"

// Post is a single feed entry. AuthorName and AuthorAvatar are a snapshot of
// the author taken at creation time; feed queries overlay the author's current
// values when the join returns them.
type Post struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name"`
	AuthorAvatar  *string   `json:"author_avatar,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LikesCount    *int      `json:"likes_count,omitempty"`
	CommentsCount *int      `json:"comments_count,omitempty"`
}

// NewPost is the insert payload for a post.
type NewPost struct {
	Content      string  `json:"content"`
	AuthorID     string  `json:"author_id"`
	AuthorName   string  `json:"author_name"`
	AuthorAvatar *string `json:"author_avatar,omitempty"`
}

// FeedOrder selects the feed ordering mode.
type FeedOrder string

const (
	FeedOrderRecent   FeedOrder = "recent"
	FeedOrderTrending FeedOrder = "trending"
)

// ParseFeedOrder maps user input to a FeedOrder.
func ParseFeedOrder(s string) (FeedOrder, bool) {
	switch FeedOrder(s) {
	case FeedOrderRecent, FeedOrderTrending:
		return FeedOrder(s), true
	}
	return "", false
}
