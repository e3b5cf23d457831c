package services

import (
	"context"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/dmitrijs2005/connecthub/internal/client/backend"
	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/dmitrijs2005/connecthub/internal/logging"
)

// Composer holds the post draft and submits it.
type Composer struct {
	posts     backend.Posts
	log       logging.Logger
	onCreated func(ctx context.Context) error

	mu    sync.Mutex
	draft string
}

// NewComposer constructs a Composer. onCreated runs after a successful
// insert, typically the feed's Refresh; it may be nil.
func NewComposer(posts backend.Posts, log logging.Logger, onCreated func(ctx context.Context) error) *Composer {
	return &Composer{posts: posts, log: log.With("component", "composer"), onCreated: onCreated}
}

func (c *Composer) SetDraft(s string) {
	c.mu.Lock()
	c.draft = s
	c.mu.Unlock()
}

func (c *Composer) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// Length is the character count of the trimmed draft.
func (c *Composer) Length() int {
	return utf8.RuneCountInString(strings.TrimSpace(c.Draft()))
}

// ValidatePost trims content and checks it against the length bounds.
func ValidatePost(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", common.ErrEmptyPost
	}
	if utf8.RuneCountInString(content) > common.MaxPostLength {
		return "", common.ErrPostTooLong
	}
	return content, nil
}

// Submit posts the draft as author. Validation failures make no backend
// call. On success the draft is cleared; on failure it is kept.
func (c *Composer) Submit(ctx context.Context, author *models.Identity) error {
	content, err := ValidatePost(c.Draft())
	if err != nil {
		return err
	}
	if author == nil {
		return common.ErrNoIdentity
	}

	np := models.NewPost{
		Content:      content,
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.AvatarURL,
	}
	if err := c.posts.InsertPost(ctx, np); err != nil {
		c.log.Error(ctx, "post create failed", "author", author.ID, "error", err)
		return err
	}

	c.mu.Lock()
	c.draft = ""
	c.mu.Unlock()

	c.log.Info(ctx, "post created", "author", author.ID, "length", utf8.RuneCountInString(content))

	if c.onCreated != nil {
		if err := c.onCreated(ctx); err != nil {
			c.log.Warn(ctx, "feed refresh after post failed", "error", err)
		}
	}
	return nil
}
