package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
)

const (
	feedSelect     = "*,users!posts_author_id_fkey(name,avatar_url)"
	singleObject   = "application/vnd.pgrst.object+json"
	preferMinimal  = "return=minimal"
	preferCount    = "count=exact"
	orderByNewest  = "created_at.desc"
	restPathPrefix = "/rest/v1/"
)

// RestStore implements Store over the PostgREST data API. Requests carry the
// signed-in user's access token when there is one.
type RestStore struct {
	rest  *restClient
	token func(ctx context.Context) string
}

func newRestStore(rest *restClient, token func(ctx context.Context) string) *RestStore {
	return &RestStore{rest: rest, token: token}
}

func (s *RestStore) call(ctx context.Context, req request) (*response, error) {
	req.path = restPathPrefix + req.path
	if s.token != nil {
		req.token = s.token(ctx)
	}
	return s.rest.do(ctx, req)
}

func eq(v string) string {
	return "eq." + v
}

func (s *RestStore) GetIdentity(ctx context.Context, id string) (*models.Identity, error) {
	resp, err := s.call(ctx, request{
		method:  http.MethodGet,
		path:    "users",
		query:   url.Values{"select": {"*"}, "id": {eq(id)}},
		headers: map[string]string{"Accept": singleObject},
	})
	if err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}

	identity := &models.Identity{}
	if err := resp.decode(identity); err != nil {
		return nil, fmt.Errorf("get identity: %w", err)
	}
	return identity, nil
}

func (s *RestStore) InsertIdentity(ctx context.Context, identity *models.Identity) error {
	_, err := s.call(ctx, request{
		method:  http.MethodPost,
		path:    "users",
		body:    identity,
		headers: map[string]string{"Prefer": preferMinimal},
	})
	if err != nil {
		return fmt.Errorf("insert identity: %w", err)
	}
	return nil
}

func (s *RestStore) UpdateIdentity(ctx context.Context, id string, upd models.IdentityUpdate) error {
	if upd.Empty() {
		return nil
	}
	_, err := s.call(ctx, request{
		method:  http.MethodPatch,
		path:    "users",
		query:   url.Values{"id": {eq(id)}},
		body:    upd,
		headers: map[string]string{"Prefer": preferMinimal},
	})
	if err != nil {
		return fmt.Errorf("update identity: %w", err)
	}
	return nil
}

// feedRow is a post with the embedded author resource.
type feedRow struct {
	models.Post
	Author *struct {
		Name      string  `json:"name"`
		AvatarURL *string `json:"avatar_url"`
	} `json:"users"`
}

func (s *RestStore) ListFeed(ctx context.Context, order models.FeedOrder, limit int) ([]models.Post, error) {
	// Both orders sort by recency; trending has no ranking of its own yet.
	resp, err := s.call(ctx, request{
		method: http.MethodGet,
		path:   "posts",
		query: url.Values{
			"select": {feedSelect},
			"order":  {orderByNewest},
			"limit":  {strconv.Itoa(limit)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}

	var rows []feedRow
	if err := resp.decode(&rows); err != nil {
		return nil, fmt.Errorf("list feed: %w", err)
	}

	result := make([]models.Post, 0, len(rows))
	for _, r := range rows {
		p := r.Post
		if r.Author != nil {
			if r.Author.Name != "" {
				p.AuthorName = r.Author.Name
			}
			if r.Author.AvatarURL != nil {
				p.AuthorAvatar = r.Author.AvatarURL
			}
		}
		result = append(result, p)
	}
	return result, nil
}

func (s *RestStore) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	resp, err := s.call(ctx, request{
		method: http.MethodGet,
		path:   "posts",
		query: url.Values{
			"select":    {"*"},
			"author_id": {eq(authorID)},
			"order":     {orderByNewest},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}

	result := make([]models.Post, 0)
	if err := resp.decode(&result); err != nil {
		return nil, fmt.Errorf("list posts by author: %w", err)
	}
	return result, nil
}

func (s *RestStore) CountByAuthor(ctx context.Context, authorID string) (int, error) {
	resp, err := s.call(ctx, request{
		method:  http.MethodHead,
		path:    "posts",
		query:   url.Values{"select": {"*"}, "author_id": {eq(authorID)}},
		headers: map[string]string{"Prefer": preferCount},
	})
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}

	n, err := parseContentRangeTotal(resp.header.Get("Content-Range"))
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// parseContentRangeTotal reads the total from "0-24/57" or "*/0".
func parseContentRangeTotal(v string) (int, error) {
	_, total, ok := strings.Cut(v, "/")
	if !ok || total == "*" {
		return 0, fmt.Errorf("no exact count in content-range %q", v)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("bad content-range %q: %w", v, err)
	}
	return n, nil
}

func (s *RestStore) InsertPost(ctx context.Context, post models.NewPost) error {
	_, err := s.call(ctx, request{
		method:  http.MethodPost,
		path:    "posts",
		body:    post,
		headers: map[string]string{"Prefer": preferMinimal},
	})
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}
