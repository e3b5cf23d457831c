package services

import (
	"context"
	"io"
	"sync"

	"github.com/dmitrijs2005/connecthub/internal/client/backend"
	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/dmitrijs2005/connecthub/internal/logging"
)

// AvatarUploader stores an avatar image and returns its public URL.
type AvatarUploader interface {
	UploadAvatar(ctx context.Context, userID, filename string, body io.Reader) (string, error)
}

// ProfileService loads profiles and edits the viewer's own one.
//
// Contract:
//   - Load: identity plus post count and post list of userID, or of the
//     viewer when userID is empty. Only an identity failure is returned.
//   - EditProfile / ChangeAvatar: update the authenticated identity.
type ProfileService interface {
	Load(ctx context.Context, viewer *models.Identity, userID string) (*models.Profile, []models.Post, error)
	EditProfile(ctx context.Context, upd models.IdentityUpdate) error
	ChangeAvatar(ctx context.Context, filename string, body io.Reader) error
}

type profileService struct {
	store   backend.Store
	auth    AuthService
	avatars AvatarUploader
	log     logging.Logger
}

func NewProfileService(store backend.Store, auth AuthService, avatars AvatarUploader, log logging.Logger) ProfileService {
	return &profileService{store: store, auth: auth, avatars: avatars, log: log.With("component", "profile")}
}

// IsOwn reports whether userID names the viewer's own profile.
func IsOwn(viewer *models.Identity, userID string) bool {
	if userID == "" {
		return viewer != nil
	}
	return viewer != nil && viewer.ID == userID
}

// Affordances lists the actions offered on the profile of userID.
func Affordances(viewer *models.Identity, userID string) []models.Affordance {
	if IsOwn(viewer, userID) {
		return []models.Affordance{models.AffordanceEdit}
	}
	return []models.Affordance{models.AffordanceConnect, models.AffordanceMessage}
}

func (s *profileService) Load(ctx context.Context, viewer *models.Identity, userID string) (*models.Profile, []models.Post, error) {
	target := userID
	if target == "" {
		if viewer == nil {
			return nil, nil, common.ErrNoIdentity
		}
		target = viewer.ID
	}

	var (
		wg       sync.WaitGroup
		identity *models.Identity
		idErr    error
		count    int
		posts    []models.Post
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		identity, idErr = s.store.GetIdentity(ctx, target)
	}()
	go func() {
		defer wg.Done()
		n, err := s.store.CountByAuthor(ctx, target)
		if err != nil {
			s.log.Warn(ctx, "post count failed", "user", target, "error", err)
			return
		}
		count = n
	}()
	go func() {
		defer wg.Done()
		list, err := s.store.ListByAuthor(ctx, target)
		if err != nil {
			s.log.Warn(ctx, "post list failed", "user", target, "error", err)
			return
		}
		posts = list
	}()
	wg.Wait()

	if idErr != nil {
		s.log.Error(ctx, "profile load failed", "user", target, "error", idErr)
		return nil, nil, idErr
	}
	if posts == nil {
		posts = []models.Post{}
	}

	return &models.Profile{Identity: *identity, PostsCount: count}, posts, nil
}

func (s *profileService) EditProfile(ctx context.Context, upd models.IdentityUpdate) error {
	return s.auth.UpdateProfile(ctx, upd)
}

// ChangeAvatar uploads the image and points the identity at it.
func (s *profileService) ChangeAvatar(ctx context.Context, filename string, body io.Reader) error {
	st := s.auth.State()
	if st.Phase != AuthAuthenticated {
		return common.ErrNoIdentity
	}

	url, err := s.avatars.UploadAvatar(ctx, st.Identity.ID, filename, body)
	if err != nil {
		s.log.Error(ctx, "avatar upload failed", "user", st.Identity.ID, "error", err)
		return err
	}

	return s.auth.UpdateProfile(ctx, models.IdentityUpdate{AvatarURL: &url})
}
