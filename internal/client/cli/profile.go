package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/client/services"
	"github.com/dmitrijs2005/connecthub/internal/client/storage"
	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/google/uuid"
)

// Profile opens a profile. arg is empty for the viewer's own profile, a post
// number from the last list for that post's author, or a user id.
func (a *App) Profile(ctx context.Context, arg string) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please sign in first.")
		return common.ErrNoIdentity
	}

	userID := ""
	if arg != "" {
		if p, _, ok := a.shownPost(arg); ok {
			userID = p.AuthorID
		} else if _, err := uuid.Parse(arg); err == nil {
			userID = arg
		} else {
			fmt.Fprintln(a.out, "Usage: profile [n|user-id]")
			return nil
		}
	}

	// leaving home
	a.feed.Unmount()
	a.setView(ViewProfile)

	return a.loadProfile(ctx, userID, TabPosts)
}

func (a *App) loadProfile(ctx context.Context, userID, tab string) error {
	viewer := a.identity()

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	prof, posts, err := a.profiles.Load(callCtx, viewer, userID)
	if err != nil {
		a.mu.Lock()
		a.profile = nil
		a.shown = nil
		a.mu.Unlock()

		name := ""
		if viewer != nil {
			name = viewer.Name
		}
		fmt.Fprintln(a.out, renderHeader(ViewProfile, name))
		fmt.Fprintln(a.out, renderError("Profile not found."))
		return err
	}

	a.mu.Lock()
	a.profile = prof
	a.profileTab = tab
	a.shown = posts
	a.mu.Unlock()

	a.renderProfileView(viewer, prof, posts, tab)
	return nil
}

func (a *App) renderProfileView(viewer *models.Identity, prof *models.Profile, posts []models.Post, tab string) {
	name := ""
	if viewer != nil {
		name = viewer.Name
	}
	fmt.Fprintln(a.out, renderHeader(ViewProfile, name))
	fmt.Fprintln(a.out, renderProfile(prof, services.Affordances(viewer, prof.ID)))
	fmt.Fprintln(a.out, renderTabs(tab, TabPosts, TabAbout))
	if tab == TabAbout {
		fmt.Fprintln(a.out, renderAbout(prof))
		return
	}
	fmt.Fprintln(a.out, renderPosts(posts, a.now()))
}

// ProfileTab switches between the posts and about tabs of the open profile.
func (a *App) ProfileTab(ctx context.Context, tab string) error {
	a.mu.Lock()
	prof, view := a.profile, a.view
	posts := a.shown
	if prof != nil {
		a.profileTab = tab
	}
	a.mu.Unlock()

	if view != ViewProfile || prof == nil {
		fmt.Fprintln(a.out, "Open a profile first with 'profile'.")
		return nil
	}
	a.renderProfileView(a.identity(), prof, posts, tab)
	return nil
}

// ownProfile reports whether the open profile belongs to the viewer.
func (a *App) ownProfile() (*models.Profile, bool) {
	a.mu.Lock()
	prof, view := a.profile, a.view
	a.mu.Unlock()

	if view != ViewProfile || prof == nil || !services.IsOwn(a.identity(), prof.ID) {
		fmt.Fprintln(a.out, "You can only edit your own profile. Open it with 'profile'.")
		return nil, false
	}
	return prof, true
}

const clearBio = "-"

// Edit prompts for a new name and bio. Empty answers keep the current value;
// a bio of clearBio removes it.
func (a *App) Edit(ctx context.Context) error {
	prof, ok := a.ownProfile()
	if !ok {
		return nil
	}

	name, err := getSimpleText(a.reader, fmt.Sprintf("Full name [%s]", prof.Name), a.out)
	if err != nil {
		return err
	}
	bio, err := getMultiline(a.reader, "Bio (empty to keep, "+clearBio+" to clear)", a.out)
	if err != nil {
		return err
	}

	var upd models.IdentityUpdate
	if name = strings.TrimSpace(name); name != "" && name != prof.Name {
		upd.Name = &name
	}
	switch bio = strings.TrimSpace(bio); {
	case bio == clearBio:
		if prof.Bio != nil && *prof.Bio != "" {
			empty := ""
			upd.Bio = &empty
		}
	case bio != "":
		upd.Bio = &bio
	}
	if upd.Empty() {
		fmt.Fprintln(a.out, "Nothing to change.")
		return nil
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.profiles.EditProfile(callCtx, upd); err != nil {
		fmt.Fprintln(a.out, renderError("Could not save your profile."))
		return err
	}

	fmt.Fprintln(a.out, renderSuccess("Profile saved."))
	return a.loadProfile(ctx, prof.ID, TabAbout)
}

// Avatar uploads the image at path as the viewer's avatar.
func (a *App) Avatar(ctx context.Context, path string) error {
	if path == "" {
		fmt.Fprintln(a.out, "Usage: avatar <path>")
		return nil
	}
	prof, ok := a.ownProfile()
	if !ok {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(a.out, renderError("Cannot open "+path+"."))
		return err
	}
	defer f.Close()

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	err = a.profiles.ChangeAvatar(callCtx, filepath.Base(path), f)
	switch {
	case err == nil:
		fmt.Fprintln(a.out, renderSuccess("Avatar updated."))
		return a.loadProfile(ctx, prof.ID, TabAbout)
	case errors.Is(err, storage.ErrStorageDisabled):
		fmt.Fprintln(a.out, renderError("Avatar uploads are not configured."))
	case errors.Is(err, storage.ErrNotImage), errors.Is(err, storage.ErrEmptyAvatar):
		fmt.Fprintln(a.out, renderError("The file is not an image."))
	case errors.Is(err, storage.ErrAvatarTooLarge):
		fmt.Fprintln(a.out, renderError("The image is too large."))
	default:
		fmt.Fprintln(a.out, renderError("Could not update your avatar."))
	}
	return err
}
