package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/client/services"
	"github.com/dmitrijs2005/connecthub/internal/common"
)

// Home opens the feed view, mounting the feed if needed.
func (a *App) Home(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please sign in first.")
		return common.ErrNoIdentity
	}

	a.mu.Lock()
	a.view = ViewHome
	a.profile = nil
	a.mu.Unlock()

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.feed.Mount(callCtx); err != nil {
		fmt.Fprintln(a.out, renderError("Could not load the feed. Type 'home' to try again."))
	}

	a.renderHome()
	return nil
}

func (a *App) renderHome() {
	posts := a.feed.Posts()

	a.mu.Lock()
	a.shown = posts
	a.mu.Unlock()

	name := ""
	if id := a.identity(); id != nil {
		name = id.Name
	}

	fmt.Fprintln(a.out, renderHeader(ViewHome, name))
	fmt.Fprintln(a.out, mutedStyle.Render("What's on your mind? Type 'post' to share. ")+renderComposerCount(a.composer.Length()))
	fmt.Fprintln(a.out, renderTabs(string(a.feed.Order()), string(models.FeedOrderRecent), string(models.FeedOrderTrending)))
	if a.feed.Loading() {
		fmt.Fprintln(a.out, mutedStyle.Render("Loading..."))
		return
	}
	fmt.Fprintln(a.out, renderPosts(posts, a.now()))
}

func (a *App) requireHome() bool {
	if a.currentView() != ViewHome {
		fmt.Fprintln(a.out, "Open the feed first with 'home'.")
		return false
	}
	return true
}

// Post reads a post body and submits it. Client-side validation failures are
// shown without contacting the backend.
func (a *App) Post(ctx context.Context) error {
	if !a.requireHome() {
		return nil
	}

	prompt := "What's on your mind?"
	kept := a.composer.Draft()
	if strings.TrimSpace(kept) != "" {
		prompt += fmt.Sprintf(" Leave it empty to send your kept draft (%d characters).", a.composer.Length())
	}
	text, err := getMultiline(a.reader, prompt, a.out)
	if err != nil {
		return err
	}
	if strings.TrimSpace(text) != "" || strings.TrimSpace(kept) == "" {
		a.composer.SetDraft(text)
	}
	fmt.Fprintln(a.out, renderComposerCount(a.composer.Length()))

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	err = a.composer.Submit(callCtx, a.identity())
	switch {
	case err == nil:
		fmt.Fprintln(a.out, renderSuccess("Posted."))
		a.renderHome()
	case errors.Is(err, common.ErrEmptyPost):
		fmt.Fprintln(a.out, renderError("Nothing to post."))
	case errors.Is(err, common.ErrPostTooLong):
		fmt.Fprintln(a.out, renderError(fmt.Sprintf("Posts are limited to %d characters.", common.MaxPostLength)))
	default:
		fmt.Fprintln(a.out, renderError("Could not create the post. Your draft was kept."))
	}
	return err
}

// SetOrder switches the feed tab.
func (a *App) SetOrder(ctx context.Context, order models.FeedOrder) error {
	if !a.requireHome() {
		return nil
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.feed.SetOrder(callCtx, order); err != nil {
		fmt.Fprintln(a.out, renderError("Could not load the feed. Type 'home' to try again."))
	}
	a.renderHome()
	return nil
}

// Refresh re-runs the feed query.
func (a *App) Refresh(ctx context.Context) error {
	if !a.requireHome() {
		return nil
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	err := a.feed.Refresh(callCtx)
	if err != nil && !errors.Is(err, services.ErrFeedNotMounted) {
		fmt.Fprintln(a.out, renderError("Could not refresh the feed."))
	}
	a.renderHome()
	return err
}

// shownPost resolves a 1-based post number from the last rendered list.
func (a *App) shownPost(arg string) (models.Post, int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return models.Post{}, 0, false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if n < 1 || n > len(a.shown) {
		return models.Post{}, 0, false
	}
	return a.shown[n-1], n, true
}

// More prints post n without truncation.
func (a *App) More(ctx context.Context, arg string) error {
	p, n, ok := a.shownPost(arg)
	if !ok {
		fmt.Fprintln(a.out, "Usage: more <n>, where n is a post number from the list.")
		return nil
	}
	fmt.Fprintln(a.out, renderPostCard(n, p, a.now(), true))
	return nil
}
