package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/connecthub/internal/client/models"
	"github.com/dmitrijs2005/connecthub/internal/common"
	"github.com/dmitrijs2005/connecthub/internal/timex"
)

// unknownCounter is shown for counters the backend does not model.
const unknownCounter = "–"

// preview cuts content to common.PreviewLength characters.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= common.PreviewLength {
		return content
	}
	return string(runes[:common.PreviewLength]) + "..."
}

func renderHeader(view, userName string) string {
	left := titleStyle.Render("ConnectHub") + " " + mutedStyle.Render("/ "+view)
	if userName == "" {
		return left
	}
	return left + "  " + mutedStyle.Render("signed in as ") + userName
}

func renderTabs(active string, tabs ...string) string {
	parts := make([]string, len(tabs))
	for i, t := range tabs {
		if t == active {
			parts[i] = tabActiveStyle.Render(t)
		} else {
			parts[i] = tabInactiveStyle.Render(t)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderPostCard renders post number n. full disables truncation.
func renderPostCard(n int, p models.Post, now time.Time, full bool) string {
	content := p.Content
	if !full {
		content = preview(content)
	}

	head := fmt.Sprintf("%s %s %s",
		avatarStyle.Render(models.Initial(p.AuthorName)),
		lipgloss.NewStyle().Bold(true).Render(p.AuthorName),
		mutedStyle.Render(fmt.Sprintf("· %s · %s", timex.Ago(p.CreatedAt, now), timex.ShortDate(p.CreatedAt))),
	)

	body := lipgloss.JoinVertical(lipgloss.Left, head, "", content)
	return mutedStyle.Render(fmt.Sprintf("#%d", n)) + "\n" + cardStyle.Render(body)
}

func renderPosts(posts []models.Post, now time.Time) string {
	if len(posts) == 0 {
		return mutedStyle.Render("No posts yet.")
	}
	cards := make([]string, len(posts))
	for i, p := range posts {
		cards[i] = renderPostCard(i+1, p, now, false)
	}
	return strings.Join(cards, "\n")
}

func renderCounter(n *int) string {
	if n == nil {
		return unknownCounter
	}
	return fmt.Sprint(*n)
}

func renderAffordances(affs []models.Affordance) string {
	labels := make([]string, len(affs))
	for i, a := range affs {
		switch a {
		case models.AffordanceEdit:
			labels[i] = affordanceStyle.Render("Edit profile")
		case models.AffordanceConnect:
			labels[i] = affordanceStyle.Render("Connect")
		case models.AffordanceMessage:
			labels[i] = affordanceStyle.Render("Message")
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labels...)
}

// renderProfile renders the profile header: identity, stats and actions.
func renderProfile(p *models.Profile, affs []models.Affordance) string {
	bio := mutedStyle.Render("No bio yet.")
	if p.Bio != nil && strings.TrimSpace(*p.Bio) != "" {
		bio = *p.Bio
	}

	stats := fmt.Sprintf("%s posts   %s connections   %s following",
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprint(p.PostsCount)),
		lipgloss.NewStyle().Bold(true).Render(renderCounter(p.ConnectionsCount)),
		lipgloss.NewStyle().Bold(true).Render(renderCounter(p.FollowingCount)),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		avatarStyle.Render(models.Initial(p.Name))+" "+titleStyle.Render(p.Name),
		bio,
		mutedStyle.Render(p.Email),
		mutedStyle.Render("Joined "+timex.MonthYear(p.CreatedAt)),
		stats,
		renderAffordances(affs),
	)
}

func renderAbout(p *models.Profile) string {
	bio := "No bio yet."
	if p.Bio != nil && strings.TrimSpace(*p.Bio) != "" {
		bio = *p.Bio
	}
	avatar := "none"
	if p.AvatarURL != nil {
		avatar = *p.AvatarURL
	}
	return strings.Join([]string{
		"Name:   " + p.Name,
		"Email:  " + p.Email,
		"Bio:    " + bio,
		"Avatar: " + avatar,
		"Joined: " + timex.MonthYear(p.CreatedAt),
	}, "\n")
}

func renderComposerCount(n int) string {
	s := fmt.Sprintf("%d/%d", n, common.MaxPostLength)
	if n > common.MaxPostLength {
		return errorStyle.Render(s)
	}
	return mutedStyle.Render(s)
}

func renderError(msg string) string {
	return errorStyle.Render(msg)
}

func renderSuccess(msg string) string {
	return successStyle.Render(msg)
}
