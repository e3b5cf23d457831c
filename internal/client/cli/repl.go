package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/connecthub/internal/client/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	SignIn(ctx context.Context) error
	SignUp(ctx context.Context) error
	SignOut(ctx context.Context) error
	Home(ctx context.Context) error
	Post(ctx context.Context) error
	SetOrder(ctx context.Context, order models.FeedOrder) error
	Refresh(ctx context.Context) error
	More(ctx context.Context, arg string) error
	Profile(ctx context.Context, arg string) error
	ProfileTab(ctx context.Context, tab string) error
	Edit(ctx context.Context) error
	Avatar(ctx context.Context, path string) error
}

const (
	helpAnonymous = "Available commands: signin, signup, exit"
	helpSignedIn  = "Available commands: home, post, recent, trending, refresh, more <n>, " +
		"profile [n|id], posts, about, edit, avatar <path>, signout, exit"
)

// runREPL starts a simple read–eval–print loop for the ConnectHub CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Unknown commands are reported back to the
// user. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Signed out:
//	  - signin          - sign in with email and password
//	  - signup          - create an account
//
//	Signed in:
//	  - home            - open the feed
//	  - post            - write a post
//	  - recent|trending - switch the feed tab
//	  - refresh         - reload the feed
//	  - more <n>        - show post n in full
//	  - profile [n|id]  - open a profile (own, post n's author, or by id)
//	  - posts|about     - switch the profile tab
//	  - edit            - edit own name and bio
//	  - avatar <path>   - upload own avatar
//	  - signout         - sign out
//
// Commands share the reader with their prompts. Handler errors are ignored
// here; handlers report to the user and log on their own.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("ch %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd := parts[0]
		arg := ""
		if len(parts) > 1 {
			arg = strings.Join(parts[1:], " ")
		}

		if !dispatch(ctx, a, cmd, arg) {
			return
		}
		if err != nil {
			return
		}
	}
}

// dispatch runs one command. It returns false when the REPL should stop.
func dispatch(ctx context.Context, a execIface, cmd, arg string) bool {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpSignedIn)
		} else {
			printlnFn(helpAnonymous)
		}

	case "exit", "quit":
		printlnFn("Bye!")
		return false

	case "signin", "login":
		_ = a.SignIn(ctx)

	case "signup", "register":
		_ = a.SignUp(ctx)

	default:
		if !a.isLoggedIn() {
			if isSignedInCommand(cmd) {
				printlnFn("Please sign in first.")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			return true
		}
		dispatchSignedIn(ctx, a, cmd, arg)
	}
	return true
}

func isSignedInCommand(cmd string) bool {
	switch cmd {
	case "home", "post", "recent", "trending", "refresh", "more", "profile",
		"posts", "about", "edit", "avatar", "signout", "logout":
		return true
	}
	return false
}

func dispatchSignedIn(ctx context.Context, a execIface, cmd, arg string) {
	switch cmd {
	case "home":
		_ = a.Home(ctx)

	case "post":
		_ = a.Post(ctx)

	case "recent", "trending":
		order, _ := models.ParseFeedOrder(cmd)
		_ = a.SetOrder(ctx, order)

	case "refresh":
		_ = a.Refresh(ctx)

	case "more":
		if arg == "" {
			printlnFn("Usage: more <n>")
			return
		}
		_ = a.More(ctx, arg)

	case "profile":
		_ = a.Profile(ctx, arg)

	case "posts", "about":
		_ = a.ProfileTab(ctx, cmd)

	case "edit":
		_ = a.Edit(ctx)

	case "avatar":
		if arg == "" {
			printlnFn("Usage: avatar <path>")
			return
		}
		_ = a.Avatar(ctx, arg)

	case "signout", "logout":
		_ = a.SignOut(ctx)

	default:
		printlnFn("Unknown command:", cmd)
	}
}
