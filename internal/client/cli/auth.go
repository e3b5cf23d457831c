package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/connecthub/internal/client/backend"
	"github.com/dmitrijs2005/connecthub/internal/common"
)

// getSimpleText, getPassword and getMultiline are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getMultiline = GetMultiline

// authMessage turns a sign-in or sign-up failure into the inline form message.
func authMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrInvalidCredentials):
		return "Invalid email or password."
	case errors.Is(err, common.ErrUserAlreadyExists):
		return "An account with this email already exists."
	case errors.Is(err, common.ErrWeakPassword):
		return "The password is too weak. Choose a longer one."
	case errors.Is(err, common.ErrUnavailable):
		return "The service is unavailable. Try again later."
	}
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}

// SignIn prompts for email and password and signs in. The password byte
// slice is wiped before returning. A backend error is printed and returned.
func (a *App) SignIn(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are already signed in.")
		return nil
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	if err := a.auth.SignIn(callCtx, email, password); err != nil {
		fmt.Fprintln(a.out, renderError(authMessage(err)))
		return err
	}

	return a.afterAuth(ctx)
}

// SignUp prompts for email, password and display name and creates an
// account. When the backend requires email confirmation no session starts.
func (a *App) SignUp(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are already signed in.")
		return nil
	}

	email, err := getSimpleText(a.reader, "Email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	name, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	pending, err := a.auth.SignUp(callCtx, email, password, name)
	if err != nil {
		fmt.Fprintln(a.out, renderError(authMessage(err)))
		return err
	}
	if pending {
		fmt.Fprintln(a.out, "Check your email to confirm your account, then sign in.")
		return nil
	}

	return a.afterAuth(ctx)
}

// afterAuth waits for the identity and opens the home view.
func (a *App) afterAuth(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()
	if err := a.auth.Await(waitCtx); err != nil {
		return err
	}

	id := a.identity()
	if id == nil {
		// onAuthState already reported the failure
		return common.ErrNoIdentity
	}

	fmt.Fprintln(a.out, renderSuccess("Welcome, "+id.Name+"!"))
	return a.Home(ctx)
}

func (a *App) SignOut(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "You are not signed in.")
		return nil
	}

	callCtx, cancel := a.withTimeout(ctx)
	defer cancel()
	err := a.auth.SignOut(callCtx)
	if err != nil {
		a.log.Warn(ctx, "sign out failed", "error", err)
	}

	_ = a.auth.Await(callCtx)
	a.feed.Unmount()
	a.showAuth()
	return err
}
