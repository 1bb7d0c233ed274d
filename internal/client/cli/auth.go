package cli

import (
	"context"
	"fmt"

	"github.com/groceryapp/groceryclient/internal/cryptox"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// register prompts the user for a username and password and attempts to
// create a new account. The password byte slice is wiped before returning.
func (a *App) register(ctx context.Context) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer cryptox.Wipe(password)

	if err := a.sync.Register(ctx, userName, string(password)); err != nil {
		a.showError()
		return
	}

	fmt.Fprintln(a.out, "Success! You can sign in now.")
}

// login prompts the user for credentials and tries to authenticate. On
// success the session is persisted and the category list is loaded.
func (a *App) login(ctx context.Context) {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	password, err := getPassword(a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	defer cryptox.Wipe(password)

	if err := a.sync.Login(ctx, userName, string(password)); err != nil {
		a.showError()
		return
	}

	fmt.Fprintln(a.out, "Signed in.")
	a.categories(ctx)
}

// logout clears the stored session and resets all in-memory collections.
func (a *App) logout(ctx context.Context) {
	if err := a.sync.Logout(ctx); err != nil {
		a.showError()
		return
	}
	fmt.Fprintln(a.out, "Signed out.")
}
