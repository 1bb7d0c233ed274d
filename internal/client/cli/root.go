package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) getStatus() string {
	s := ""
	if sel := a.sync.State().SelectedCategory; sel != nil {
		s = fmt.Sprintf("(%s)", sel.Title)
	}
	return s
}

// showError prints the current user-facing error, if any.
func (a *App) showError() {
	if appErr := a.sync.State().CurrentError; appErr != nil {
		fmt.Fprintf(a.out, "%s: %s\n", appErr.Title, appErr.Message)
	}
}

func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to Grocery CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Fprintf(a.out, "grocery %s> ", a.getStatus())
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			fmt.Fprintln(a.out, "Available commands: register, login, logout, categories, addcat, delcat <n>, select <n>, items, additem, delitem <n>, clearerr, exit")

		case "register":
			a.register(ctx)
		case "login":
			a.login(ctx)
		case "logout":
			a.logout(ctx)
		case "categories":
			a.categories(ctx)
		case "addcat":
			a.addCategory(ctx)
		case "delcat":
			a.deleteCategory(ctx, args)
		case "select":
			a.selectCategory(ctx, args)
		case "items":
			a.items(ctx)
		case "additem":
			a.addItem(ctx)
		case "delitem":
			a.deleteItem(ctx, args)
		case "clearerr":
			a.sync.ClearError()
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}

}
