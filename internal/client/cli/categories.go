package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/groceryapp/groceryclient/internal/client/models"
)

// pickCategory resolves a 1-based list position from args against the current
// category list.
func (a *App) pickCategory(args []string) (models.Category, bool) {
	cats := a.sync.State().Categories
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: provide a category number (see 'categories')")
		return models.Category{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(cats) {
		fmt.Fprintf(a.out, "No such category: %s\n", args[0])
		return models.Category{}, false
	}
	return cats[n-1], true
}

func (a *App) printCategories() {
	st := a.sync.State()
	if len(st.Categories) == 0 {
		fmt.Fprintln(a.out, "No categories yet.")
		return
	}
	for i, c := range st.Categories {
		marker := " "
		if st.SelectedCategory != nil && st.SelectedCategory.ID == c.ID {
			marker = "*"
		}
		fmt.Fprintf(a.out, "%s %d. %s %s\n", marker, i+1, c.Title, c.ColorCode)
	}
}

func (a *App) categories(ctx context.Context) {
	if err := a.sync.ListCategories(ctx); err != nil {
		a.showError()
		return
	}
	a.printCategories()
}

func (a *App) addCategory(ctx context.Context) {
	title, err := getSimpleText(a.reader, "Enter category title", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	colorCode, err := getSimpleText(a.reader, "Enter color code (#RRGGBB)", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	if err := a.sync.CreateCategory(ctx, title, colorCode); err != nil {
		a.showError()
		return
	}
	a.printCategories()
}

func (a *App) deleteCategory(ctx context.Context, args []string) {
	cat, ok := a.pickCategory(args)
	if !ok {
		return
	}
	if err := a.sync.DeleteCategory(ctx, cat.ID); err != nil {
		a.showError()
		return
	}
	a.printCategories()
}

func (a *App) selectCategory(ctx context.Context, args []string) {
	cat, ok := a.pickCategory(args)
	if !ok {
		return
	}
	if err := a.sync.SelectCategory(ctx, cat); err != nil {
		a.showError()
		return
	}
	a.printItems()
}
