package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/groceryapp/groceryclient/internal/client/models"
)

// selected returns the currently selected category, printing a hint when
// there is none.
func (a *App) selected() (models.Category, bool) {
	sel := a.sync.State().SelectedCategory
	if sel == nil {
		fmt.Fprintln(a.out, "Select a category first (see 'select')")
		return models.Category{}, false
	}
	return *sel, true
}

func (a *App) pickItem(args []string) (models.Item, bool) {
	items := a.sync.State().Items
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: provide an item number (see 'items')")
		return models.Item{}, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(items) {
		fmt.Fprintf(a.out, "No such item: %s\n", args[0])
		return models.Item{}, false
	}
	return items[n-1], true
}

func (a *App) printItems() {
	items := a.sync.State().Items
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No items yet.")
		return
	}
	for i, it := range items {
		fmt.Fprintf(a.out, "%d. %s  %.2f x%d\n", i+1, it.Title, it.Price, it.Quantity)
	}
}

func (a *App) items(ctx context.Context) {
	sel, ok := a.selected()
	if !ok {
		return
	}
	if err := a.sync.ListItems(ctx, sel.ID); err != nil {
		a.showError()
		return
	}
	a.printItems()
}

func (a *App) addItem(ctx context.Context) {
	sel, ok := a.selected()
	if !ok {
		return
	}

	title, err := getSimpleText(a.reader, "Enter item title", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	priceText, err := getSimpleText(a.reader, "Enter price", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	price, err := strconv.ParseFloat(priceText, 64)
	if err != nil {
		fmt.Fprintf(a.out, "Not a price: %s\n", priceText)
		return
	}
	quantityText, err := getSimpleText(a.reader, "Enter quantity", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	quantity, err := strconv.Atoi(quantityText)
	if err != nil {
		fmt.Fprintf(a.out, "Not a quantity: %s\n", quantityText)
		return
	}

	if err := a.sync.CreateItem(ctx, sel.ID, title, price, quantity); err != nil {
		a.showError()
		return
	}
	a.printItems()
}

func (a *App) deleteItem(ctx context.Context, args []string) {
	sel, ok := a.selected()
	if !ok {
		return
	}
	item, ok := a.pickItem(args)
	if !ok {
		return
	}
	if err := a.sync.DeleteItem(ctx, sel.ID, item.ID); err != nil {
		a.showError()
		return
	}
	a.printItems()
}
