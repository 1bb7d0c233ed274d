package api

import (
	"net/url"

	"github.com/google/uuid"
)

// Routes builds endpoint URLs from a configurable base path,
// e.g. "http://127.0.0.1:8000/api".
type Routes struct {
	Base string
}

func (r Routes) Register() string {
	return r.Base + "/register"
}

func (r Routes) Login() string {
	return r.Base + "/login"
}

func (r Routes) Categories(userID uuid.UUID) string {
	return r.Base + "/users/" + url.PathEscape(userID.String()) + "/categories"
}

func (r Routes) Category(userID, categoryID uuid.UUID) string {
	return r.Categories(userID) + "/" + url.PathEscape(categoryID.String())
}

func (r Routes) Items(userID, categoryID uuid.UUID) string {
	return r.Category(userID, categoryID) + "/items"
}

func (r Routes) Item(userID, categoryID, itemID uuid.UUID) string {
	return r.Items(userID, categoryID) + "/" + url.PathEscape(itemID.String())
}
