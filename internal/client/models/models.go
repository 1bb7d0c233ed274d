// Package models defines the client-side domain types: grocery categories,
// grocery items, and the authenticated session.
package models

import "github.com/google/uuid"

// Category is a grocery category owned by the signed-in user.
// Identity is the server-assigned ID.
type Category struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ColorCode string    `json:"colorCode"`
}

// Item is a grocery item scoped to exactly one category.
type Item struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
}

// Session is the authenticated identity persisted across restarts.
// The token is opaque to the client; absence of a Session means the
// user is not signed in.
type Session struct {
	Token  string    `json:"token"`
	UserID uuid.UUID `json:"userId"`
}
