package api

import (
	"github.com/google/uuid"

	"github.com/groceryapp/groceryclient/internal/client/models"
)

// Credentials is the request body for /register and /login.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse reports the outcome of an account registration.
// error:true with a reason is a business rejection carried in a
// well-formed payload, not a transport failure.
type RegisterResponse struct {
	Error  bool    `json:"error"`
	Reason *string `json:"reason,omitempty"`
}

// LoginResponse reports the outcome of a login attempt. On success
// (error:false) the server includes both the token and the user id;
// either missing is treated by the caller as a malformed response.
type LoginResponse struct {
	Error  bool       `json:"error"`
	Reason *string    `json:"reason,omitempty"`
	Token  *string    `json:"token,omitempty"`
	UserID *uuid.UUID `json:"userId,omitempty"`
}

// CategoryRequest is the request body for creating a category.
type CategoryRequest struct {
	Title     string `json:"title"`
	ColorCode string `json:"colorCode"`
}

// CategoryResponse is a category as returned by the server.
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	ColorCode string    `json:"colorCode"`
}

// Model converts the DTO into the domain type.
func (d CategoryResponse) Model() models.Category {
	return models.Category{ID: d.ID, Title: d.Title, ColorCode: d.ColorCode}
}

// ItemRequest is the request body for creating an item.
type ItemRequest struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ItemResponse is an item as returned by the server.
type ItemResponse struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Price    float64   `json:"price"`
	Quantity int       `json:"quantity"`
}

// Model converts the DTO into the domain type.
func (d ItemResponse) Model() models.Item {
	return models.Item{ID: d.ID, Title: d.Title, Price: d.Price, Quantity: d.Quantity}
}
