// Package grocery contains the entity state synchronizer: the single owner
// of the in-memory grocery collections and the operations that mutate them
// through the API transport.
//
// # State ownership
//
// A Synchronizer instance holds the category list, the item list of the
// currently selected category, the loading flag, and the current user-facing
// error. It is created explicitly and passed by reference to whichever
// presentation components need it; there are no package-level singletons.
// Presentation code reads state via State() snapshots and mutates it only
// through the operations below.
//
// # Operation protocol
//
// Every operation follows the same shape: authentication-gated operations
// first consult the session store and reject with an Authentication error
// before the loading flag is ever raised; then the loading flag goes up, the
// request runs, and on every exit path the flag is released again. Successful
// payloads are applied to the collections; failures are classified, recorded
// in the current error, and returned to the caller.
//
// # Concurrency
//
// Callers may invoke operations from multiple goroutines. State is guarded by
// a mutex, and each operation is stamped with a monotonic generation; a
// response that arrives after a newer operation has started is discarded
// instead of clobbering fresher state. The loading flag is a counter
// internally, so it stays true until the last in-flight operation finishes.
package grocery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/google/uuid"

	"github.com/groceryapp/groceryclient/internal/client/api"
	"github.com/groceryapp/groceryclient/internal/client/apperr"
	"github.com/groceryapp/groceryclient/internal/client/models"
	"github.com/groceryapp/groceryclient/internal/client/session"
	"github.com/groceryapp/groceryclient/internal/logging"
)

var colorCodeRe = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Synchronizer owns the client-side grocery state and applies server
// responses to it. Construct with New; the zero value is not usable.
type Synchronizer struct {
	client *api.Client
	routes api.Routes
	store  session.Store
	log    logging.Logger

	mu         sync.Mutex
	categories []models.Category
	items      []models.Item
	selected   *models.Category
	loading    int
	current    *apperr.AppError
	gen        uint64
}

// New builds a Synchronizer on top of the given transport, routes, and
// session store.
func New(client *api.Client, routes api.Routes, store session.Store, log logging.Logger) *Synchronizer {
	return &Synchronizer{client: client, routes: routes, store: store, log: log}
}

// State is a point-in-time snapshot of the synchronizer, safe to keep.
type State struct {
	Categories       []models.Category
	Items            []models.Item
	SelectedCategory *models.Category
	IsLoading        bool
	CurrentError     *apperr.AppError
}

// State returns a snapshot of the current collections and flags.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Categories:   append([]models.Category(nil), s.categories...),
		Items:        append([]models.Item(nil), s.items...),
		IsLoading:    s.loading > 0,
		CurrentError: s.current,
	}
	if s.selected != nil {
		c := *s.selected
		st.SelectedCategory = &c
	}
	return st
}

// ClearError resets the current error. It has no other side effects.
func (s *Synchronizer) ClearError() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// begin starts an operation: clears the previous error, raises the loading
// flag, and stamps the operation with a fresh generation.
func (s *Synchronizer) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading++
	s.gen++
	s.current = nil
	return s.gen
}

// finish releases the loading flag and settles the outcome of an operation.
// On failure the error is classified, recorded (unless a newer operation has
// superseded this one), and returned. On success apply mutates the
// collections, again only when the operation is still the newest one.
func (s *Synchronizer) finish(ctx context.Context, op string, gen uint64, err error, apply func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading--

	stale := gen != s.gen

	if err != nil {
		appErr := apperr.Classify(err)
		if !stale {
			s.current = appErr
		}
		s.log.Error(ctx, "operation failed", "op", op, "kind", appErr.Kind.String(), "error", err)
		return appErr
	}

	if stale {
		s.log.Debug(ctx, "discarding stale response", "op", op)
		return nil
	}

	if apply != nil {
		apply()
	}
	return nil
}

// reject records a locally detected failure without raising the loading flag
// or contacting the transport.
func (s *Synchronizer) reject(ctx context.Context, op string, appErr *apperr.AppError) error {
	s.mu.Lock()
	s.current = appErr
	s.mu.Unlock()
	s.log.Warn(ctx, "rejected before request", "op", op, "reason", appErr.Message)
	return appErr
}

// currentUser resolves the signed-in user, rejecting the operation when the
// session store yields none. The check runs before the loading flag is
// raised, so a missing session never leaves the flag set.
func (s *Synchronizer) currentUser(ctx context.Context, op string) (uuid.UUID, error) {
	userID, err := s.store.UserID(ctx)
	if err == nil {
		return userID, nil
	}
	if errors.Is(err, session.ErrNoSession) {
		return uuid.Nil, s.reject(ctx, op, apperr.Authentication(""))
	}
	return uuid.Nil, s.reject(ctx, op, apperr.Classify(fmt.Errorf("reading session: %w", err)))
}

// Register creates a new account. The collections are untouched; a rejection
// embedded in a well-formed response surfaces as a Validation error.
func (s *Synchronizer) Register(ctx context.Context, username, password string) error {
	gen := s.begin()

	body, err := json.Marshal(api.Credentials{Username: username, Password: password})
	if err != nil {
		return s.finish(ctx, "register", gen, err, nil)
	}

	res := api.NewResource[api.RegisterResponse](s.routes.Register(), api.Post(body))
	resp, err := api.Load(ctx, s.client, res)
	if err != nil {
		return s.finish(ctx, "register", gen, err, nil)
	}

	if resp.Error {
		reason := "Registration failed."
		if resp.Reason != nil {
			reason = *resp.Reason
		}
		return s.finish(ctx, "register", gen, apperr.Validation(reason), nil)
	}

	return s.finish(ctx, "register", gen, nil, nil)
}

// Login authenticates and persists the session. Token and user id are saved
// together or not at all; a success response missing either is treated as a
// malformed server response rather than a partial session.
func (s *Synchronizer) Login(ctx context.Context, username, password string) error {
	gen := s.begin()

	body, err := json.Marshal(api.Credentials{Username: username, Password: password})
	if err != nil {
		return s.finish(ctx, "login", gen, err, nil)
	}

	res := api.NewResource[api.LoginResponse](s.routes.Login(), api.Post(body))
	resp, err := api.Load(ctx, s.client, res)
	if err != nil {
		return s.finish(ctx, "login", gen, err, nil)
	}

	if resp.Error {
		reason := "Login failed."
		if resp.Reason != nil {
			reason = *resp.Reason
		}
		return s.finish(ctx, "login", gen, apperr.Validation(reason), nil)
	}

	if resp.Token == nil || resp.UserID == nil {
		err := fmt.Errorf("login response missing token or user id: %w", api.ErrDecoding)
		return s.finish(ctx, "login", gen, err, nil)
	}

	if err := s.store.Save(ctx, *resp.Token, *resp.UserID); err != nil {
		return s.finish(ctx, "login", gen, fmt.Errorf("persisting session: %w", err), nil)
	}

	s.log.Info(ctx, "signed in", "user_id", *resp.UserID)
	return s.finish(ctx, "login", gen, nil, nil)
}

// Logout destroys the stored session and resets the collections. No network
// call is made. In-flight responses from before the logout are discarded.
func (s *Synchronizer) Logout(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return s.reject(ctx, "logout", apperr.Classify(fmt.Errorf("clearing session: %w", err)))
	}

	s.mu.Lock()
	s.gen++
	s.categories = nil
	s.items = nil
	s.selected = nil
	s.current = nil
	s.mu.Unlock()

	s.log.Info(ctx, "signed out")
	return nil
}

// ListCategories replaces the category collection wholesale with the
// server's ordered list.
func (s *Synchronizer) ListCategories(ctx context.Context) error {
	userID, err := s.currentUser(ctx, "list categories")
	if err != nil {
		return err
	}

	gen := s.begin()

	res := api.NewResource[[]api.CategoryResponse](s.routes.Categories(userID), api.Get(nil))
	resp, err := api.Load(ctx, s.client, res)
	if err != nil {
		return s.finish(ctx, "list categories", gen, err, nil)
	}

	return s.finish(ctx, "list categories", gen, nil, func() {
		categories := make([]models.Category, 0, len(resp))
		for _, dto := range resp {
			categories = append(categories, dto.Model())
		}
		s.categories = categories
	})
}

// CreateCategory posts a new category and appends the server-assigned result
// to the end of the collection.
func (s *Synchronizer) CreateCategory(ctx context.Context, title, colorCode string) error {
	userID, err := s.currentUser(ctx, "create category")
	if err != nil {
		return err
	}
	if title == "" {
		return s.reject(ctx, "create category", apperr.Validation("A category title is required."))
	}
	if !colorCodeRe.MatchString(colorCode) {
		return s.reject(ctx, "create category", apperr.Validation("The color must be a hex code like #2ecc71."))
	}

	gen := s.begin()

	body, err := json.Marshal(api.CategoryRequest{Title: title, ColorCode: colorCode})
	if err != nil {
		return s.finish(ctx, "create category", gen, err, nil)
	}

	res := api.NewResource[api.CategoryResponse](s.routes.Categories(userID), api.Post(body))
	resp, err := api.Load(ctx, s.client, res)
	if err != nil {
		return s.finish(ctx, "create category", gen, err, nil)
	}

	return s.finish(ctx, "create category", gen, nil, func() {
		s.categories = append(s.categories, resp.Model())
	})
}

// DeleteCategory removes the category whose id the server confirms as
// deleted, not the requested id blindly. Deleting the selected category also
// drops the selection and its items.
func (s *Synchronizer) DeleteCategory(ctx context.Context, categoryID uuid.UUID) error {
	userID, err := s.currentUser(ctx, "delete category")
	if err != nil {
		return err
	}

	gen := s.begin()

	res := api.NewResource[api.CategoryResponse](s.routes.Category(userID, categoryID), api.Delete())
	resp, err := api.Load(ctx, s.client, res)
	if err != nil {
		return s.finish(ctx, "delete category", gen, err, nil)
	}

	return s.finish(ctx, "delete category", gen, nil, func() {
		kept := s.categories[:0:0]
		for _, c := range s.categories {
			if c.ID != resp.ID {
				kept = append(kept, c)
			}
		}
		s.categories = kept
		if s.selected != nil && s.selected.ID == resp.ID {
			s.selected = nil
			s.items = nil
		}
	})
}

// SelectCategory marks the category as current and re-fetches its items;
// the previous item list is invalid for the new selection and is cleared
// before the fetch.
func (s *Synchronizer) SelectCategory(ctx context.Context, category models.Category) error {
	s.mu.Lock()
	c := category
	s.selected = &c
	s.items = nil
	s.mu.Unlock()

	return s.ListItems(ctx, category.ID)
}

// ListItems replaces the item collection wholesale with the server's ordered
// list for the given category.
func (s *Synchronizer) ListItems(ctx context.Context, categoryID uuid.UUID) error {
	userID, err := s.currentUser(ctx, "list items")
	if err != nil {
		return err
	}

	gen := s.begin()

	res := api.NewResource[[]api.ItemResponse](s.routes.Items(userID, categoryID), api.Get(nil))
	resp, err := api.Load(ctx, s.client, res)
	if err != nil {
		return s.finish(ctx, "list items", gen, err, nil)
	}

	return s.finish(ctx, "list items", gen, nil, func() {
		items := make([]models.Item, 0, len(resp))
		for _, dto := range resp {
			items = append(items, dto.Model())
		}
		s.items = items
	})
}

// CreateItem posts a new item in the given category and appends the
// server-assigned result to the item collection.
func (s *Synchronizer) CreateItem(ctx context.Context, categoryID uuid.UUID, title string, price float64, quantity int) error {
	userID, err := s.currentUser(ctx, "create item")
	if err != nil {
		return err
	}
	if title == "" {
		return s.reject(ctx, "create item", apperr.Validation("An item title is required."))
	}
	if price < 0 {
		return s.reject(ctx, "create item", apperr.Validation("The price cannot be negative."))
	}
	if quantity <= 0 {
		return s.reject(ctx, "create item", apperr.Validation("The quantity must be at least 1."))
	}

	gen := s.begin()

	body, err := json.Marshal(api.ItemRequest{Title: title, Price: price, Quantity: quantity})
	if err != nil {
		return s.finish(ctx, "create item", gen, err, nil)
	}

	res := api.NewResource[api.ItemResponse](s.routes.Items(userID, categoryID), api.Post(body))
	resp, err := api.Load(ctx, s.client, res)
	if err != nil {
		return s.finish(ctx, "create item", gen, err, nil)
	}

	return s.finish(ctx, "create item", gen, nil, func() {
		s.items = append(s.items, resp.Model())
	})
}

// DeleteItem removes the item whose id the server confirms as deleted,
// mirroring DeleteCategory.
func (s *Synchronizer) DeleteItem(ctx context.Context, categoryID, itemID uuid.UUID) error {
	userID, err := s.currentUser(ctx, "delete item")
	if err != nil {
		return err
	}

	gen := s.begin()

	res := api.NewResource[api.ItemResponse](s.routes.Item(userID, categoryID, itemID), api.Delete())
	resp, err := api.Load(ctx, s.client, res)
	if err != nil {
		return s.finish(ctx, "delete item", gen, err, nil)
	}

	return s.finish(ctx, "delete item", gen, nil, func() {
		kept := s.items[:0:0]
		for _, it := range s.items {
			if it.ID != resp.ID {
				kept = append(kept, it)
			}
		}
		s.items = kept
	})
}
