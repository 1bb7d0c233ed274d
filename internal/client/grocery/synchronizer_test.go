package grocery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/groceryapp/groceryclient/internal/client/api"
	"github.com/groceryapp/groceryclient/internal/client/apperr"
	"github.com/groceryapp/groceryclient/internal/client/models"
	"github.com/groceryapp/groceryclient/internal/client/session"
	"github.com/groceryapp/groceryclient/internal/logging"
)

// ---- helpers ----

var testUserID = uuid.MustParse("11111111-1111-1111-1111-111111111111")

// fakeStore implements session.Store in memory for synchronizer tests.
type fakeStore struct {
	mu     sync.Mutex
	token  string
	userID uuid.UUID
	has    bool

	saveErr  error
	clearErr error
	saves    int
}

func (f *fakeStore) Token(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.has {
		return "", session.ErrNoSession
	}
	return f.token, nil
}

func (f *fakeStore) UserID(ctx context.Context) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.has {
		return uuid.Nil, session.ErrNoSession
	}
	return f.userID, nil
}

func (f *fakeStore) Save(ctx context.Context, token string, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.token, f.userID, f.has = token, userID, true
	f.saves++
	return nil
}

func (f *fakeStore) Clear(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.token, f.userID, f.has = "", uuid.Nil, false
	return nil
}

func signedInStore() *fakeStore {
	return &fakeStore{token: "tok", userID: testUserID, has: true}
}

// roundTripFunc lets tests stub the transport at the HTTP layer.
type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testLogger() logging.Logger {
	return logging.NewTextLogger(io.Discard, slog.LevelDebug)
}

func newSync(baseURL string, store session.Store, opts ...api.Option) *Synchronizer {
	return New(api.NewClient(opts...), api.Routes{Base: baseURL}, store, testLogger())
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// ---- authentication ----

func TestLogin_PersistsSessionAtomically(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/login", r.URL.Path)
		var creds api.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		require.Equal(t, "bob", creds.Username)
		require.Equal(t, "secret1", creds.Password)

		tok := "tok123"
		id := testUserID
		writeJSON(t, w, api.LoginResponse{Error: false, Token: &tok, UserID: &id})
	}))
	defer srv.Close()

	store := &fakeStore{}
	s := newSync(srv.URL, store)

	require.NoError(t, s.Login(context.Background(), "bob", "secret1"))

	tok, err := store.Token(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok123", tok)

	id, err := store.UserID(context.Background())
	require.NoError(t, err)
	require.Equal(t, testUserID, id)

	require.Nil(t, s.State().CurrentError)
	require.Equal(t, 1, store.saves, "token and user id are written together, once")
}

func TestLogin_BusinessRejectionIsValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "bad credentials"
		writeJSON(t, w, api.LoginResponse{Error: true, Reason: &reason})
	}))
	defer srv.Close()

	store := &fakeStore{}
	s := newSync(srv.URL, store)

	err := s.Login(context.Background(), "bob", "wrong")
	require.Error(t, err)

	st := s.State()
	require.NotNil(t, st.CurrentError)
	require.Equal(t, apperr.KindValidation, st.CurrentError.Kind)
	require.Equal(t, "bad credentials", st.CurrentError.Message)
	require.Zero(t, store.saves, "session store must stay untouched")
}

func TestLogin_SuccessWithMissingFieldsIsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := "tok123"
		writeJSON(t, w, api.LoginResponse{Error: false, Token: &tok}) // no userId
	}))
	defer srv.Close()

	store := &fakeStore{}
	s := newSync(srv.URL, store)

	err := s.Login(context.Background(), "bob", "secret1")
	require.Error(t, err)

	st := s.State()
	require.NotNil(t, st.CurrentError)
	require.Equal(t, apperr.KindServer, st.CurrentError.Kind)
	require.Zero(t, store.saves)
}

func TestRegister_BusinessRejectionSurfacesReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reason := "username already taken"
		writeJSON(t, w, api.RegisterResponse{Error: true, Reason: &reason})
	}))
	defer srv.Close()

	s := newSync(srv.URL, &fakeStore{})

	err := s.Register(context.Background(), "bob", "secret1")
	require.Error(t, err)

	st := s.State()
	require.Equal(t, apperr.KindValidation, st.CurrentError.Kind)
	require.Equal(t, "username already taken", st.CurrentError.Message)
	require.Empty(t, st.Categories)
	require.Empty(t, st.Items)
}

func TestRegister_SuccessClearsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, api.RegisterResponse{Error: false})
	}))
	defer srv.Close()

	s := newSync(srv.URL, &fakeStore{})
	require.NoError(t, s.Register(context.Background(), "bob", "secret1"))
	require.Nil(t, s.State().CurrentError)
}

func TestLogout_ClearsSessionAndState(t *testing.T) {
	catID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []api.CategoryResponse{{ID: catID, Title: "Fruit", ColorCode: "#ff0000"}})
	}))
	defer srv.Close()

	store := signedInStore()
	s := newSync(srv.URL, store)
	require.NoError(t, s.ListCategories(context.Background()))
	require.Len(t, s.State().Categories, 1)

	require.NoError(t, s.Logout(context.Background()))

	_, err := store.Token(context.Background())
	require.ErrorIs(t, err, session.ErrNoSession)

	st := s.State()
	require.Empty(t, st.Categories)
	require.Empty(t, st.Items)
	require.Nil(t, st.SelectedCategory)
	require.Nil(t, st.CurrentError)
}

// ---- authentication gate ----

func TestAuthGate_NoSessionMeansNoTransportCall(t *testing.T) {
	calls := 0
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("must not be reached")
	})}

	s := newSync("http://127.0.0.1:0/api", &fakeStore{}, api.WithHTTPClient(hc))
	ctx := context.Background()
	catID := uuid.New()

	gated := []func() error{
		func() error { return s.ListCategories(ctx) },
		func() error { return s.CreateCategory(ctx, "Fruit", "#ff0000") },
		func() error { return s.DeleteCategory(ctx, catID) },
		func() error { return s.ListItems(ctx, catID) },
		func() error { return s.CreateItem(ctx, catID, "Milk", 1.5, 2) },
		func() error { return s.DeleteItem(ctx, catID, uuid.New()) },
	}

	for _, op := range gated {
		s.ClearError()
		require.Error(t, op())
		st := s.State()
		require.NotNil(t, st.CurrentError)
		require.Equal(t, apperr.KindAuthentication, st.CurrentError.Kind)
		require.False(t, st.IsLoading, "gate must fire before the loading flag")
	}
	require.Zero(t, calls)
}

// ---- categories ----

func TestListCategories_ReplacesWholesale(t *testing.T) {
	first := []api.CategoryResponse{
		{ID: uuid.New(), Title: "Fruit", ColorCode: "#ff0000"},
		{ID: uuid.New(), Title: "Dairy", ColorCode: "#00ff00"},
	}
	second := []api.CategoryResponse{
		{ID: uuid.New(), Title: "Bakery", ColorCode: "#0000ff"},
	}

	responses := [][]api.CategoryResponse{first, second}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, responses[0])
		if len(responses) > 1 {
			responses = responses[1:]
		}
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	require.NoError(t, s.ListCategories(ctx))
	require.Len(t, s.State().Categories, 2)

	require.NoError(t, s.ListCategories(ctx))
	st := s.State()
	require.Len(t, st.Categories, 1, "list replaces, it does not merge")
	require.Equal(t, "Bakery", st.Categories[0].Title)
}

func TestCreateCategory_AppendsInOrderWithUniqueIDs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req api.CategoryRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		writeJSON(t, w, api.CategoryResponse{ID: uuid.New(), Title: req.Title, ColorCode: req.ColorCode})
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	titles := []string{"Fruit", "Dairy", "Bakery"}
	for _, title := range titles {
		require.NoError(t, s.CreateCategory(ctx, title, "#2ecc71"))
	}

	st := s.State()
	require.Len(t, st.Categories, len(titles))
	seen := map[uuid.UUID]bool{}
	for i, c := range st.Categories {
		require.Equal(t, titles[i], c.Title, "append order matches call order")
		require.False(t, seen[c.ID], "ids are unique")
		seen[c.ID] = true
	}
}

func TestCreateCategory_LocalValidationSkipsNetwork(t *testing.T) {
	calls := 0
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("must not be reached")
	})}
	s := newSync("http://127.0.0.1:0/api", signedInStore(), api.WithHTTPClient(hc))
	ctx := context.Background()

	require.Error(t, s.CreateCategory(ctx, "", "#ff0000"))
	require.Equal(t, apperr.KindValidation, s.State().CurrentError.Kind)

	require.Error(t, s.CreateCategory(ctx, "Fruit", "red"))
	require.Equal(t, apperr.KindValidation, s.State().CurrentError.Kind)

	require.Zero(t, calls)
}

func TestDeleteCategory_RemovesByServerConfirmedID(t *testing.T) {
	keep := api.CategoryResponse{ID: uuid.New(), Title: "Dairy", ColorCode: "#00ff00"}
	doomed := api.CategoryResponse{ID: uuid.New(), Title: "Fruit", ColorCode: "#ff0000"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, []api.CategoryResponse{keep, doomed})
		case http.MethodDelete:
			// the echo is authoritative, regardless of the requested path
			writeJSON(t, w, doomed)
		}
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	require.NoError(t, s.ListCategories(ctx))
	require.NoError(t, s.DeleteCategory(ctx, doomed.ID))

	st := s.State()
	require.Len(t, st.Categories, 1)
	require.Equal(t, keep.ID, st.Categories[0].ID)

	// a fresh list never shows the deleted id again
	keepOnly := []api.CategoryResponse{keep}
	srv.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, keepOnly)
	})
	require.NoError(t, s.ListCategories(ctx))
	for _, c := range s.State().Categories {
		require.NotEqual(t, doomed.ID, c.ID)
	}
}

func TestDeleteCategory_DropsSelectionWhenSelectedDies(t *testing.T) {
	doomed := api.CategoryResponse{ID: uuid.New(), Title: "Fruit", ColorCode: "#ff0000"}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, []api.ItemResponse{{ID: uuid.New(), Title: "Apple", Price: 0.5, Quantity: 3}})
		case http.MethodDelete:
			writeJSON(t, w, doomed)
		}
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	require.NoError(t, s.SelectCategory(ctx, doomed.Model()))
	require.NotNil(t, s.State().SelectedCategory)
	require.Len(t, s.State().Items, 1)

	require.NoError(t, s.DeleteCategory(ctx, doomed.ID))

	st := s.State()
	require.Nil(t, st.SelectedCategory)
	require.Empty(t, st.Items)
}

// ---- items ----

func TestCreateItem_AppendsAndKeepsEarlierEntries(t *testing.T) {
	catID := uuid.New()
	existing := api.ItemResponse{ID: uuid.New(), Title: "Bread", Price: 2.2, Quantity: 1}
	created := api.ItemResponse{ID: uuid.New(), Title: "Milk", Price: 1.5, Quantity: 2}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, []api.ItemResponse{existing})
		case http.MethodPost:
			writeJSON(t, w, created)
		}
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	require.NoError(t, s.ListItems(ctx, catID))
	require.NoError(t, s.CreateItem(ctx, catID, "Milk", 1.5, 2))

	st := s.State()
	require.Len(t, st.Items, 2)
	require.Equal(t, existing.Model(), st.Items[0], "earlier entries untouched")
	require.Equal(t, created.Model(), st.Items[1], "new entry appended at the end")
}

func TestCreateItem_RejectsNonPositiveQuantity(t *testing.T) {
	calls := 0
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		calls++
		return nil, errors.New("must not be reached")
	})}
	s := newSync("http://127.0.0.1:0/api", signedInStore(), api.WithHTTPClient(hc))

	err := s.CreateItem(context.Background(), uuid.New(), "Milk", 1.5, 0)
	require.Error(t, err)
	require.Equal(t, apperr.KindValidation, s.State().CurrentError.Kind)
	require.Zero(t, calls)
}

func TestDeleteItem_RemovesByServerConfirmedID(t *testing.T) {
	catID := uuid.New()
	keep := api.ItemResponse{ID: uuid.New(), Title: "Bread", Price: 2.2, Quantity: 1}
	doomed := api.ItemResponse{ID: uuid.New(), Title: "Milk", Price: 1.5, Quantity: 2}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(t, w, []api.ItemResponse{keep, doomed})
		case http.MethodDelete:
			writeJSON(t, w, doomed)
		}
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	require.NoError(t, s.ListItems(ctx, catID))
	require.NoError(t, s.DeleteItem(ctx, catID, doomed.ID))

	st := s.State()
	require.Len(t, st.Items, 1)
	require.Equal(t, keep.ID, st.Items[0].ID)
}

func TestSelectCategory_InvalidatesItemsBeforeFetch(t *testing.T) {
	fruit := models.Category{ID: uuid.New(), Title: "Fruit", ColorCode: "#ff0000"}
	dairy := models.Category{ID: uuid.New(), Title: "Dairy", ColorCode: "#00ff00"}

	itemsByCategory := map[uuid.UUID][]api.ItemResponse{
		fruit.ID: {{ID: uuid.New(), Title: "Apple", Price: 0.5, Quantity: 3}},
		dairy.ID: {{ID: uuid.New(), Title: "Milk", Price: 1.5, Quantity: 2}},
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for id, items := range itemsByCategory {
			if r.URL.Path == "/users/"+testUserID.String()+"/categories/"+id.String()+"/items" {
				writeJSON(t, w, items)
				return
			}
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	require.NoError(t, s.SelectCategory(ctx, fruit))
	st := s.State()
	require.Equal(t, fruit.ID, st.SelectedCategory.ID)
	require.Equal(t, "Apple", st.Items[0].Title)

	require.NoError(t, s.SelectCategory(ctx, dairy))
	st = s.State()
	require.Equal(t, dairy.ID, st.SelectedCategory.ID)
	require.Len(t, st.Items, 1)
	require.Equal(t, "Milk", st.Items[0].Title)
}

// ---- loading flag ----

func TestLoadingFlag_FalseBeforeAndAfterEveryOutcome(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, []api.CategoryResponse{})
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	require.False(t, s.State().IsLoading)
	require.NoError(t, s.ListCategories(ctx))
	require.False(t, s.State().IsLoading)

	// failing transport: the flag must still be released
	hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		return nil, errors.New("wire cut")
	})}
	failing := newSync("http://127.0.0.1:0/api", signedInStore(), api.WithHTTPClient(hc))

	require.False(t, failing.State().IsLoading)
	require.Error(t, failing.ListCategories(ctx))
	require.False(t, failing.State().IsLoading)
	require.Error(t, failing.Login(ctx, "bob", "secret1"))
	require.False(t, failing.State().IsLoading)
}

func TestLoadingFlag_TrueWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(t, w, []api.CategoryResponse{})
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())

	done := make(chan error, 1)
	go func() { done <- s.ListCategories(context.Background()) }()

	<-entered
	require.True(t, s.State().IsLoading)
	close(release)
	require.NoError(t, <-done)
	require.False(t, s.State().IsLoading)
}

// ---- error lifecycle & staleness ----

func TestListCategories_MalformedBytesLeavePriorStateIntact(t *testing.T) {
	good := api.CategoryResponse{ID: uuid.New(), Title: "Fruit", ColorCode: "#ff0000"}
	malformed := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if malformed {
			_, _ = w.Write([]byte(`{{{`))
			return
		}
		writeJSON(t, w, []api.CategoryResponse{good})
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	require.NoError(t, s.ListCategories(ctx))
	require.Len(t, s.State().Categories, 1)

	malformed = true
	require.Error(t, s.ListCategories(ctx))

	st := s.State()
	require.Equal(t, apperr.KindServer, st.CurrentError.Kind)
	require.Len(t, st.Categories, 1, "collections keep their prior value")
	require.Equal(t, good.ID, st.Categories[0].ID)
}

func TestErrorLifecycle_NextOperationClearsError(t *testing.T) {
	fail := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail {
			_, _ = w.Write([]byte(`broken`))
			return
		}
		writeJSON(t, w, []api.CategoryResponse{})
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	ctx := context.Background()

	require.Error(t, s.ListCategories(ctx))
	require.NotNil(t, s.State().CurrentError)

	fail = false
	require.NoError(t, s.ListCategories(ctx))
	require.Nil(t, s.State().CurrentError)
}

func TestClearError_OnlyNullsTheError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`broken`))
	}))
	defer srv.Close()

	s := newSync(srv.URL, signedInStore())
	require.Error(t, s.ListCategories(context.Background()))
	require.NotNil(t, s.State().CurrentError)

	s.ClearError()
	require.Nil(t, s.State().CurrentError)
}

func TestStaleResponse_DoesNotClobberNewerState(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		writeJSON(t, w, []api.CategoryResponse{{ID: uuid.New(), Title: "Stale", ColorCode: "#aaaaaa"}})
	}))
	defer srv.Close()

	store := signedInStore()
	s := newSync(srv.URL, store)

	done := make(chan error, 1)
	go func() { done <- s.ListCategories(context.Background()) }()

	<-entered
	require.NoError(t, s.Logout(context.Background()))
	close(release)
	require.NoError(t, <-done)

	st := s.State()
	require.Empty(t, st.Categories, "a response from before the logout must be discarded")
}
