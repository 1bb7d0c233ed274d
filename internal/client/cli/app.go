package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/groceryapp/groceryclient/internal/client/api"
	"github.com/groceryapp/groceryclient/internal/client/config"
	"github.com/groceryapp/groceryclient/internal/client/grocery"
	"github.com/groceryapp/groceryclient/internal/client/session"
	"github.com/groceryapp/groceryclient/internal/cryptox"
	"github.com/groceryapp/groceryclient/internal/filex"
	"github.com/groceryapp/groceryclient/internal/logging"

	_ "modernc.org/sqlite"
)

// deviceSecretSize is the size of the random per-device secret the session
// sealing key is derived from.
const deviceSecretSize = 32

type App struct {
	config *config.Config
	sync   *grocery.Synchronizer
	db     *sql.DB
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()

	log := logging.NewTextLogger(os.Stderr, slog.LevelInfo)

	db, err := session.Open(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	// The sealing key is derived from a random secret living next to the
	// database, so a copied database file alone is not enough to read the
	// session.
	secret, err := filex.LoadOrCreateSecret(c.DatabasePath+".secret", deviceSecretSize)
	if err != nil {
		return nil, err
	}
	key := cryptox.DeriveKey(secret, []byte(filepath.Base(c.DatabasePath)))
	cryptox.Wipe(secret)

	store := session.NewSQLiteStore(db, session.WithSealingKey(key))

	client := api.NewClient(api.WithTimeout(c.RequestTimeout))
	routes := api.Routes{Base: c.BaseURL}

	sync := grocery.New(client, routes, store, log)

	return &App{
		config: c,
		sync:   sync,
		db:     db,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

func (a *App) Run(ctx context.Context) {
	defer a.db.Close()
	a.Root(ctx)
}
