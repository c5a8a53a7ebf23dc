package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallowedlibrary/shelf/internal/catalog"
	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/views"
)

type fakeCatalog struct {
	calls   int
	books   map[string]entities.Book
	library []entities.FavoriteEntry
	removed []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{books: map[string]entities.Book{
		"v1": {ID: "v1", Title: "Dune", Authors: []string{"Frank Herbert"}, ISBN13: "111"},
		"v2": {ID: "v2", Title: "Emma", Authors: []string{"Jane Austen"}, ISBN13: "222"},
		"v3": {ID: "v3", Title: "Ubik", ISBN13: "333"},
	}}
}

func (f *fakeCatalog) SearchBooks(ctx context.Context, query string, opts catalog.SearchOptions) ([]entities.Book, error) {
	f.calls++
	return []entities.Book{f.books["v1"], f.books["v2"]}, nil
}

func (f *fakeCatalog) GetBook(ctx context.Context, id string) (*entities.Book, error) {
	f.calls++
	b, ok := f.books[id]
	if !ok {
		return nil, catalog.ErrNotFound
	}
	return &b, nil
}

func (f *fakeCatalog) GetBookByISBN(ctx context.Context, isbn string) (*entities.Book, error) {
	f.calls++
	for _, b := range f.books {
		if b.ISBN13 == isbn {
			return &b, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (f *fakeCatalog) Signup(ctx context.Context, req entities.SignupRequest) (*entities.User, error) {
	f.calls++
	return &entities.User{Username: req.Username}, nil
}

func (f *fakeCatalog) Login(ctx context.Context, req entities.LoginRequest) (*entities.LoginResponse, error) {
	f.calls++
	if req.Password != "secret" {
		return nil, &catalog.APIError{Status: 401, Message: "Credenciales inválidas"}
	}
	return &entities.LoginResponse{
		AccessToken: "tok",
		User:        entities.User{ID: 1, Username: req.Identifier, Name: "Ana Reader"},
	}, nil
}

func (f *fakeCatalog) Profile(ctx context.Context, token string) (*entities.User, error) {
	f.calls++
	if token != "tok" {
		return nil, catalog.ErrUnauthorized
	}
	return &entities.User{ID: 1, Username: "ana", Name: "Ana Reader"}, nil
}

func (f *fakeCatalog) ListFavorites(ctx context.Context, token string) ([]entities.FavoriteEntry, error) {
	f.calls++
	return f.library, nil
}

func (f *fakeCatalog) AddFavorite(ctx context.Context, token string, entry entities.FavoriteEntry) error {
	f.calls++
	f.library = append(f.library, entry)
	return nil
}

func (f *fakeCatalog) RemoveFavorite(ctx context.Context, token, volumeID string) error {
	f.calls++
	f.removed = append(f.removed, volumeID)
	return nil
}

// env shares one database and catalog across commands like separate
// invocations of the binary would.
type env struct {
	dbPath  string
	catalog *fakeCatalog
	out     *bytes.Buffer
}

func newEnv(t *testing.T) *env {
	return &env{
		dbPath:  filepath.Join(t.TempDir(), "shelf.db"),
		catalog: newFakeCatalog(),
		out:     &bytes.Buffer{},
	}
}

func (e *env) base() base {
	return base{DatabasePath: e.dbPath, Catalog: e.catalog, Out: e.out}
}

func (e *env) login(t *testing.T) {
	t.Helper()
	cmd := &LoginCommand{base: e.base(), Identifier: "ana", Password: "secret"}
	require.NoError(t, cmd.Run())
}

func TestLoginProfileLogout(t *testing.T) {
	e := newEnv(t)

	bad := &LoginCommand{base: e.base(), Identifier: "ana", Password: "wrong"}
	err := bad.Run()
	require.Error(t, err)
	assert.Equal(t, "Error: Credenciales inválidas", err.Error())

	e.login(t)
	assert.Contains(t, e.out.String(), "Logged in as Ana Reader")

	e.out.Reset()
	require.NoError(t, (&ProfileCommand{base: e.base()}).Run())
	assert.Contains(t, e.out.String(), "Username: ana")
	assert.Contains(t, e.out.String(), entities.DefaultAvatarURL)

	require.NoError(t, (&LogoutCommand{base: e.base()}).Run())

	err = (&ProfileCommand{base: e.base()}).Run()
	require.Error(t, err)
	assert.Equal(t, views.MsgNoUser, err.Error())
}

func TestSignupCommand(t *testing.T) {
	e := newEnv(t)

	cmd := &SignupCommand{base: e.base(), Form: views.SignupForm{Username: "ana", Password: "a", PasswordConf: "b"}}
	err := cmd.Run()
	require.Error(t, err)
	assert.Equal(t, views.MsgPasswordsDiffer, err.Error())
	assert.Zero(t, e.catalog.calls)

	cmd.Form.PasswordConf = "a"
	require.NoError(t, cmd.Run())
	assert.Contains(t, e.out.String(), views.MsgSignupOK)
}

func TestFavoriteCommands(t *testing.T) {
	t.Run("requires login and makes no call", func(t *testing.T) {
		e := newEnv(t)
		err := (&FavoriteCommand{base: e.base(), ID: "v1"}).Run()
		require.Error(t, err)
		assert.Equal(t, favorites.LoginPrompt, err.Error())
		assert.Zero(t, e.catalog.calls)
	})

	t.Run("add, list and remove", func(t *testing.T) {
		e := newEnv(t)
		e.login(t)

		require.NoError(t, (&FavoriteCommand{base: e.base(), ID: "v1"}).Run())
		require.Len(t, e.catalog.library, 1)
		assert.Equal(t, "Dune", e.catalog.library[0].Title)

		e.out.Reset()
		require.NoError(t, (&LibraryCommand{base: e.base()}).Run())
		assert.Contains(t, e.out.String(), "Dune - Frank Herbert")

		require.NoError(t, (&FavoriteCommand{base: e.base(), ID: "v1", Remove: true}).Run())
		assert.Equal(t, []string{"v1"}, e.catalog.removed)
	})

	t.Run("unknown book", func(t *testing.T) {
		e := newEnv(t)
		e.login(t)
		err := (&FavoriteCommand{base: e.base(), ID: "missing"}).Run()
		require.Error(t, err)
		assert.True(t, errors.Is(err, catalog.ErrNotFound))
	})
}

func TestSearchCommand(t *testing.T) {
	e := newEnv(t)
	e.catalog.library = []entities.FavoriteEntry{{VolumeID: "v2", Title: "Emma"}}
	e.login(t)
	e.out.Reset()

	require.NoError(t, (&SearchCommand{base: e.base(), Query: "books"}).Run())

	lines := strings.Split(strings.TrimRight(e.out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  "), "Dune is not a favorite")
	assert.True(t, strings.HasPrefix(lines[1], "★"), "Emma is a favorite")
}

func TestBookCommand(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, (&BookCommand{base: e.base(), ID: "v3"}).Run())
	out := e.out.String()
	assert.Contains(t, out, "Ubik")
	assert.Contains(t, out, entities.UnknownAuthor)
	assert.Contains(t, out, views.MsgNoDescription)

	err := (&BookCommand{base: e.base(), ID: "nope"}).Run()
	require.Error(t, err)
	assert.Equal(t, views.MsgDetailError, err.Error())
}

func TestFeaturedCommand(t *testing.T) {
	e := newEnv(t)

	cmd := &FeaturedCommand{base: e.base(), ISBNs: "111, 222,999,333", Center: 1}
	require.NoError(t, cmd.Run())

	out := e.out.String()
	assert.Contains(t, out, "Loaded 3 of 4 featured books")
	assert.Contains(t, out, "> +0 Emma")
	assert.Contains(t, out, "-1 Dune")
	assert.Contains(t, out, "+1 Ubik")
}

func TestParseFlags(t *testing.T) {
	cmd := NewSearchCommand()
	require.NoError(t, cmd.ParseFlags([]string{"-q", "dune", "-max", "5", "-db", "/tmp/x.db"}))
	assert.Equal(t, "dune", cmd.Query)
	assert.Equal(t, 5, cmd.MaxResults)
	assert.Equal(t, "/tmp/x.db", cmd.DatabasePath)

	assert.Error(t, NewSearchCommand().ParseFlags([]string{"-q", "  "}))
	assert.Error(t, NewBookCommand().ParseFlags(nil))

	un := NewUnfavoriteCommand()
	require.NoError(t, un.ParseFlags([]string{"-id", "v1"}))
	assert.True(t, un.Remove)
}

func TestSealedSession(t *testing.T) {
	e := newEnv(t)
	sealed := e.base()
	sealed.Secret = "s3cret"

	require.NoError(t, (&LoginCommand{base: sealed, Identifier: "ana", Password: "secret"}).Run())
	require.NoError(t, (&ProfileCommand{base: sealed}).Run())

	err := (&ProfileCommand{base: e.base()}).Run()
	require.Error(t, err, "a sealed token cannot be read without the secret")
}
