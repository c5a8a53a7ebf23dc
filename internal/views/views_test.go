package views

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hallowedlibrary/shelf/internal/catalog"
	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/favorites"
	"github.com/hallowedlibrary/shelf/internal/session"
)

type fakeCatalog struct {
	calls int

	books     []entities.Book
	book      *entities.Book
	user      *entities.User
	login     *entities.LoginResponse
	library   []entities.FavoriteEntry
	err       error
	remoteErr error
}

func (f *fakeCatalog) SearchBooks(ctx context.Context, query string, opts catalog.SearchOptions) ([]entities.Book, error) {
	f.calls++
	return f.books, f.err
}

func (f *fakeCatalog) GetBook(ctx context.Context, id string) (*entities.Book, error) {
	f.calls++
	return f.book, f.err
}

func (f *fakeCatalog) Signup(ctx context.Context, req entities.SignupRequest) (*entities.User, error) {
	f.calls++
	return f.user, f.err
}

func (f *fakeCatalog) Login(ctx context.Context, req entities.LoginRequest) (*entities.LoginResponse, error) {
	f.calls++
	return f.login, f.err
}

func (f *fakeCatalog) Profile(ctx context.Context, token string) (*entities.User, error) {
	f.calls++
	return f.user, f.err
}

func (f *fakeCatalog) ListFavorites(ctx context.Context, token string) ([]entities.FavoriteEntry, error) {
	f.calls++
	return f.library, f.remoteErr
}

func (f *fakeCatalog) AddFavorite(ctx context.Context, token string, entry entities.FavoriteEntry) error {
	f.calls++
	return f.remoteErr
}

func (f *fakeCatalog) RemoveFavorite(ctx context.Context, token, volumeID string) error {
	f.calls++
	return f.remoteErr
}

type memoryStore struct {
	sess *session.Session
	err  error
}

func (m *memoryStore) Load(ctx context.Context) (*session.Session, error) { return m.sess, m.err }

func (m *memoryStore) Save(ctx context.Context, s *session.Session) error {
	if m.err != nil {
		return m.err
	}
	m.sess = s
	return nil
}

func (m *memoryStore) Clear(ctx context.Context) error {
	m.sess = nil
	return nil
}

var signedIn = &session.Session{Token: "tok", User: entities.User{ID: 7, Username: "ana"}}

func TestSearch_BlankQueryMakesNoCall(t *testing.T) {
	cat := &fakeCatalog{books: []entities.Book{{ID: "1", Title: "Dune"}}}

	for _, q := range []string{"", "   ", "\t\n"} {
		page := Search(context.Background(), cat, nil, nil, q, catalog.SearchOptions{})
		assert.Empty(t, page.Results)
		assert.Empty(t, page.Error)
	}
	assert.Zero(t, cat.calls)
}

func TestSearch_DropsUntitledAndMarksFavorites(t *testing.T) {
	cat := &fakeCatalog{
		books: []entities.Book{
			{ID: "1", Title: "Dune", Authors: []string{"Frank Herbert"}},
			{ID: "2", Title: "  "},
			{ID: "3", Title: "Emma"},
		},
		library: []entities.FavoriteEntry{{VolumeID: "3"}},
	}
	favs := favorites.NewService(cat)

	page := Search(context.Background(), cat, favs, signedIn, " dune ", catalog.SearchOptions{})

	require.Len(t, page.Results, 2)
	assert.Equal(t, "dune", page.Query)
	assert.Equal(t, "Frank Herbert", page.Results[0].Authors)
	assert.False(t, page.Results[0].Favorite)
	assert.Equal(t, entities.UnknownAuthor, page.Results[1].Authors)
	assert.True(t, page.Results[1].Favorite)
	assert.Empty(t, page.Message)
}

func TestSearch_Errors(t *testing.T) {
	cat := &fakeCatalog{err: &catalog.APIError{Status: 500, Message: "boom"}}
	page := Search(context.Background(), cat, nil, nil, "x", catalog.SearchOptions{})
	assert.Equal(t, MsgSearchError, page.Error)

	cat = &fakeCatalog{}
	page = Search(context.Background(), cat, nil, nil, "x", catalog.SearchOptions{})
	assert.Equal(t, MsgNoResults, page.Message)
}

func TestDetail(t *testing.T) {
	cat := &fakeCatalog{book: &entities.Book{ID: "1", Title: "Dune"}}

	page := Detail(context.Background(), cat, nil, nil, "1")
	assert.Equal(t, "Dune", page.Book.Title)
	assert.Equal(t, entities.UnknownAuthor, page.Authors)
	assert.Equal(t, MsgNoDescription, page.Description)

	cat.err = catalog.ErrNotFound
	page = Detail(context.Background(), cat, nil, nil, "1")
	assert.Equal(t, MsgDetailError, page.Error)
	assert.Nil(t, page.Book)
}

func TestLibrary(t *testing.T) {
	cat := &fakeCatalog{}
	favs := favorites.NewService(cat)

	page := Library(context.Background(), favs, nil)
	assert.Equal(t, MsgNoUser, page.Error)
	assert.Zero(t, cat.calls)

	page = Library(context.Background(), favs, signedIn)
	assert.Equal(t, MsgLibraryEmpty, page.Message)

	cat.library = []entities.FavoriteEntry{{VolumeID: "a", Title: "A"}}
	page = Library(context.Background(), favs, signedIn)
	assert.Len(t, page.Entries, 1)

	cat.remoteErr = errors.New("down")
	page = Library(context.Background(), favs, signedIn)
	assert.Equal(t, MsgLibraryError, page.Error)
}

func TestToggleFavorite_LoggedOut(t *testing.T) {
	cat := &fakeCatalog{}
	favs := favorites.NewService(cat)

	res := ToggleFavorite(context.Background(), favs, nil, entities.FavoriteEntry{VolumeID: "a"})

	assert.Equal(t, favorites.LoginPrompt, res.Prompt)
	assert.False(t, res.Favorite)
	assert.Zero(t, cat.calls)
}

func TestToggleFavorite_RoundTrip(t *testing.T) {
	cat := &fakeCatalog{}
	favs := favorites.NewService(cat)
	entry := entities.FavoriteEntry{VolumeID: "a", Title: "A"}

	res := ToggleFavorite(context.Background(), favs, signedIn, entry)
	assert.True(t, res.Favorite)
	assert.True(t, favs.Contains("a"))

	res = ToggleFavorite(context.Background(), favs, signedIn, entry)
	assert.False(t, res.Favorite)
	assert.Empty(t, favs.IDs())

	cat.remoteErr = errors.New("down")
	res = ToggleFavorite(context.Background(), favs, signedIn, entry)
	assert.False(t, res.Favorite)
	assert.Empty(t, res.Prompt)
}

func TestRemoveFavorite(t *testing.T) {
	cat := &fakeCatalog{library: []entities.FavoriteEntry{{VolumeID: "a"}}}
	favs := favorites.NewService(cat)
	require.NoError(t, favs.Load(context.Background(), signedIn))

	cat.remoteErr = errors.New("down")
	res := RemoveFavorite(context.Background(), favs, signedIn, "a")
	assert.True(t, res.Favorite)

	cat.remoteErr = nil
	res = RemoveFavorite(context.Background(), favs, signedIn, "a")
	assert.False(t, res.Favorite)
	assert.False(t, favs.Contains("a"))
}

func TestLogin(t *testing.T) {
	cat := &fakeCatalog{login: &entities.LoginResponse{AccessToken: "tok", User: entities.User{ID: 7}}}
	store := &memoryStore{}

	res := Login(context.Background(), cat, store, LoginForm{Identifier: " ana ", Password: "pw"})

	require.NotNil(t, res.Session)
	assert.Empty(t, res.Message)
	assert.Equal(t, "tok", store.sess.Token)
	assert.Equal(t, int64(7), store.sess.User.ID)

	require.NoError(t, Logout(context.Background(), store))
	assert.Nil(t, store.sess)
}

func TestLogin_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"server message", &catalog.APIError{Status: 401, Message: "Invalid credentials"}, "Error: Invalid credentials"},
		{"no server message", &catalog.APIError{Status: 500}, "Error: " + MsgLoginFailed},
		{"transport", errors.New("dial tcp: refused"), MsgConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memoryStore{}
			res := Login(context.Background(), &fakeCatalog{err: tt.err}, store, LoginForm{})
			assert.Equal(t, tt.want, res.Message)
			assert.Nil(t, res.Session)
			assert.Nil(t, store.sess)
		})
	}
}

func TestLogin_GatewayErrorPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html><body><h1>502 Bad Gateway</h1></body></html>"))
	}))
	defer server.Close()

	store := &memoryStore{}
	cat := catalog.NewClient(server.URL+"/api", 5*time.Second)

	res := Login(context.Background(), cat, store, LoginForm{Identifier: "ana", Password: "pw"})

	assert.Equal(t, "Error: "+MsgLoginFailed, res.Message)
	assert.NotContains(t, res.Message, "<html>")
	assert.Nil(t, store.sess)
}

func TestSignup_PasswordMismatch(t *testing.T) {
	cat := &fakeCatalog{}

	res := Signup(context.Background(), cat, SignupForm{Username: "ana", Password: "a", PasswordConf: "b"})

	assert.Equal(t, MsgPasswordsDiffer, res.Message)
	assert.False(t, res.Created)
	assert.Equal(t, "ana", res.Form.Username)
	assert.Zero(t, cat.calls)
}

func TestSignup(t *testing.T) {
	cat := &fakeCatalog{user: &entities.User{ID: 1}}
	res := Signup(context.Background(), cat, SignupForm{Username: "ana", Password: "a", PasswordConf: "a"})
	assert.True(t, res.Created)
	assert.Equal(t, MsgSignupOK, res.Message)
	assert.Equal(t, SignupForm{}, res.Form)

	cat = &fakeCatalog{err: &catalog.APIError{Status: 409, Message: "El usuario ya existe"}}
	res = Signup(context.Background(), cat, SignupForm{Username: "ana", Password: "a", PasswordConf: "a"})
	assert.Equal(t, "Error: El usuario ya existe", res.Message)
	assert.Equal(t, "ana", res.Form.Username)

	cat = &fakeCatalog{err: &catalog.APIError{Status: 400}}
	res = Signup(context.Background(), cat, SignupForm{})
	assert.Equal(t, "Error: "+MsgSignupFailed, res.Message)
}

func TestProfile(t *testing.T) {
	page := Profile(context.Background(), &fakeCatalog{}, nil)
	assert.True(t, page.LoginRequired)

	cat := &fakeCatalog{user: &entities.User{ID: 7, Name: "Ana"}}
	page = Profile(context.Background(), cat, signedIn)
	assert.Equal(t, "Ana", page.User.Name)
	assert.Equal(t, entities.DefaultAvatarURL, page.Avatar)

	cat.err = catalog.ErrUnauthorized
	page = Profile(context.Background(), cat, signedIn)
	assert.Equal(t, MsgProfileError, page.Error)
}
