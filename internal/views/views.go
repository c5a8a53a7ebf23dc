// Package views turns catalog and favorites data into page models shared by
// the HTML frontend, the JSON API and the CLI.
package views

import (
	"context"
	"errors"

	"github.com/hallowedlibrary/shelf/internal/catalog"
	"github.com/hallowedlibrary/shelf/internal/entities"
)

// User-facing messages.
const (
	MsgSearchError     = "Error searching books"
	MsgNoResults       = "No results"
	MsgDetailError     = "Error fetching book"
	MsgLibraryError    = "Error loading My Library"
	MsgLibraryEmpty    = "Ups, there aren't books here."
	MsgNoUser          = "No user"
	MsgProfileError    = "Error al cargar el perfil"
	MsgNoDescription   = "No description available."
	MsgConnection      = "Error de conexión con el servidor"
	MsgLoginFailed     = "No se pudo iniciar sesión"
	MsgSignupFailed    = "No se pudo crear el usuario"
	MsgSignupOK        = "Usuario creado con éxito!"
	MsgPasswordsDiffer = "Las contraseñas no coinciden"
	MsgTooManyLogins   = "Demasiados intentos, inténtalo más tarde"
)

// Catalog is the part of the catalog client the views read from.
type Catalog interface {
	SearchBooks(ctx context.Context, query string, opts catalog.SearchOptions) ([]entities.Book, error)
	GetBook(ctx context.Context, id string) (*entities.Book, error)
	Signup(ctx context.Context, req entities.SignupRequest) (*entities.User, error)
	Login(ctx context.Context, req entities.LoginRequest) (*entities.LoginResponse, error)
	Profile(ctx context.Context, token string) (*entities.User, error)
}

// BookCard is one tile of a results grid.
type BookCard struct {
	Book     entities.Book `json:"book"`
	Authors  string        `json:"authors"`
	Favorite bool          `json:"favorite"`
}

// formError renders a failed login or signup. The server message wins, a
// response without one gets fallback, and anything that never produced a
// response is reported as a connection problem.
func formError(err error, fallback string) string {
	var apiErr *catalog.APIError
	if !errors.As(err, &apiErr) {
		return MsgConnection
	}
	if apiErr.Message != "" {
		return "Error: " + apiErr.Message
	}
	return "Error: " + fallback
}
