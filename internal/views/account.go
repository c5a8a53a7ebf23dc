package views

import (
	"context"
	"strings"

	"github.com/hallowedlibrary/shelf/internal/entities"
	"github.com/hallowedlibrary/shelf/internal/logging"
	"github.com/hallowedlibrary/shelf/internal/session"
)

// LoginForm is what the user typed into the login form.
type LoginForm struct {
	Identifier string `form:"identifier" json:"identifier"`
	Password   string `form:"password" json:"password"`
}

// LoginResult carries either the new session or a message for the form.
type LoginResult struct {
	Session *session.Session `json:"-"`
	User    *entities.User   `json:"user,omitempty"`
	Message string           `json:"message,omitempty"`
}

// Login authenticates against the catalog and persists the credentials in
// store under the fixed token and user keys.
func Login(ctx context.Context, cat Catalog, store session.Store, form LoginForm) LoginResult {
	resp, err := cat.Login(ctx, entities.LoginRequest{
		Identifier: strings.TrimSpace(form.Identifier),
		Password:   form.Password,
	})
	if err != nil {
		logging.Log.WithError(err).WithField("identifier", form.Identifier).Info("Login rejected")
		return LoginResult{Message: formError(err, MsgLoginFailed)}
	}

	sess := session.New(resp)
	if err := store.Save(ctx, sess); err != nil {
		logging.Log.WithError(err).Error("Failed to persist session")
		return LoginResult{Message: "Error: " + MsgLoginFailed}
	}

	logging.Log.WithField("user_id", sess.UserID()).Info("User logged in")
	return LoginResult{Session: sess, User: &sess.User}
}

// Logout clears the stored credentials.
func Logout(ctx context.Context, store session.Store) error {
	return store.Clear(ctx)
}

// SignupForm is the sign-up form.
type SignupForm struct {
	Name         string `form:"name" json:"name"`
	Username     string `form:"username" json:"username"`
	Email        string `form:"email" json:"email"`
	Password     string `form:"password" json:"password"`
	PasswordConf string `form:"passwordConf" json:"passwordConf"`
}

// SignupResult is the message to show plus the form values to render back.
type SignupResult struct {
	Created bool       `json:"created"`
	Message string     `json:"message"`
	Form    SignupForm `json:"-"`
}

// Signup creates an account. Mismatched passwords are rejected locally. On
// success the form is cleared.
func Signup(ctx context.Context, cat Catalog, form SignupForm) SignupResult {
	if form.Password != form.PasswordConf {
		return SignupResult{Message: MsgPasswordsDiffer, Form: form}
	}

	_, err := cat.Signup(ctx, entities.SignupRequest{
		Name:         strings.TrimSpace(form.Name),
		Username:     strings.TrimSpace(form.Username),
		Email:        strings.TrimSpace(form.Email),
		Password:     form.Password,
		PasswordConf: form.PasswordConf,
	})
	if err != nil {
		logging.Log.WithError(err).WithField("username", form.Username).Info("Signup rejected")
		return SignupResult{Message: formError(err, MsgSignupFailed), Form: form}
	}

	logging.Log.WithField("username", form.Username).Info("User created")
	return SignupResult{Created: true, Message: MsgSignupOK}
}

// ProfilePage shows the signed-in user's profile.
type ProfilePage struct {
	User          *entities.User `json:"user,omitempty"`
	Avatar        string         `json:"avatar,omitempty"`
	LoginRequired bool           `json:"loginRequired,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// Profile fetches the profile fresh from the server rather than trusting the
// copy saved at login.
func Profile(ctx context.Context, cat Catalog, sess *session.Session) ProfilePage {
	if !sess.Authenticated() {
		return ProfilePage{LoginRequired: true}
	}

	user, err := cat.Profile(ctx, sess.BearerToken())
	if err != nil || user == nil {
		logging.Log.WithError(err).Warn("Loading profile failed")
		return ProfilePage{Error: MsgProfileError}
	}
	return ProfilePage{User: user, Avatar: user.Avatar()}
}
