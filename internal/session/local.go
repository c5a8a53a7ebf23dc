package session

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hallowedlibrary/shelf/internal/crypto"
	"github.com/hallowedlibrary/shelf/internal/database"
)

// LocalStore keeps the CLI session in the settings table of the local
// database under the fixed keys. With a sealer the token is stored
// encrypted.
type LocalStore struct {
	db     *database.Database
	sealer *crypto.Sealer
}

func NewLocalStore(db *database.Database) *LocalStore {
	return &LocalStore{db: db}
}

// WithSealer encrypts the token on save. Tokens saved in plain text
// earlier still load.
func (l *LocalStore) WithSealer(s *crypto.Sealer) *LocalStore {
	l.sealer = s
	return l
}

func (l *LocalStore) Load(ctx context.Context) (*Session, error) {
	token, err := l.db.GetSetting(KeyToken)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	value := token.Value
	if l.sealer != nil {
		if value, err = l.sealer.Open(value); err != nil {
			return nil, fmt.Errorf("open token: %w", err)
		}
	} else if crypto.IsSealed(value) {
		return nil, errors.New("stored token is encrypted but no secret is configured")
	}
	if value == "" {
		return nil, nil
	}

	s := &Session{Token: value}
	rawUser, err := l.db.GetSetting(KeyUser)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if rawUser != nil {
		if s.User, err = decodeUser(rawUser.Value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (l *LocalStore) Save(ctx context.Context, s *Session) error {
	user, err := encodeUser(s.User)
	if err != nil {
		return err
	}
	token := s.Token
	if l.sealer != nil {
		if token, err = l.sealer.Seal(token); err != nil {
			return fmt.Errorf("seal token: %w", err)
		}
	}
	return l.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txDB := &database.Database{DB: tx}
		if err := txDB.SetSetting(KeyToken, token); err != nil {
			return fmt.Errorf("save token: %w", err)
		}
		if err := txDB.SetSetting(KeyUser, user); err != nil {
			return fmt.Errorf("save user: %w", err)
		}
		return nil
	})
}

func (l *LocalStore) Clear(ctx context.Context) error {
	if err := l.db.DeleteSetting(KeyToken); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := l.db.DeleteSetting(KeyUser); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	return nil
}
