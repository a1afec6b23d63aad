package identity

import (
	"context"
	"fmt"

	"ordersync/internal/entities"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// User — аутентифицированный пользователь сессии.
// Слой синхронизации получает его готовым, аутентификацию не делает.
type User struct {
	ID          string
	DisplayName string
}

type userKey struct{}

func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}

type CredentialRepo interface {
	UserCredential(ctx context.Context, userID string) (hash, displayName string, err error)
}

type Provider struct {
	secret []byte
	repo   CredentialRepo
}

func NewProvider(secret string, repo CredentialRepo) *Provider {
	return &Provider{secret: []byte(secret), repo: repo}
}

type claims struct {
	DisplayName string `json:"name"`
	jwt.RegisteredClaims
}

// ParseToken разбирает bearer-токен внешнего провайдера сессий.
func (p *Provider) ParseToken(token string) (User, error) {
	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return p.secret, nil
	})
	if err != nil {
		return User{}, entities.WithKind(entities.KindAuthorization, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid {
		return User{}, entities.WithKind(entities.KindAuthorization, entities.ErrInvalidCredential)
	}
	return User{ID: c.Subject, DisplayName: c.DisplayName}, nil
}

// VerifyCredential сверяет пароль повторной аутентификации
// для защищённых операций (revert из COMPLETED, удаление).
func (p *Provider) VerifyCredential(ctx context.Context, userID, credential string) error {
	if credential == "" {
		return entities.ErrReauthRequired
	}
	hash, _, err := p.repo.UserCredential(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential)); err != nil {
		return entities.WithKind(entities.KindAuthorization, entities.ErrInvalidCredential)
	}
	return nil
}
