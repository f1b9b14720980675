package auth

import (
	"context"
	"errors"
	"testing"

	"robot-route-service/internal/middleware"
	"robot-route-service/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type fakeRepo struct {
	users  map[string]*models.User
	hashes map[string]string
}

func (f *fakeRepo) FindByUsername(ctx context.Context, username string) (*models.User, string, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, "", models.ErrNotFound
	}
	cp := *u
	return &cp, f.hashes[username], nil
}

func (f *fakeRepo) FindByID(ctx context.Context, userID int) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == userID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func newTestRepo(t *testing.T) *fakeRepo {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return &fakeRepo{
		users:  map[string]*models.User{"mod": {ID: 9, Username: "mod", IsModerator: true}},
		hashes: map[string]string{"mod": string(hash)},
	}
}

func TestLoginIssuesClaims(t *testing.T) {
	svc := NewService(newTestRepo(t), "secret")

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "mod", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if resp.User.ID != 9 {
		t.Errorf("resp.User.ID = %d; want 9", resp.User.ID)
	}

	var claims middleware.Claims
	_, err = jwt.ParseWithClaims(resp.Token, &claims, func(tok *jwt.Token) (any, error) {
		return []byte("secret"), nil
	})
	if err != nil {
		t.Fatalf("issued token does not parse: %v", err)
	}
	if claims.UserID != 9 || claims.Username != "mod" || !claims.IsModerator {
		t.Errorf("claims = %+v; want user 9 / mod / moderator", claims)
	}
	if claims.ExpiresAt == nil {
		t.Error("token has no expiry")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewService(newTestRepo(t), "secret")

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "mod", Password: "wrong"})
	if !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v; want ErrInvalidCredentials", err)
	}
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewService(newTestRepo(t), "secret")

	// Unknown user and wrong password are indistinguishable to the caller.
	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "ghost", Password: "x"})
	if !errors.Is(err, models.ErrInvalidCredentials) {
		t.Errorf("Login(unknown user) error = %v; want ErrInvalidCredentials", err)
	}
}
