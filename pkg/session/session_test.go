package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lifetree/lifetree/pkg/errors"
)

func signed(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestNew(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	tok := signed(t, jwt.RegisteredClaims{Subject: "u1", ExpiresAt: jwt.NewNumericDate(exp)})

	sess, err := New("https://api.example.com/", "Bearer "+tok)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if sess.Owner != "u1" || !sess.ExpiresAt.Equal(exp) || sess.AccessToken != tok {
		t.Errorf("session = %+v", sess)
	}
	if sess.APIURL != "https://api.example.com" || sess.ID != IDFor("https://api.example.com") {
		t.Errorf("session not keyed by normalized URL: %+v", sess)
	}
}

func TestNewWithoutExpiry(t *testing.T) {
	sess, err := New("http://api", signed(t, jwt.RegisteredClaims{Subject: "u1"}))
	if err != nil {
		t.Fatal(err)
	}
	if d := time.Until(sess.ExpiresAt); d < DefaultTTL-time.Minute || d > DefaultTTL {
		t.Errorf("expiry in %v, want about %v", d, DefaultTTL)
	}
}

func TestNewRejects(t *testing.T) {
	if _, err := New("http://api", "not-a-token"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("New(garbage) error = %v", err)
	}
	old := signed(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))})
	if _, err := New("http://api", old); !errors.Is(err, errors.ErrCodeSessionExpired) {
		t.Errorf("New(expired) error = %v", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if got, err := s.Get(ctx, "missing"); got != nil || err != nil {
		t.Errorf("Get(missing) = %v, %v", got, err)
	}

	sess := &Session{ID: IDFor("http://api"), APIURL: "http://api", AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour)}
	if err := s.Set(ctx, sess); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(s.sessionPath(sess.ID))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("session file mode = %v, want 0600", info.Mode().Perm())
	}

	got, err := s.Get(ctx, sess.ID)
	if err != nil || got == nil || got.AccessToken != "t" {
		t.Fatalf("Get() = %+v, %v", got, err)
	}

	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.Get(ctx, sess.ID); got != nil {
		t.Error("session still present after Delete")
	}
	if err := s.Delete(ctx, sess.ID); err != nil {
		t.Errorf("Delete() twice: %v", err)
	}
}

func TestFileStoreExpired(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())

	old := &Session{ID: "old", APIURL: "http://api", ExpiresAt: time.Now().Add(-time.Minute)}
	fresh := &Session{ID: "fresh", ExpiresAt: time.Now().Add(time.Hour)}
	s.Set(ctx, old)
	s.Set(ctx, fresh)

	if _, err := s.Get(ctx, "old"); !errors.Is(err, errors.ErrCodeSessionExpired) {
		t.Errorf("Get(expired) error = %v", err)
	}
	if _, err := os.Stat(s.sessionPath("old")); !os.IsNotExist(err) {
		t.Error("expired session file not removed")
	}

	s.Set(ctx, old)
	if err := s.Cleanup(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(s.sessionPath("old")); !os.IsNotExist(err) {
		t.Error("Cleanup kept an expired session")
	}
	if got, _ := s.Get(ctx, "fresh"); got == nil {
		t.Error("Cleanup removed a live session")
	}
}

func TestNewFileStoreNeedsDir(t *testing.T) {
	if _, err := NewFileStore(""); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("NewFileStore(\"\") error = %v", err)
	}
}
