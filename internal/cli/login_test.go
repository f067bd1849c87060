package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lifetree/lifetree/pkg/auth"
	"github.com/lifetree/lifetree/pkg/errors"
)

func TestLoginLogout(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	issuer, err := auth.NewIssuer("login-test", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	tok, err := issuer.Issue(auth.Claims{}.For("alice"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := execCLI(t, "login", "--api", "http://api.test/", "--token", tok); err != nil {
		t.Fatalf("login: %v", err)
	}
	got, err := savedToken(ctx, "http://api.test")
	if err != nil || got != tok {
		t.Fatalf("savedToken() = %q, %v", got, err)
	}

	if _, err := execCLI(t, "logout", "--api", "http://api.test"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if got, err := savedToken(ctx, "http://api.test"); got != "" || err != nil {
		t.Errorf("savedToken() after logout = %q, %v", got, err)
	}
}

func TestLoginRejects(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"no api", []string{"login", "--token", "x"}, errors.ErrCodeInvalidInput},
		{"bad api", []string{"login", "--api", "ftp://api", "--token", "x"}, errors.ErrCodeInvalidInput},
		{"not a jwt", []string{"login", "--api", "http://api", "--token", "x"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestReadToken(t *testing.T) {
	got, err := readToken(strings.NewReader("  abc.def.ghi \n"))
	if err != nil || got != "abc.def.ghi" {
		t.Errorf("readToken() = %q, %v", got, err)
	}
	if _, err := readToken(strings.NewReader("\n")); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("readToken(empty) error = %v", err)
	}
}
