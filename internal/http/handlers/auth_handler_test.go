package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/tbourn/go-tutor-backend/internal/domain"
	"github.com/tbourn/go-tutor-backend/internal/services"
)

func authHandlers(auth AuthService) *Handlers {
	return New(auth, nil, nil, nil, CookieOptions{Name: "tutor_session", TTL: time.Hour})
}

func TestRegisterHandler(t *testing.T) {
	auth := &stubAuth{
		registerFn: func(ctx context.Context, username, email, password string) (*domain.User, error) {
			if username != "alice" || email != "alice@example.com" {
				t.Errorf("unexpected args: %s %s", username, email)
			}
			return &domain.User{ID: 5, Username: username, Email: email}, nil
		},
	}
	r := newTestRouter(authHandlers(auth), 0, false)

	w := doJSON(r, http.MethodPost, "/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"pw123456"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"id":5`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "pw123456") {
		t.Fatal("password echoed in response")
	}
}

func TestRegisterHandlerValidation(t *testing.T) {
	r := newTestRouter(authHandlers(&stubAuth{}), 0, false)
	cases := []string{
		`{}`,
		`{"username":"al","email":"alice@example.com","password":"pw123456"}`,
		`{"username":"alice","email":"not-an-email","password":"pw123456"}`,
		`{"username":"alice","email":"alice@example.com","password":"short"}`,
		`not json`,
	}
	for _, body := range cases {
		w := doJSON(r, http.MethodPost, "/auth/register", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}

	// Binding failures name the offending fields.
	w := doJSON(r, http.MethodPost, "/auth/register", `{"username":"al","email":"alice@example.com","password":"pw123456"}`, nil)
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "username" {
		t.Fatalf("errors = %+v, want single username entry", resp.Errors)
	}
	if resp.Errors[0].Reason != "must be at least 3 characters" {
		t.Fatalf("reason = %q", resp.Errors[0].Reason)
	}
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"username taken", services.ErrUserExists, "username already exists"},
		{"email taken", services.ErrEmailExists, "email already exists"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			auth := &stubAuth{
				registerFn: func(context.Context, string, string, string) (*domain.User, error) {
					return nil, tc.err
				},
			}
			r := newTestRouter(authHandlers(auth), 0, false)

			w := doJSON(r, http.MethodPost, "/auth/register",
				`{"username":"alice","email":"alice@example.com","password":"pw123456"}`, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if !strings.Contains(w.Body.String(), tc.want) {
				t.Fatalf("unexpected body: %s", w.Body.String())
			}
		})
	}
}

func TestLoginHandlerSetsCookie(t *testing.T) {
	auth := &stubAuth{
		loginFn: func(ctx context.Context, identifier, password string) (*domain.User, error) {
			if identifier != "alice" || password != "pw123456" {
				t.Errorf("unexpected args: %s %s", identifier, password)
			}
			return &domain.User{ID: 5, Username: "alice", Email: "alice@example.com"}, nil
		},
		issueFn: func(u *domain.User) (string, error) { return "signed-token", nil },
	}
	r := newTestRouter(authHandlers(auth), 0, false)

	w := doJSON(r, http.MethodPost, "/auth/login",
		`{"username":"alice","password":"pw123456"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "tutor_session" {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	if cookie.Value != "signed-token" || !cookie.HttpOnly {
		t.Fatalf("unexpected cookie: %+v", cookie)
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("cookie MaxAge = %d, want 3600", cookie.MaxAge)
	}
}

func TestLoginHandlerEmailIdentifier(t *testing.T) {
	var gotIdentifier string
	auth := &stubAuth{
		loginFn: func(ctx context.Context, identifier, password string) (*domain.User, error) {
			gotIdentifier = identifier
			return &domain.User{ID: 5, Username: "alice"}, nil
		},
		issueFn: func(*domain.User) (string, error) { return "t", nil },
	}
	r := newTestRouter(authHandlers(auth), 0, false)

	w := doJSON(r, http.MethodPost, "/auth/login",
		`{"email":"alice@example.com","password":"pw123456"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if gotIdentifier != "alice@example.com" {
		t.Fatalf("identifier = %q", gotIdentifier)
	}
}

func TestLoginHandlerFailures(t *testing.T) {
	auth := &stubAuth{
		loginFn: func(context.Context, string, string) (*domain.User, error) {
			return nil, services.ErrInvalidCredentials
		},
	}
	r := newTestRouter(authHandlers(auth), 0, false)

	w := doJSON(r, http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials: status = %d, want 401", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/auth/login", `{"password":"pw123456"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing identifier: status = %d, want 400", w.Code)
	}

	w = doJSON(r, http.MethodPost, "/auth/login", `{"username":"alice"}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password: status = %d, want 400", w.Code)
	}
}

func TestLogoutHandlerClearsCookie(t *testing.T) {
	r := newTestRouter(authHandlers(&stubAuth{}), 7, false)

	w := doJSON(r, http.MethodPost, "/auth/logout", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}

	var cookie *http.Cookie
	for _, ck := range w.Result().Cookies() {
		if ck.Name == "tutor_session" {
			cookie = ck
		}
	}
	if cookie == nil {
		t.Fatal("no session cookie in response")
	}
	if cookie.Value != "" || cookie.MaxAge >= 0 {
		t.Fatalf("cookie not cleared: %+v", cookie)
	}
}

func TestMeHandler(t *testing.T) {
	auth := &stubAuth{
		getUserFn: func(ctx context.Context, id uint) (*domain.User, error) {
			if id != 7 {
				t.Errorf("id = %d, want 7", id)
			}
			return &domain.User{ID: 7, Username: "bob", Email: "bob@example.com", IsAdmin: true}, nil
		},
	}
	r := newTestRouter(authHandlers(auth), 7, true)

	w := doJSON(r, http.MethodGet, "/auth/me", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"username":"bob"`) || !strings.Contains(body, `"is_admin":true`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestMeHandlerAnonymous(t *testing.T) {
	r := newTestRouter(authHandlers(&stubAuth{}), 0, false)
	w := doJSON(r, http.MethodGet, "/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
