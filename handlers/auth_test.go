package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	mw "github.com/padraicbc/cc6api/middleware"
	"github.com/padraicbc/cc6api/models"
)

func TestHashPasswordForUser(t *testing.T) {
	if _, err := HashPasswordForUser(" ", "pw"); err == nil {
		t.Error("blank username accepted")
	}
	if _, err := HashPasswordForUser("admin", ""); err == nil {
		t.Error("blank password accepted")
	}
	hash, err := HashPasswordForUser("admin", "pw")
	if err != nil {
		t.Fatalf("HashPasswordForUser: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("pw")) != nil {
		t.Error("hash does not match password")
	}
}

func TestSigninAndAdminRoutes(t *testing.T) {
	m := fixture()
	for _, name := range []string{"admin", "viewer"} {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
		if err != nil {
			t.Fatal(err)
		}
		m.users[name] = &models.User{Username: name, Password: string(hash)}
	}

	cfg := testConfig()
	h := New(m, cfg, nil)
	e := echo.New()
	Register(e, h, mw.JWT(cfg.JWTKey()), mw.AdminOnly(cfg.IsAdmin))

	signin := func(username, password string) (int, map[string]interface{}) {
		rec := doJSON(e, http.MethodPost, "/api/signin", `{"username":"`+username+`","password":"`+password+`"}`)
		var body map[string]interface{}
		if rec.Code == http.StatusOK {
			decode(t, rec, &body)
		}
		return rec.Code, body
	}

	if code, _ := signin("admin", "wrong"); code != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", code)
	}
	if code, _ := signin("nobody", "secret"); code != http.StatusBadRequest {
		t.Errorf("unknown user: status = %d, want 400", code)
	}

	code, body := signin("admin", "secret")
	if code != http.StatusOK || body["admin"] != true {
		t.Fatalf("admin signin: status = %d body = %v", code, body)
	}
	adminToken := body["token"].(string)

	_, body = signin("viewer", "secret")
	viewerToken := body["token"].(string)

	get := func(token string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/races", nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}
	if got := get(adminToken); got != http.StatusOK {
		t.Errorf("admin: status = %d, want 200", got)
	}
	if got := get(viewerToken); got != http.StatusForbidden {
		t.Errorf("viewer: status = %d, want 403", got)
	}
	if got := get(""); got != http.StatusBadRequest {
		t.Errorf("anonymous: status = %d, want 400", got)
	}

	// Public routes stay open.
	if rec := do(e, http.MethodGet, "/api/clubs", nil, ""); rec.Code != http.StatusOK {
		t.Errorf("public clubs: status = %d", rec.Code)
	}
}

func TestPasswordHash(t *testing.T) {
	m := fixture()
	m.users["admin"] = &models.User{Username: "admin"}
	h := New(m, testConfig(), nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("username", "ghost")
	err := h.PasswordHash(c)
	if he, ok := err.(*echo.HTTPError); !ok || he.Code != http.StatusUnauthorized {
		t.Errorf("unknown requester: err = %v, want 401", err)
	}
}
