package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
)

func TestSPA(t *testing.T) {
	site := fstest.MapFS{
		"index.html":    {Data: []byte("<html>index</html>")},
		"static/app.js": {Data: []byte("console.log(1)")},
	}
	e := echo.New()
	e.GET("/*", spa(site))

	tests := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{"/", http.StatusOK, "index"},
		{"/results/2025", http.StatusOK, "index"},
		{"/static/app.js", http.StatusOK, "console.log"},
		{"/missing.css", http.StatusNotFound, ""},
		{"/api/unknown", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}
