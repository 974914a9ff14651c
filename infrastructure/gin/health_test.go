package gin_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	ginpkg "github.com/gin-gonic/gin"

	infragin "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/gin"
)

func TestHealth_Statuses(t *testing.T) {
	ok := func() error { return nil }
	down := func() error { return errors.New("dial tcp: connection refused") }

	tests := []struct {
		name       string
		database   func() error
		redis      func() error
		wantCode   int
		wantStatus infragin.HealthStatus
	}{
		{"all healthy", ok, ok, http.StatusOK, infragin.HealthStatusHealthy},
		{"redis down degrades", ok, down, http.StatusOK, infragin.HealthStatusDegraded},
		{"database down is unhealthy", down, ok, http.StatusServiceUnavailable, infragin.HealthStatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := infragin.NewServerBuilder("link-tracker", 8080).
				WithDatabaseHealthCheck(tt.database).
				WithRedisHealthCheck(tt.redis).
				Build()

			w := httptest.NewRecorder()
			srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

			if w.Code != tt.wantCode {
				t.Fatalf("status code = %d, want %d", w.Code, tt.wantCode)
			}

			var body infragin.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Status != tt.wantStatus {
				t.Errorf("status = %q, want %q", body.Status, tt.wantStatus)
			}
			if body.Service != "link-tracker" {
				t.Errorf("service = %q", body.Service)
			}
		})
	}
}

func TestHealth_RoutesCoexistWithCatchAll(t *testing.T) {
	srv := infragin.NewServerBuilder("link-tracker", 8080).
		WithRoutes(func(r *ginpkg.Engine) {
			r.GET("/:short_code", func(c *ginpkg.Context) { c.String(http.StatusTeapot, c.Param("short_code")) })
		}).
		Build()

	for path, want := range map[string]int{
		"/health":        http.StatusOK,
		"/health/memory": http.StatusOK,
		"/abc123":        http.StatusTeapot,
	} {
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		if w.Code != want {
			t.Errorf("GET %s = %d, want %d", path, w.Code, want)
		}
	}
}
