package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pockettcg/tracker/internal/web/modules/health"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func serve(t *testing.T, mod health.Module) *httptest.ResponseRecorder {
	t.Helper()
	mount, err := mod.Mount()
	if err != nil {
		t.Fatalf("mount: %v", err)
	}
	rec := httptest.NewRecorder()
	mount.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	return rec
}

func TestHealthyStoreReportsOK(t *testing.T) {
	t.Parallel()

	rec := serve(t, health.New(health.WithPinger(pingerFunc(func(context.Context) error { return nil }))))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestFailingStoreReportsDegraded(t *testing.T) {
	t.Parallel()

	rec := serve(t, health.New(health.WithPinger(pingerFunc(func(context.Context) error {
		return errors.New("db gone")
	}))))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestMissingPingerReportsDegraded(t *testing.T) {
	t.Parallel()

	rec := serve(t, health.New())
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}
