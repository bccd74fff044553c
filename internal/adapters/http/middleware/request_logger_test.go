package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aws/aws-xray-sdk-go/xray"
	"github.com/labstack/echo/v4"
)

type mockLogger struct {
	lastLevel string
	lastCtx   context.Context
	lastMsg   string
	lastArgs  []any
}

func (m *mockLogger) record(level string, ctx context.Context, msg string, args []any) {
	m.lastLevel = level
	m.lastCtx = ctx
	m.lastMsg = msg
	m.lastArgs = args
}

func (m *mockLogger) Info(ctx context.Context, msg string, args ...any) {
	m.record("info", ctx, msg, args)
}

func (m *mockLogger) Error(ctx context.Context, msg string, args ...any) {
	m.record("error", ctx, msg, args)
}

func (m *mockLogger) Warn(ctx context.Context, msg string, args ...any) {
	m.record("warn", ctx, msg, args)
}

func (m *mockLogger) Debug(context.Context, string, ...any) {}

func argValue(args []any, key string) (any, bool) {
	for i := 0; i < len(args)-1; i += 2 {
		if k, ok := args[i].(string); ok && k == key {
			return args[i+1], true
		}
	}
	return nil, false
}

func TestRequestLogger_LogsExpectedFields(t *testing.T) {
	logger := &mockLogger{}
	mw := RequestLogger(logger)

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/catalogs/doctors", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/catalogs/doctors")

	h := mw(func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if logger.lastMsg != "http request" || logger.lastLevel != "info" {
		t.Fatalf("unexpected log: %s %s", logger.lastLevel, logger.lastMsg)
	}

	for _, expected := range []string{"method", "path", "route_pattern", "status", "duration"} {
		if _, ok := argValue(logger.lastArgs, expected); !ok {
			t.Fatalf("missing expected key %s in args: %v", expected, logger.lastArgs)
		}
	}
}

func TestRequestLogger_LevelFollowsStatus(t *testing.T) {
	cases := []struct {
		name    string
		handler echo.HandlerFunc
		level   string
		status  int
	}{
		{"not found", func(c echo.Context) error { return c.NoContent(http.StatusNotFound) }, "warn", http.StatusNotFound},
		{"http error", func(c echo.Context) error { return echo.NewHTTPError(http.StatusBadGateway) }, "error", http.StatusBadGateway},
		{"plain error", func(c echo.Context) error { return context.DeadlineExceeded }, "error", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := &mockLogger{}
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

			_ = RequestLogger(logger)(tc.handler)(c)

			if logger.lastLevel != tc.level {
				t.Fatalf("level = %s, want %s", logger.lastLevel, tc.level)
			}
			if got, _ := argValue(logger.lastArgs, "status"); got != tc.status {
				t.Fatalf("status = %v, want %d", got, tc.status)
			}
		})
	}
}

func TestRequestLogger_PassesContextWithXRaySegment(t *testing.T) {
	logger := &mockLogger{}
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/catalogs/doctors", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ctx, seg := xray.BeginSegment(req.Context(), "http-test")
	defer seg.Close(nil)
	c.SetRequest(req.Clone(ctx))

	h := RequestLogger(logger)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if xray.GetSegment(logger.lastCtx) == nil {
		t.Fatalf("expected xray segment in logged context")
	}
}
