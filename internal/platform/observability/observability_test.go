package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/requestctx"
)

func TestParseCloudTraceContext(t *testing.T) {
	t.Parallel()

	sc, ok := parseCloudTraceContext("105445aa7843bc8bf206b12000100000/1;o=1")
	require.True(t, ok)
	require.Equal(t, "105445aa7843bc8bf206b12000100000", sc.TraceID().String())
	require.Equal(t, "0000000000000001", sc.SpanID().String())
	require.True(t, sc.IsSampled())
	require.Equal(t, "105445aa7843bc8bf206b12000100000/1;o=1", formatCloudTraceHeader(sc))

	for _, header := range []string{"", "abc", "105445aa7843bc8bf206b12000100000/zz", "105445aa7843bc8bf206b12000100000/0"} {
		_, ok := parseCloudTraceContext(header)
		require.False(t, ok, header)
	}
}

func TestTraceMiddlewareStoresRemoteTrace(t *testing.T) {
	t.Parallel()

	var info requestctx.TraceInfo
	handler := TraceMiddleware("deca-web")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, _ = requestctx.Trace(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/service-area", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", info.TraceID)
	require.Equal(t, "deca-web", info.ProjectID)
	require.Contains(t, rec.Header().Get(cloudTraceHeader), "4bf92f3577b34da6a3ce929d0e0e4736/")
}

func TestTraceMiddlewareWithoutParent(t *testing.T) {
	t.Parallel()

	var info requestctx.TraceInfo
	handler := TraceMiddleware("")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info, _ = requestctx.Trace(r.Context())
		require.False(t, trace.SpanContextFromContext(r.Context()).IsValid())
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Empty(t, info.TraceID)
}

func TestRequestLoggerRecordsRouteAndStatus(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	r := chi.NewRouter()
	r.Use(InjectLoggerMiddleware(zap.New(core)), RequestLoggerMiddleware())
	r.Get("/map/regions/{code}/tooltip", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/map/regions/ZZ/tooltip", nil)
	req.Header.Set("HX-Request", "true")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "/map/regions/{code}/tooltip", fields["route"])
	require.EqualValues(t, http.StatusNotFound, fields["status"])
	require.Equal(t, true, fields["htmx"])
	require.Equal(t, zapcore.WarnLevel, entries[0].Level)
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.ErrorLevel)
	handler := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodPost, "/map/regions/TX/select", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "internal_server_error")
	require.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "GETX", SanitizeMethod("GET\nX"))
	require.Equal(t, "/", SanitizeRoute(""))
	require.Len(t, []rune(sanitizeString("ééééé", 3)), 3)
}

func TestNewLoggerHonoursLevelOption(t *testing.T) {
	logger, err := NewLogger(WithLevel("warn"), WithOutput("stderr"), WithFields(map[string]any{"service": "deca-web"}))
	require.NoError(t, err)
	require.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	require.True(t, logger.Core().Enabled(zapcore.WarnLevel))
}
