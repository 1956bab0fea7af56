package requestctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

func TestLoggerDefaultsToNoop(t *testing.T) {
	t.Parallel()

	require.Same(t, NoopLogger(), Logger(context.Background()))

	logger := zap.NewExample()
	ctx := WithLogger(context.Background(), logger)
	require.Same(t, logger, Logger(ctx))
}

func TestTraceRoundTrip(t *testing.T) {
	t.Parallel()

	require.Empty(t, TraceID(context.Background()))

	ctx := WithTrace(context.Background(), TraceInfo{TraceID: "abc", Sampled: true})
	info, ok := Trace(ctx)
	require.True(t, ok)
	require.True(t, info.Sampled)
	require.Equal(t, "abc", TraceID(ctx))
}

func TestLocaleDefaultsToEnglish(t *testing.T) {
	t.Parallel()

	require.Equal(t, language.English, Locale(context.Background()))
	require.Equal(t, language.Spanish, Locale(WithLocale(context.Background(), language.Spanish)))
}
