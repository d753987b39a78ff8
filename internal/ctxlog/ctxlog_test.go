package ctxlog_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/specialistvlad/launchgrid/internal/ctxlog"
	"github.com/stretchr/testify/require"
)

func TestFromContext_ReturnsEmbeddedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ctx := ctxlog.WithLogger(context.Background(), logger)
	require.Same(t, logger, ctxlog.FromContext(ctx))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	require.Same(t, slog.Default(), ctxlog.FromContext(context.Background()))
}

func TestWith_AttachesAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	ctx, child := ctxlog.With(ctx, "process", "amcl")
	child.Info("hello")

	require.Same(t, child, ctxlog.FromContext(ctx))
	require.Contains(t, buf.String(), "process=amcl")
}
