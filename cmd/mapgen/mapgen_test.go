package main

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/config"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/storage"
)

type recordingUploader struct {
	mu      sync.Mutex
	objects map[string]storage.ObjectAttrs
	bucket  string
}

func (u *recordingUploader) Upload(_ context.Context, bucket, object string, _ []byte, attrs storage.ObjectAttrs) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.objects == nil {
		u.objects = map[string]storage.ObjectAttrs{}
	}
	u.bucket = bucket
	u.objects[object] = attrs
	return nil
}

func newTestApp(t *testing.T, env map[string]string) (*app, *bytes.Buffer, *recordingUploader) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	a := newApp(&stdout, &stderr)
	a.newLogger = func(string) (*zap.Logger, error) { return zap.NewNop(), nil }
	up := &recordingUploader{}
	a.newUploader = func(context.Context, string) (storage.Uploader, func() error, error) {
		return up, nil, nil
	}
	a.configOpts = []config.Option{config.WithEnvFile(""), config.WithEnvMap(env), config.WithoutSystemEnv()}
	return a, &stdout, up
}

func execute(a *app, args ...string) error {
	root := a.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func TestGenerateWritesArtifact(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "regions.json")
	a, stdout, _ := newTestApp(t, nil)
	require.NoError(t, execute(a, "generate", "--input", "testdata/states.json", "--output", out))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	table, err := artifact.Parse(raw)
	require.NoError(t, err)
	require.Equal(t, []string{"CA", "TX"}, table.Codes())
	require.Equal(t, 450.0, table["TX"].CX)

	require.Contains(t, stdout.String(), "wrote 2 regions")
	require.Contains(t, stdout.String(), `"0 0 975 610"`)
}

func TestGenerateIsByteIdenticalAcrossRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first, second := filepath.Join(dir, "a.json"), filepath.Join(dir, "b.json")
	a, _, _ := newTestApp(t, nil)
	require.NoError(t, execute(a, "generate", "--input", "testdata/states.json", "--output", first))
	a, _, _ = newTestApp(t, nil)
	require.NoError(t, execute(a, "generate", "--input", "testdata/states.json", "--output", second))

	x, err := os.ReadFile(first)
	require.NoError(t, err)
	y, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, x, y)
}

func TestGenerateFailureLeavesNoOutput(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "regions.json")
	a, _, _ := newTestApp(t, nil)
	err := execute(a, "generate", "--input", "testdata/missing.json", "--output", out)
	require.Error(t, err)
	_, statErr := os.Stat(out)
	require.True(t, os.IsNotExist(statErr))

	a, _, _ = newTestApp(t, nil)
	err = execute(a, "generate", "--input", "testdata/states.json", "--output", out, "--object", "counties")
	require.Error(t, err)
	_, statErr = os.Stat(out)
	require.True(t, os.IsNotExist(statErr))
}

func TestGenerateRejectsAnchorPrecision(t *testing.T) {
	t.Parallel()

	a, _, _ := newTestApp(t, nil)
	err := execute(a, "generate", "--input", "testdata/states.json",
		"--output", filepath.Join(t.TempDir(), "r.json"), "--anchor-precision", "9")
	require.ErrorContains(t, err, "anchor-precision")
}

func TestGeneratePreview(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	preview := filepath.Join(dir, "preview.png")
	a, _, _ := newTestApp(t, nil)
	require.NoError(t, execute(a, "generate", "--input", "testdata/states.json",
		"--output", filepath.Join(dir, "regions.json"), "--preview", preview))

	f, err := os.Open(preview)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, artifact.ViewportWidth, img.Bounds().Dx())
	require.Equal(t, artifact.ViewportHeight, img.Bounds().Dy())
}

func TestGeneratePublishesRunAndLatest(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a, stdout, up := newTestApp(t, map[string]string{"DECA_MAP_CACHE_CONTROL": "no-cache"})
	require.NoError(t, execute(a, "generate", "--input", "testdata/states.json",
		"--output", filepath.Join(dir, "regions.json"),
		"--preview", filepath.Join(dir, "preview.png"),
		"--publish=gs://deca-site/maps"))

	require.Equal(t, "deca-site", up.bucket)
	require.Len(t, up.objects, 4)
	latest, ok := up.objects["maps/latest/regions.json"]
	require.True(t, ok)
	require.Equal(t, "no-cache", latest.CacheControl)
	require.Equal(t, "application/json", latest.ContentType)
	require.Equal(t, "image/png", up.objects["maps/latest/preview.png"].ContentType)

	var runObjects int
	for object := range up.objects {
		if !strings.Contains(object, "/latest/") {
			runObjects++
		}
	}
	require.Equal(t, 2, runObjects)
	require.Contains(t, stdout.String(), "published gs://deca-site/maps/latest/regions.json")
}

func TestGenerateBarePublishUsesEnvironment(t *testing.T) {
	t.Parallel()

	a, _, up := newTestApp(t, map[string]string{"DECA_MAP_BUCKET": "env-bucket", "DECA_MAP_PREFIX": "site/maps"})
	require.NoError(t, execute(a, "generate", "--publish", "--input", "testdata/states.json",
		"--output", filepath.Join(t.TempDir(), "regions.json")))

	require.Equal(t, "env-bucket", up.bucket)
	_, ok := up.objects["site/maps/latest/regions.json"]
	require.True(t, ok)
}

func TestGenerateBarePublishNeedsBucket(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "regions.json")
	preview := filepath.Join(dir, "preview.png")
	a, _, _ := newTestApp(t, nil)
	err := execute(a, "generate", "--publish", "--input", "testdata/states.json",
		"--output", out, "--preview", preview)
	require.ErrorContains(t, err, "DECA_MAP_BUCKET")
	require.NoFileExists(t, out)
	require.NoFileExists(t, preview)
}

func TestViewport(t *testing.T) {
	t.Parallel()

	a, stdout, _ := newTestApp(t, nil)
	require.NoError(t, execute(a, "viewport"))
	require.Equal(t, "0 0 975 610\n", stdout.String())
}

func TestInspect(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "regions.json")
	a, _, _ := newTestApp(t, nil)
	require.NoError(t, execute(a, "generate", "--input", "testdata/states.json", "--output", out))

	a, stdout, _ := newTestApp(t, nil)
	require.NoError(t, execute(a, "inspect", "--artifact", out))
	require.Contains(t, stdout.String(), "Texas")
	require.Contains(t, stdout.String(), "2 regions ok")
}

func TestInspectRejectsInvalidArtifact(t *testing.T) {
	t.Parallel()

	bad := filepath.Join(t.TempDir(), "regions.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"CA":{"abbr":"CA","name":"California","d":"","cx":1,"cy":1}}`), 0o600))

	a, _, _ := newTestApp(t, nil)
	require.ErrorIs(t, execute(a, "inspect", "--artifact", bad), artifact.ErrInvalidArtifact)
}
