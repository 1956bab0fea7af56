package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/natefinch/atomic"
	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/agencybankai-hash/deca-website-sub001/internal/artifact"
	"github.com/agencybankai-hash/deca-website-sub001/internal/pathgen"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/config"
	"github.com/agencybankai-hash/deca-website-sub001/internal/platform/storage"
	"github.com/agencybankai-hash/deca-website-sub001/internal/statemap"
)

// publishFromEnv is what a bare --publish resolves to: the bucket and
// prefix from DECA_MAP_BUCKET and DECA_MAP_PREFIX.
const publishFromEnv = "env"

const maxAnchorPrecision = 6

type generateOptions struct {
	input           string
	output          string
	object          string
	anchorPrecision int
	preview         string
	publish         string
}

func (a *app) generateCmd() *cobra.Command {
	opts := generateOptions{}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate regions.json from a projected TopoJSON atlas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runGenerate(cmd, opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.input, "input", "", "projected TopoJSON atlas")
	f.StringVar(&opts.output, "output", "", "artifact path to write")
	f.StringVar(&opts.object, "object", pathgen.DefaultObject, "topology object holding state geometries")
	f.IntVar(&opts.anchorPrecision, "anchor-precision", pathgen.DefaultAnchorPrecision, "decimals kept for label anchors")
	f.StringVar(&opts.preview, "preview", "", "also write a PNG preview to this path")
	f.StringVar(&opts.publish, "publish", "", "upload as --publish=gs://bucket/prefix; bare --publish uses DECA_MAP_BUCKET")
	f.Lookup("publish").NoOptDefVal = publishFromEnv
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, opts generateOptions) error {
	ctx := cmd.Context()
	if opts.anchorPrecision < 0 || opts.anchorPrecision > maxAnchorPrecision {
		return fmt.Errorf("--anchor-precision must be between 0 and %d", maxAnchorPrecision)
	}

	// Resolve the upload target first so a bad --publish leaves no output.
	var target *publishTarget
	if opts.publish != "" {
		t, err := a.resolvePublish(cmd, opts.publish)
		if err != nil {
			return err
		}
		target = &t
	}

	runID := ulid.Make().String()
	logger := a.logger.With(zap.String("run_id", runID))
	started := time.Now()

	gen, err := pathgen.New(
		pathgen.WithObject(opts.object),
		pathgen.WithAnchorPrecision(opts.anchorPrecision),
		pathgen.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	report, err := gen.GenerateFile(ctx, opts.input, opts.output)
	if err != nil {
		logger.Error("generation failed", zap.String("input", opts.input), zap.Error(err))
		return err
	}
	logger.Info("artifact written",
		zap.String("input", opts.input),
		zap.String("output", opts.output),
		zap.Int("features", report.Features),
		zap.Int("emitted", report.Emitted),
		zap.Int("merged", report.Merged),
		zap.Any("skipped", report.Skipped),
		zap.String("viewbox", artifact.ViewBox()),
		zap.Duration("elapsed", time.Since(started)),
	)
	fmt.Fprintf(a.stdout, "run %s: wrote %d regions to %s (viewBox %q)\n", runID, report.Emitted, opts.output, artifact.ViewBox())

	files := []storage.File{}
	if target != nil {
		body, err := os.ReadFile(opts.output)
		if err != nil {
			return fmt.Errorf("read artifact: %w", err)
		}
		files = append(files, storage.File{Purpose: storage.PurposeArtifact, ContentType: "application/json", Body: body})
	}

	if opts.preview != "" {
		png, err := renderPreview(opts.output)
		if err != nil {
			return err
		}
		if err := atomic.WriteFile(opts.preview, bytes.NewReader(png)); err != nil {
			return fmt.Errorf("write preview %s: %w", opts.preview, err)
		}
		logger.Info("preview written", zap.String("path", opts.preview), zap.Int("bytes", len(png)))
		files = append(files, storage.File{Purpose: storage.PurposePreview, ContentType: "image/png", Body: png})
	}

	if target == nil {
		return nil
	}
	return a.publish(cmd, logger, runID, *target, files)
}

// renderPreview rasterizes the artifact just written, in idle colors.
func renderPreview(artifactPath string) ([]byte, error) {
	table, err := statemap.LoadTable(artifactPath)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := statemap.New(table, statemap.Config{}).RenderPNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type publishTarget struct {
	cfg    config.Config
	bucket string
	prefix string
}

// resolvePublish turns the --publish value into a bucket and prefix,
// reading DECA_MAP_BUCKET and DECA_MAP_PREFIX for the bare form.
func (a *app) resolvePublish(cmd *cobra.Command, value string) (publishTarget, error) {
	cfg, err := a.loadConfig(cmd.Context())
	if err != nil {
		return publishTarget{}, err
	}
	t := publishTarget{cfg: cfg}
	if value == publishFromEnv {
		t.bucket, t.prefix = cfg.Publish.Bucket, cfg.Publish.Prefix
		if t.bucket == "" {
			return publishTarget{}, errors.New("--publish without a URL needs DECA_MAP_BUCKET")
		}
		return t, nil
	}
	if t.bucket, t.prefix, err = storage.ParseURL(value); err != nil {
		return publishTarget{}, err
	}
	return t, nil
}

func (a *app) publish(cmd *cobra.Command, logger *zap.Logger, runID string, target publishTarget, files []storage.File) error {
	ctx := cmd.Context()
	cfg, bucket, prefix := target.cfg, target.bucket, target.prefix

	uploader, closeFn, err := a.newUploader(ctx, cfg.Publish.CredentialsFile)
	if err != nil {
		return err
	}
	defer func() {
		if closeFn != nil {
			_ = closeFn()
		}
	}()

	publisher, err := storage.NewPublisher(uploader, bucket, prefix,
		storage.WithCacheControl(cfg.Publish.CacheControl),
		storage.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	published, err := publisher.Publish(ctx, runID, files...)
	if err != nil {
		logger.Error("publish failed", zap.String("bucket", bucket), zap.Error(err))
		return err
	}
	for _, p := range published {
		fmt.Fprintf(a.stdout, "published %s\n", p.URL)
	}
	return nil
}
