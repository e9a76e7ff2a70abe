package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/joho/godotenv"
	"github.com/nfnt/resize"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/prism-render/prism/pkg/log"
	"github.com/prism-render/prism/pkg/renderer"
	"github.com/prism-render/prism/pkg/scene"
)

const uploadTimeout = 30 * time.Second

// passSummary records the cumulative statistics at the end of one pass.
type passSummary struct {
	number  int
	stats   renderer.RenderStats
	elapsed time.Duration
}

// RenderScene renders a scene file to a PNG image.
func RenderScene(ctx *cli.Context) error {
	setupLogging(ctx)
	loadEnv()

	if ctx.NArg() != 1 {
		return errors.New("missing scene file argument")
	}

	sc, err := scene.Load(ctx.Args().First())
	if err != nil {
		return err
	}

	width := ctx.Int("width")
	if width == 0 {
		width = sc.Camera.Width
	}
	height := ctx.Int("height")
	if height == 0 {
		height = sc.Camera.Height
	}
	if width <= 0 || height <= 0 {
		return errors.New("scene specifies no image dimensions; pass --width and --height")
	}

	maxSamples := ctx.Int("spp")
	if maxSamples == 0 {
		maxSamples = sc.Camera.NumSamples
	}
	if maxSamples == 0 {
		maxSamples = renderer.DefaultSamplingConfig().SamplesPerPixel
	}

	config := renderer.ProgressiveConfig{
		TileSize:           ctx.Int("tile-size"),
		InitialSamples:     1,
		MaxSamplesPerPixel: maxSamples,
		MaxPasses:          ctx.Int("passes"),
		NumWorkers:         ctx.Int("workers"),
		Sampling: renderer.SamplingConfig{
			BounceLimit: ctx.Int("bounces"),
		},
	}

	logger.Noticef("rendering %s at %dx%d, %d samples per pixel",
		ctx.Args().First(), width, height, maxSamples)

	pr := renderer.NewProgressiveRaytracer(sc, width, height, config, log.ForRenderer(logger))

	start := time.Now()
	passChan, _, errChan := pr.RenderProgressive(context.Background(), renderer.RenderOptions{})

	var final *image.RGBA
	var passes []passSummary
	for result := range passChan {
		final = result.Image
		passes = append(passes, passSummary{
			number:  result.PassNumber,
			stats:   result.Stats,
			elapsed: time.Since(start),
		})
	}
	if err = <-errChan; err != nil {
		return err
	}
	if final == nil {
		return errors.New("rendering produced no image")
	}

	data, err := encodePNG(final)
	if err != nil {
		return err
	}

	outFile := ctx.String("out")
	if err = os.WriteFile(outFile, data, 0644); err != nil {
		return err
	}
	logger.Noticef("wrote %s (%d bytes)", outFile, len(data))

	if previewWidth := ctx.Int("preview-width"); previewWidth > 0 {
		if err = writePreview(final, previewWidth, outFile); err != nil {
			return err
		}
	}

	if bucket := ctx.String("s3-bucket"); bucket != "" {
		key := ctx.String("s3-key")
		if key == "" {
			key = filepath.Base(outFile)
		}
		if err = uploadToS3(context.Background(), bucket, key, data); err != nil {
			return err
		}
	}

	displayRenderStats(passes, time.Since(start))
	return nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// writePreview saves a Lanczos-downscaled copy next to the full image.
func writePreview(img image.Image, width int, outFile string) error {
	preview := resize.Resize(uint(width), 0, img, resize.Lanczos3)
	data, err := encodePNG(preview)
	if err != nil {
		return err
	}

	ext := filepath.Ext(outFile)
	previewFile := strings.TrimSuffix(outFile, ext) + "_preview" + ext
	if err = os.WriteFile(previewFile, data, 0644); err != nil {
		return err
	}
	logger.Noticef("wrote preview %s (%d bytes)", previewFile, len(data))
	return nil
}

// uploadToS3 publishes the rendered image to an S3-compatible bucket.
// Connection settings come from the environment so the same binary works
// against AWS and self-hosted endpoints.
func uploadToS3(ctx context.Context, bucket, key string, data []byte) error {
	s3Config := &aws.Config{
		Credentials:      credentials.NewStaticCredentials(os.Getenv("S3_ACCESS_KEY"), os.Getenv("S3_SECRET_KEY"), ""),
		Endpoint:         aws.String(os.Getenv("S3_ENDPOINT")),
		Region:           aws.String(os.Getenv("S3_REGION")),
		S3ForcePathStyle: aws.Bool(true),
	}
	sess, err := session.NewSession(s3Config)
	if err != nil {
		return fmt.Errorf("create s3 session: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	_, err = s3.New(sess).PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("image/png"),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}

	logger.Noticef("uploaded %s to bucket %s (%d bytes)", key, bucket, len(data))
	return nil
}

func displayRenderStats(passes []passSummary, total time.Duration) {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Pass", "Samples", "Avg / pixel", "Min", "Max", "Elapsed"})
	for _, pass := range passes {
		table.Append([]string{
			fmt.Sprintf("%d", pass.number),
			fmt.Sprintf("%d", pass.stats.TotalSamples),
			fmt.Sprintf("%.1f", pass.stats.AverageSamples),
			fmt.Sprintf("%d", pass.stats.MinSamples),
			fmt.Sprintf("%d", pass.stats.MaxSamplesUsed),
			pass.elapsed.Round(time.Millisecond).String(),
		})
	}
	table.SetFooter([]string{"", "", "", "", "TOTAL", total.Round(time.Millisecond).String()})

	table.Render()
	logger.Noticef("render statistics\n%s", buf.String())
}

// loadEnv picks up optional settings from a .env file in the project
// root. A missing file is not an error.
func loadEnv() {
	rootDir := os.Getenv("PRISM_ROOT_DIR")
	if rootDir == "" {
		rootDir = "."
	}
	_ = godotenv.Load(filepath.Join(rootDir, ".env"))
}
