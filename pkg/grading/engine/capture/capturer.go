// Package capture turns a detected answer-area anchor into an image payload
// with a coarse quality estimate.
package capture

import (
	"bytes"
	"context"
	"image"
	"math"
	"time"

	_ "image/jpeg"
	_ "image/png"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	logger "github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const componentName = "capture"

// Fixed quality sub-scores used when the captured bytes cannot be decoded
// for real analysis.
const (
	defaultResolutionScore = 70.0
	defaultBrightnessScore = 75.0
	defaultContrastScore   = 65.0
)

// Capturer is the default ImageCapturer implementation. It delegates
// rasterization to an ImageRenderer and derives the quality estimate by
// decoding the returned bytes.
type Capturer struct {
	renderer port.ImageRenderer
	opts     port.RenderOptions
}

// NewCapturer creates a Capturer with render options taken from configuration.
func NewCapturer(renderer port.ImageRenderer, cfg *config.RenderConfig) *Capturer {
	return &Capturer{
		renderer: renderer,
		opts: port.RenderOptions{
			Scale:           cfg.Scale,
			BackgroundColor: cfg.BackgroundColor,
			Timeout:         time.Duration(cfg.TimeoutMs) * time.Millisecond,
		},
	}
}

// Capture renders the anchor's primary element and returns the payload with
// its quality estimate. A low quality score never fails the call; the caller
// decides whether to attach a warning.
func (c *Capturer) Capture(ctx context.Context, anchor model.DetectedElement) (*model.ImagePayload, error) {
	element := anchor.Primary()
	if element == nil {
		return nil, exception.NewGradingErrorf(componentName, exception.KindElementDetection,
			"anchor '%s' has no matched element to capture", anchor.AnchorType)
	}

	data, err := c.renderer.Render(ctx, element, c.opts)
	if err != nil {
		// The renderer tags its own errors; preserve the classification.
		return nil, exception.NewGradingError(componentName, "rendering the anchor failed", exception.KindOf(err), err)
	}
	if len(data) == 0 {
		return nil, exception.NewGradingErrorf(componentName, exception.KindUnknown,
			"renderer returned an empty image for anchor '%s'", anchor.AnchorType)
	}

	payload := &model.ImagePayload{
		Data:       data,
		CapturedAt: time.Now(),
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		// Undecodable bytes still flow downstream; quality falls back to the
		// fixed defaults.
		logger.Warnf("Captured image could not be decoded for quality analysis: %v", err)
		payload.Format = "unknown"
		payload.Quality = defaultQuality()
		return payload, nil
	}

	bounds := img.Bounds()
	payload.Format = format
	payload.Width = bounds.Dx()
	payload.Height = bounds.Dy()
	payload.Quality = analyzeQuality(img)

	logger.Debugf("Captured %s image %dx%d, quality %.1f.", format, payload.Width, payload.Height, payload.Quality.Score)
	return payload, nil
}

// defaultQuality returns the fixed quality estimate used when no real image
// analysis is possible.
func defaultQuality() model.ImageQuality {
	q := model.ImageQuality{
		Resolution: defaultResolutionScore,
		Brightness: defaultBrightnessScore,
		Contrast:   defaultContrastScore,
		Analyzed:   false,
	}
	q.Score = (q.Resolution + q.Brightness + q.Contrast) / 3
	return q
}

// analyzeQuality derives the 0-100 sub-scores from the decoded image:
// resolution from the pixel count, brightness from mean luma, contrast from
// luma standard deviation.
func analyzeQuality(img image.Image) model.ImageQuality {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return defaultQuality()
	}

	// Sample on a coarse grid to keep analysis cheap on large captures.
	stepX := width / 64
	if stepX < 1 {
		stepX = 1
	}
	stepY := height / 64
	if stepY < 1 {
		stepY = 1
	}

	var sum, sumSq float64
	var samples int
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma, normalized to [0,255].
			luma := (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
			sum += luma
			sumSq += luma * luma
			samples++
		}
	}

	mean := sum / float64(samples)
	variance := sumSq/float64(samples) - mean*mean
	if variance < 0 {
		variance = 0
	}
	stddev := math.Sqrt(variance)

	q := model.ImageQuality{
		Resolution: resolutionScore(width * height),
		// Brightness peaks at mid-gray; washed-out or dark captures score low.
		Brightness: clampScore(100 - math.Abs(mean-128)/128*100),
		// A stddev around 64 is ample contrast for handwriting on paper.
		Contrast: clampScore(stddev / 64 * 100),
		Analyzed: true,
	}
	q.Score = (q.Resolution + q.Brightness + q.Contrast) / 3
	return q
}

// resolutionScore maps the pixel count to a 0-100 sub-score.
func resolutionScore(pixels int) float64 {
	switch {
	case pixels >= 1920*1080:
		return 100
	case pixels >= 1280*720:
		return 85
	case pixels >= 640*480:
		return 70
	case pixels >= 320*240:
		return 50
	default:
		return 30
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

var _ port.ImageCapturer = (*Capturer)(nil)
