package capture_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/engine/capture"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockElement struct{}

func (m *MockElement) Selector() string                  { return "#answer" }
func (m *MockElement) Attr(name string) (string, bool)   { return "", false }
func (m *MockElement) Text() string                      { return "" }
func (m *MockElement) Visible() bool                     { return true }
func (m *MockElement) InViewport() bool                  { return true }
func (m *MockElement) Bounds() (x, y, width, height int) { return 0, 0, 640, 480 }

type MockRenderer struct {
	data     []byte
	err      error
	lastOpts port.RenderOptions
}

func (m *MockRenderer) Render(ctx context.Context, element model.PageElement, opts port.RenderOptions) ([]byte, error) {
	m.lastOpts = opts
	return m.data, m.err
}

func renderConfig() *config.RenderConfig {
	return &config.RenderConfig{Scale: 2.0, BackgroundColor: "#ffffff", TimeoutMs: 10000}
}

// checkerboardPNG encodes a small image with alternating black/white pixels,
// giving high contrast and mid brightness.
func checkerboardPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x+y)%2 == 0 {
				img.Set(x, y, color.White)
			} else {
				img.Set(x, y, color.Black)
			}
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func anchorWithElement() model.DetectedElement {
	return model.DetectedElement{
		AnchorType: model.AnchorAnswerArea,
		Confidence: 0.9,
		MatchCount: 1,
		Elements:   []model.PageElement{&MockElement{}},
	}
}

func TestCapture_DecodesImageAndAnalyzesQuality(t *testing.T) {
	renderer := &MockRenderer{data: checkerboardPNG(t, 640, 480)}
	capturer := capture.NewCapturer(renderer, renderConfig())

	payload, err := capturer.Capture(context.Background(), anchorWithElement())
	require.NoError(t, err)

	assert.Equal(t, "png", payload.Format)
	assert.Equal(t, 640, payload.Width)
	assert.Equal(t, 480, payload.Height)
	assert.True(t, payload.Quality.Analyzed)
	assert.GreaterOrEqual(t, payload.Quality.Score, 0.0)
	assert.LessOrEqual(t, payload.Quality.Score, 100.0)
	// Checkerboard contrast saturates the contrast sub-score.
	assert.Greater(t, payload.Quality.Contrast, 90.0)
	// Render options flow through from configuration.
	assert.Equal(t, 2.0, renderer.lastOpts.Scale)
	assert.Equal(t, "#ffffff", renderer.lastOpts.BackgroundColor)
}

func TestCapture_UndecodableBytesFallBackToDefaultQuality(t *testing.T) {
	renderer := &MockRenderer{data: []byte("not an image")}
	capturer := capture.NewCapturer(renderer, renderConfig())

	payload, err := capturer.Capture(context.Background(), anchorWithElement())
	require.NoError(t, err)

	assert.Equal(t, "unknown", payload.Format)
	assert.False(t, payload.Quality.Analyzed)
	assert.InDelta(t, 70.0, payload.Quality.Score, 0.1)
}

func TestCapture_RendererErrorPreservesKind(t *testing.T) {
	cause := exception.NewGradingError("render", "service timeout", exception.KindNetwork, errors.New("deadline exceeded"))
	renderer := &MockRenderer{err: cause}
	capturer := capture.NewCapturer(renderer, renderConfig())

	_, err := capturer.Capture(context.Background(), anchorWithElement())
	require.Error(t, err)
	assert.Equal(t, exception.KindNetwork, exception.KindOf(err))
}

func TestCapture_AnchorWithoutElementFails(t *testing.T) {
	capturer := capture.NewCapturer(&MockRenderer{}, renderConfig())

	_, err := capturer.Capture(context.Background(), model.DetectedElement{AnchorType: model.AnchorAnswerArea})
	require.Error(t, err)
	assert.Equal(t, exception.KindElementDetection, exception.KindOf(err))
}

func TestCapture_EmptyRenderFails(t *testing.T) {
	capturer := capture.NewCapturer(&MockRenderer{data: nil}, renderConfig())

	_, err := capturer.Capture(context.Background(), anchorWithElement())
	require.Error(t, err)
	assert.Equal(t, exception.KindUnknown, exception.KindOf(err))
}
