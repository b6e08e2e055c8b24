// Package render implements the image renderer against an HTTP screenshot
// service that rasterizes a region of the host page.
package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const moduleName = "render"

// renderRequest is the JSON body sent to the screenshot service.
type renderRequest struct {
	Selector        string  `json:"selector"`
	X               int     `json:"x"`
	Y               int     `json:"y"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	Scale           float64 `json:"scale"`
	BackgroundColor string  `json:"background_color"`
}

// HTTPRenderer rasterizes an element through a screenshot service endpoint.
type HTTPRenderer struct {
	endpoint string
	client   *http.Client
}

// NewHTTPRenderer creates a new HTTPRenderer from the render configuration.
func NewHTTPRenderer(cfg *config.RenderConfig) *HTTPRenderer {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPRenderer{
		endpoint: cfg.Endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Render posts the element's bounds to the screenshot service and returns
// the raster bytes. Transport failures and service-side errors carry the
// network error kind so the workflow can retry them.
func (r *HTTPRenderer) Render(ctx context.Context, element model.PageElement, opts port.RenderOptions) ([]byte, error) {
	if element == nil {
		return nil, exception.NewGradingError(moduleName, "no element to render", exception.KindElementDetection, nil)
	}
	if r.endpoint == "" {
		return nil, exception.NewGradingError(moduleName, "render endpoint is not configured", exception.KindUnknown, nil)
	}

	x, y, width, height := element.Bounds()
	body := renderRequest{
		Selector:        element.Selector(),
		X:               x,
		Y:               y,
		Width:           width,
		Height:          height,
		Scale:           opts.Scale,
		BackgroundColor: opts.BackgroundColor,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to encode render request", exception.KindUnknown, err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to create render request", exception.KindUnknown, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "screenshot service call failed", exception.KindNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		message := fmt.Sprintf("screenshot service returned status %d", resp.StatusCode)
		kind := exception.KindUnknown
		if resp.StatusCode >= 500 {
			kind = exception.KindNetwork
		}
		return nil, exception.NewGradingError(moduleName, message, kind, errors.New(strings.TrimSpace(string(respBody))))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exception.NewGradingError(moduleName, "failed to read render response", exception.KindNetwork, err)
	}
	logger.Debugf("HTTPRenderer: rendered %s (%d bytes)", element.Selector(), len(data))
	return data, nil
}

var _ port.ImageRenderer = (*HTTPRenderer)(nil)
