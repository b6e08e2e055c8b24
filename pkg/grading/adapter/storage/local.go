// Package storage implements the captured-image archive on the local file
// system.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	config "github.com/gradeloop/gradeloop/pkg/grading/core/config"
	model "github.com/gradeloop/gradeloop/pkg/grading/core/domain/model"
	port "github.com/gradeloop/gradeloop/pkg/grading/core/port"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/exception"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

const moduleName = "storage"

// LocalArchive stores captured answer images under a base directory, one
// date directory per day.
type LocalArchive struct {
	baseDir string
}

// NewLocalArchive validates the base directory and creates it if missing.
func NewLocalArchive(baseDir string) (*LocalArchive, error) {
	if baseDir == "" {
		return nil, exception.NewGradingError(moduleName, "archive base directory must be specified", exception.KindUnknown, nil)
	}
	info, err := os.Stat(baseDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, exception.NewGradingError(moduleName, "failed to stat archive base directory", exception.KindUnknown, err)
		}
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			return nil, exception.NewGradingError(moduleName, "failed to create archive base directory", exception.KindUnknown, err)
		}
	} else if !info.IsDir() {
		return nil, exception.NewGradingError(moduleName, fmt.Sprintf("archive base path '%s' is not a directory", baseDir), exception.KindUnknown, nil)
	}
	return &LocalArchive{baseDir: baseDir}, nil
}

// Store writes the payload under <baseDir>/<capture date>/<workflowID>.<format>
// and returns the file path.
func (a *LocalArchive) Store(ctx context.Context, workflowID string, payload *model.ImagePayload) (string, error) {
	if payload == nil || len(payload.Data) == 0 {
		return "", exception.NewGradingError(moduleName, "no image payload to archive", exception.KindUnknown, nil)
	}

	ext := strings.ToLower(payload.Format)
	if ext == "" || ext == "unknown" {
		ext = "bin"
	}
	day := payload.CapturedAt.Format("2006-01-02")
	path, err := a.resolvePath(day, workflowID+"."+ext)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", exception.NewGradingError(moduleName, "failed to create archive directory", exception.KindUnknown, err)
	}
	if err := os.WriteFile(path, payload.Data, 0644); err != nil {
		return "", exception.NewGradingError(moduleName, "failed to write archived image", exception.KindUnknown, err)
	}
	logger.Debugf("LocalArchive: stored %d bytes at %s", len(payload.Data), path)
	return path, nil
}

// resolvePath joins the parts under the base directory and rejects paths
// that escape it.
func (a *LocalArchive) resolvePath(parts ...string) (string, error) {
	fullPath := filepath.Join(append([]string{a.baseDir}, parts...)...)

	absBase, err := filepath.Abs(a.baseDir)
	if err != nil {
		return "", exception.NewGradingError(moduleName, "failed to resolve archive base directory", exception.KindUnknown, err)
	}
	absFull, err := filepath.Abs(fullPath)
	if err != nil {
		return "", exception.NewGradingError(moduleName, "failed to resolve archive path", exception.KindUnknown, err)
	}
	if !strings.HasPrefix(absFull, absBase+string(os.PathSeparator)) {
		return "", exception.NewGradingError(moduleName, fmt.Sprintf("archive path '%s' escapes the base directory", fullPath), exception.KindUnknown, nil)
	}
	return fullPath, nil
}

// NewImageArchive builds the archive from the configuration. A disabled
// archive yields a nil capability; the workflow skips archiving entirely.
func NewImageArchive(cfg *config.Config) (port.ImageArchive, error) {
	archiveCfg := cfg.Gradeloop.Archive
	if !archiveCfg.Enabled {
		logger.Debugf("Image archive disabled.")
		return nil, nil
	}
	return NewLocalArchive(archiveCfg.BaseDir)
}

var _ port.ImageArchive = (*LocalArchive)(nil)
