package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "embed"

	"github.com/gradeloop/gradeloop/pkg/grading/app"
	"github.com/gradeloop/gradeloop/pkg/grading/support/util/logger"
)

// embeddedConfig embeds the content of the application's YAML configuration
// file, loaded at startup.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// main manages startup, signal handling and the execution of the Fx container.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Signal handling for graceful shutdown (e.g., Ctrl+C)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Attempting to stop the workflow...", sig)
		cancel()
	}()

	// Get the path to the .env file from environment variables. Use ".env" as default if not set.
	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	pagePath := os.Getenv("GRADELOOP_PAGE")
	if pagePath == "" {
		pagePath = "page.html"
	}
	requestPath := os.Getenv("GRADELOOP_REQUEST")
	if requestPath == "" {
		requestPath = "request.yaml"
	}

	app.RunApplication(ctx, envFilePath, embeddedConfig, pagePath, requestPath)
	os.Exit(0)
}
