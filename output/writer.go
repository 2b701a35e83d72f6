package output

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"httpls/logging"
)

// Writer records a mirror run: a manifest of downloaded files and a list of
// failures, both under the output directory, buffered and thread-safe.
type Writer struct {
	manifestFile   *os.File
	failuresFile   *os.File
	manifestWriter *bufio.Writer
	failuresWriter *bufio.Writer
	mu             sync.Mutex
	logger         *logging.Logger
}

// NewWriter creates a new run writer under outputDir
func NewWriter(outputDir string, logger *logging.Logger) (*Writer, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manifestPath := filepath.Join(outputDir, "manifest.txt")
	manifestFile, err := os.Create(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create manifest file: %w", err)
	}

	failuresPath := filepath.Join(outputDir, "failures.txt")
	failuresFile, err := os.Create(failuresPath)
	if err != nil {
		manifestFile.Close()
		return nil, fmt.Errorf("failed to create failures file: %w", err)
	}

	logger.Debug("Run files created: %s and %s", manifestPath, failuresPath)

	const bufferSize = 64 * 1024

	return &Writer{
		manifestFile:   manifestFile,
		failuresFile:   failuresFile,
		manifestWriter: bufio.NewWriterSize(manifestFile, bufferSize),
		failuresWriter: bufio.NewWriterSize(failuresFile, bufferSize),
		logger:         logger,
	}, nil
}

// WriteManifest records one successfully mirrored file
func (w *Writer) WriteManifest(relPath string, size int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.manifestWriter, "%s\t%d\n", relPath, size); err != nil {
		w.logger.Error("Failed to write manifest line: %v", err)
		return err
	}
	return nil
}

// WriteFailure records one failed download
func (w *Writer) WriteFailure(fileURL string, cause error) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := fmt.Fprintf(w.failuresWriter, "%s\t%v\n", fileURL, cause); err != nil {
		w.logger.Error("Failed to write failure line: %v", err)
		return err
	}
	return nil
}

// Close flushes buffers and closes both run files
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	var firstErr error

	if w.manifestWriter != nil {
		if err := w.manifestWriter.Flush(); err != nil {
			w.logger.Error("Failed to flush manifest buffer: %v", err)
			firstErr = err
		}
		w.manifestWriter = nil
	}
	if w.failuresWriter != nil {
		if err := w.failuresWriter.Flush(); err != nil {
			w.logger.Error("Failed to flush failures buffer: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
		w.failuresWriter = nil
	}

	if w.manifestFile != nil {
		if err := w.manifestFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.manifestFile = nil
	}
	if w.failuresFile != nil {
		if err := w.failuresFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		w.failuresFile = nil
	}

	return firstErr
}
