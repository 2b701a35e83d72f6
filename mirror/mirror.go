// Package mirror downloads a remote listing tree into a local directory.
// Directories are walked first to collect file jobs, then the files are
// fetched by a pool of workers.
package mirror

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"httpls/config"
	"httpls/fetch"
	"httpls/filter"
	"httpls/listing"
	"httpls/logging"
	"httpls/output"
)

// Job is one file scheduled for download
type Job struct {
	URL     string
	RelPath string
	Entry   listing.FileEntry
}

// Stats tracks statistics during a mirror run
type Stats struct {
	dirsVisited     int
	filesFound      int
	filesDownloaded int
	filesSkipped    int
	filesFiltered   int
	bytesDownloaded int64
	writeErrors     int
	mu              sync.Mutex
}

// Mirror coordinates walking a listing tree and downloading its files
type Mirror struct {
	client         *fetch.Client
	filter         *filter.Filter
	writer         *output.Writer
	logger         *logging.Logger
	config         *config.Config
	stats          *Stats
	visited        map[string]bool
	processedCount int64
}

// New creates a mirror runner
func New(
	client *fetch.Client,
	fileFilter *filter.Filter,
	writer *output.Writer,
	logger *logging.Logger,
	cfg *config.Config,
) *Mirror {
	return &Mirror{
		client:  client,
		filter:  fileFilter,
		writer:  writer,
		logger:  logger,
		config:  cfg,
		stats:   &Stats{},
		visited: make(map[string]bool),
	}
}

// Run mirrors the tree rooted at rootURL into the output directory
func (m *Mirror) Run(ctx context.Context, rootURL string) error {
	root, err := url.Parse(rootURL)
	if err != nil {
		return fmt.Errorf("invalid root URL: %w", err)
	}
	if root.Path == "" || root.Path[len(root.Path)-1] != '/' {
		root.Path += "/"
	}

	m.logger.Info("Collecting files from %s (max depth %d)", root, m.config.MaxDepth)
	jobs := m.collect(ctx, root, "", 1)
	m.logger.Info("Collected %d files to download", len(jobs))

	jobChan := make(chan Job, len(jobs))
	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	var wg sync.WaitGroup
	for i := 0; i < m.config.MaxConcurrentRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for job := range jobChan {
				if ctx.Err() != nil {
					return
				}
				m.downloadFile(ctx, job)
			}
		}()
	}
	wg.Wait()

	m.logger.Info("Finished mirroring %s", root)
	return ctx.Err()
}

// collect walks a directory listing and gathers download jobs. Directories
// are followed up to the configured depth; per-directory and total file
// limits cut the walk short.
func (m *Mirror) collect(ctx context.Context, dirURL *url.URL, relDir string, depth int) []Job {
	if ctx.Err() != nil {
		return nil
	}

	key := dirURL.String()
	if m.visited[key] {
		m.logger.Debug("Skipping already visited directory: %s", key)
		return nil
	}
	m.visited[key] = true

	_, _, entries, err := m.client.FetchListing(ctx, key)
	if err != nil {
		m.logger.Error("Failed to list %s: %v", key, err)
		if werr := m.writer.WriteFailure(key, err); werr != nil {
			m.addWriteError()
		}
		return nil
	}

	m.stats.mu.Lock()
	m.stats.dirsVisited++
	m.stats.mu.Unlock()

	if m.config.MaxEntriesPerDir > 0 && len(entries) > m.config.MaxEntriesPerDir {
		m.logger.Warn("Directory %s has %d entries, keeping first %d", key, len(entries), m.config.MaxEntriesPerDir)
		entries = entries[:m.config.MaxEntriesPerDir]
	}

	var jobs []Job
	for _, e := range entries {
		if e.IsDir() {
			if depth >= m.config.MaxDepth {
				m.logger.Debug("Depth limit reached, not descending into %s", e.Name)
				continue
			}
			sub := dirURL.JoinPath(e.Name)
			if sub.Path == "" || sub.Path[len(sub.Path)-1] != '/' {
				sub.Path += "/"
			}
			jobs = append(jobs, m.collect(ctx, sub, joinRel(relDir, e.Name), depth+1)...)
			continue
		}

		m.stats.mu.Lock()
		m.stats.filesFound++
		total := m.stats.filesFound
		m.stats.mu.Unlock()

		if m.config.MaxTotalFiles > 0 && total > m.config.MaxTotalFiles {
			m.logger.Warn("File limit %d reached, stopping collection", m.config.MaxTotalFiles)
			return jobs
		}

		rel := joinRel(relDir, e.Name)
		if !m.filter.Match(rel) {
			m.logger.Debug("Entry filtered out: %s", rel)
			m.stats.mu.Lock()
			m.stats.filesFiltered++
			m.stats.mu.Unlock()
			continue
		}

		jobs = append(jobs, Job{
			URL:     dirURL.JoinPath(e.Name).String(),
			RelPath: rel,
			Entry:   e,
		})
	}
	return jobs
}

// downloadFile fetches one file into the output tree
func (m *Mirror) downloadFile(ctx context.Context, job Job) {
	count := atomic.AddInt64(&m.processedCount, 1)
	if count%25 == 0 {
		m.logger.Info("Progress: %d files processed", count)
	}

	destPath := filepath.Join(m.config.OutputDir, "files", filepath.FromSlash(job.RelPath))

	// skip files already mirrored at the same size
	if fi, err := os.Stat(destPath); err == nil {
		if job.Entry.HasSize() && fi.Size() == job.Entry.Size {
			m.logger.Debug("Skipping existing file: %s", job.RelPath)
			m.stats.mu.Lock()
			m.stats.filesSkipped++
			m.stats.mu.Unlock()
			return
		}
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		m.logger.Error("Failed to create directory for %s: %v", job.RelPath, err)
		m.recordFailure(job.URL, err)
		return
	}

	file, err := os.Create(destPath)
	if err != nil {
		m.logger.Error("Failed to create %s: %v", destPath, err)
		m.recordFailure(job.URL, err)
		return
	}

	n, err := m.client.Download(ctx, job.URL, file)
	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		m.logger.Error("Failed to download %s: %v", job.URL, err)
		os.Remove(destPath)
		m.recordFailure(job.URL, err)
		return
	}

	if m.config.PreserveModTime && job.Entry.HasModified() {
		if err := os.Chtimes(destPath, time.Now(), job.Entry.Modified); err != nil {
			m.logger.Warn("Failed to set mtime on %s: %v", destPath, err)
		}
	}

	m.logger.Debug("Downloaded %s (%d bytes)", job.RelPath, n)

	m.stats.mu.Lock()
	m.stats.filesDownloaded++
	m.stats.bytesDownloaded += n
	m.stats.mu.Unlock()

	if err := m.writer.WriteManifest(job.RelPath, n); err != nil {
		m.addWriteError()
	}
}

// recordFailure writes one failed URL to the failures file
func (m *Mirror) recordFailure(fileURL string, cause error) {
	if err := m.writer.WriteFailure(fileURL, cause); err != nil {
		m.addWriteError()
	}
}

func (m *Mirror) addWriteError() {
	m.stats.mu.Lock()
	m.stats.writeErrors++
	m.stats.mu.Unlock()
}

// GetStats returns the current mirror statistics
func (m *Mirror) GetStats() (int, int, int, int, int, int64, int) {
	m.stats.mu.Lock()
	defer m.stats.mu.Unlock()
	return m.stats.dirsVisited, m.stats.filesFound, m.stats.filesDownloaded,
		m.stats.filesSkipped, m.stats.filesFiltered, m.stats.bytesDownloaded, m.stats.writeErrors
}

// joinRel joins slash-separated relative paths, trimming a directory marker
func joinRel(dir, name string) string {
	for len(name) > 0 && name[len(name)-1] == '/' {
		name = name[:len(name)-1]
	}
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
