package s0_data

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/wonny/aegis-factor/internal/contracts"
	"github.com/wonny/aegis-factor/pkg/logger"
)

// Downloader fetches a URL into a local file
type Downloader interface {
	Download(ctx context.Context, url, path string) (int64, error)
}

// RemoteLoader downloads a dataset once into cacheDir and then loads the
// local copy with the loader its extension selects
type RemoteLoader struct {
	url        string
	cacheDir   string
	fields     []string
	downloader Downloader
	logger     *logger.Logger
}

// IsRemote reports whether path is an http(s) URL
func IsRemote(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// NewRemoteLoader creates a loader for a dataset served over HTTP
func NewRemoteLoader(rawURL, cacheDir string, fields []string, downloader Downloader, log *logger.Logger) *RemoteLoader {
	return &RemoteLoader{
		url:        rawURL,
		cacheDir:   cacheDir,
		fields:     fields,
		downloader: downloader,
		logger:     log,
	}
}

// Load downloads the dataset unless a cached copy exists, then decodes it
func (l *RemoteLoader) Load(ctx context.Context) (*contracts.Dataset, error) {
	local, err := l.LocalPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(local); err == nil {
		l.logger.WithField("path", local).Info("Using cached dataset")
	} else {
		if _, err := l.downloader.Download(ctx, l.url, local); err != nil {
			return nil, fmt.Errorf("download dataset: %w", err)
		}
	}

	ds, err := NewLoader(local, l.fields, l.logger).Load(ctx)
	if err != nil {
		return nil, err
	}
	ds.Source = l.url
	return ds, nil
}

// LocalPath is where the downloaded copy is kept
func (l *RemoteLoader) LocalPath() (string, error) {
	u, err := url.Parse(l.url)
	if err != nil {
		return "", fmt.Errorf("invalid dataset url %q: %w", l.url, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		return "", fmt.Errorf("dataset url %q has no file name", l.url)
	}
	return filepath.Join(l.cacheDir, name), nil
}
