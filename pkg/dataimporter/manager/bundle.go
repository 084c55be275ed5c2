package manager

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

// Bundle is an opened feed. Close releases the archive and any downloaded file.
type Bundle struct {
	FS fs.FS

	closers []func() error
}

func (b *Bundle) Close() error {
	var firstErr error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// OpenFeed exposes a feed source as a file system. Directories are used as
// is, zip archives are opened in place and URLs are downloaded first.
func OpenFeed(ctx context.Context, source string) (*Bundle, error) {
	bundle := &Bundle{}

	if isValidUrl(source) {
		tempFile, err := downloadFile(ctx, source)
		if err != nil {
			return nil, err
		}
		bundle.closers = append(bundle.closers, func() error {
			return os.Remove(tempFile)
		})
		source = tempFile
	}

	fileInfo, err := os.Stat(source)
	if err != nil {
		bundle.Close()
		return nil, err
	}

	if fileInfo.IsDir() {
		bundle.FS = os.DirFS(source)
		return bundle, nil
	}

	archive, err := zip.OpenReader(source)
	if err != nil {
		bundle.Close()
		return nil, fmt.Errorf("opening feed archive %s: %w", source, err)
	}
	bundle.closers = append(bundle.closers, archive.Close)
	bundle.FS = archive

	return bundle, nil
}

func isValidUrl(toTest string) bool {
	if !strings.HasPrefix(toTest, "http://") && !strings.HasPrefix(toTest, "https://") {
		return false
	}

	u, err := url.Parse(toTest)
	return err == nil && u.Host != ""
}

// downloadFile fetches source into a temporary file, retrying with
// exponential backoff on network errors and 5xx responses.
func downloadFile(ctx context.Context, source string) (string, error) {
	tmpFile, err := os.CreateTemp(os.TempDir(), "itinerary-feed-*.zip")
	if err != nil {
		return "", err
	}
	defer tmpFile.Close()

	retryBackoff := backoff.NewExponentialBackOff()
	retryBackoff.MaxElapsedTime = 5 * time.Minute

	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", "curl/7.54.1")

		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return fmt.Errorf("downloading %s: status %d", source, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("downloading %s: status %d", source, resp.StatusCode))
		}

		if _, err := tmpFile.Seek(0, io.SeekStart); err != nil {
			return backoff.Permanent(err)
		}
		if err := tmpFile.Truncate(0); err != nil {
			return backoff.Permanent(err)
		}

		_, err = io.Copy(tmpFile, resp.Body)
		return err
	}

	notify := func(err error, wait time.Duration) {
		log.Warn().Err(err).Str("source", source).Str("retry_in", wait.String()).Msg("Feed download failed")
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(retryBackoff, ctx), notify); err != nil {
		os.Remove(tmpFile.Name())
		return "", err
	}

	log.Info().Str("source", source).Str("file", tmpFile.Name()).Msg("Downloaded feed")

	return tmpFile.Name(), nil
}
