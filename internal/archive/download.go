package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrDownloadStatus is returned when the server answers with a non-2xx status.
var ErrDownloadStatus = errors.New("download failed")

const chunkSize = 32 * 1024

// Download fetches url and streams the body to w. progress may be nil.
// It returns the number of bytes written.
func Download(ctx context.Context, client *http.Client, url string, w io.Writer, progress func(written, total int64)) (int64, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return 0, err
	}
	res, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer res.Body.Close()
	if res.StatusCode/100 != 2 {
		return 0, fmt.Errorf("%w: %s returned status %d", ErrDownloadStatus, url, res.StatusCode)
	}

	var written int64
	for {
		n, err := io.CopyN(w, res.Body, chunkSize)
		written += n
		if progress != nil && n > 0 {
			progress(written, res.ContentLength)
		}
		if errors.Is(err, io.EOF) {
			if progress != nil && written > 0 && res.ContentLength != written {
				progress(written, written)
			}
			break
		}
		if err != nil {
			return written, fmt.Errorf("read %s: %w", url, err)
		}
	}
	return written, nil
}
