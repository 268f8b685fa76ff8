// Package relay fetches remote court documents and stages them on local
// disk so they can be served back to the caller as attachments.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/ledongthuc/pdf"

	"courtlookup/internal/config"
	"courtlookup/pkg/logger"
)

var (
	// ErrInvalidURL marks a document URL that is missing, relative, or
	// unparseable.
	ErrInvalidURL = errors.New("document URL must be absolute")
	// ErrHostNotAllowed marks a document URL whose host is not on the
	// configured allow-list.
	ErrHostNotAllowed = errors.New("document host not allowed")
	// ErrRemoteStatus marks a non-success response from the remote site.
	ErrRemoteStatus = errors.New("remote returned non-success status")
)

const fallbackFilename = "document.pdf"

// Download is one staged document. Cleanup must be called once the content
// has been served; it removes the temporary file.
type Download struct {
	Path     string
	Filename string
	Size     int64
}

// Cleanup removes the staged file. Safe to call when the file is already
// gone.
func (d *Download) Cleanup() {
	if d.Path != "" {
		os.Remove(d.Path)
	}
}

// Relay streams remote documents to temporary local files.
type Relay struct {
	client  *resty.Client
	logger  *logger.Logger
	dir     string
	allowed map[string]struct{}
}

// New creates a relay restricted to the configured document hosts.
func New(cfg *config.Config, logger *logger.Logger) *Relay {
	client := resty.New().
		SetTimeout(cfg.DownloadTimeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetDoNotParseResponse(true)

	allowed := make(map[string]struct{}, len(cfg.AllowedDocHosts))
	for _, h := range cfg.AllowedDocHosts {
		allowed[strings.ToLower(h)] = struct{}{}
	}

	return &Relay{
		client:  client,
		logger:  logger,
		dir:     cfg.DownloadDir,
		allowed: allowed,
	}
}

// Fetch downloads the document at rawURL into a temporary file and returns
// its location and attachment filename. The caller owns the returned
// Download and must Cleanup after serving it.
func (r *Relay) Fetch(ctx context.Context, rawURL string) (*Download, error) {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	if _, ok := r.allowed[strings.ToLower(u.Hostname())]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}

	res, err := r.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	body := res.RawBody()
	defer body.Close()

	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrRemoteStatus, res.Status())
	}

	filename := path.Base(u.Path)
	if filename == "" || filename == "." || filename == "/" {
		filename = fallbackFilename
	}

	tmp, err := os.CreateTemp(r.dir, "relay-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}

	size, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("failed to stage document: %w", err)
	}

	dl := &Download{
		Path:     tmp.Name(),
		Filename: filename,
		Size:     size,
	}

	r.probePDF(dl)

	r.logger.Info("Document staged",
		"url", rawURL,
		"filename", dl.Filename,
		"size", size,
	)
	return dl, nil
}

// probePDF tries to read the staged file as a PDF and logs its page count.
// Non-PDF or corrupt content only logs; the relay serves bytes as-is.
func (r *Relay) probePDF(dl *Download) {
	f, reader, err := pdf.Open(dl.Path)
	if err != nil {
		r.logger.Debug("Staged document is not a readable PDF", "filename", dl.Filename, "error", err)
		return
	}
	defer f.Close()

	r.logger.Debug("Staged PDF", "filename", dl.Filename, "pages", reader.NumPage())
}
