package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ErrSourceUnavailable is returned when the static catalog cannot be fetched.
var ErrSourceUnavailable = errors.New("catalog source unavailable")

// Source returns the static recipe set in catalog order.
type Source interface {
	Fetch(ctx context.Context) ([]Recipe, error)
	Name() string
}

// FileSource reads {"recipes": [...]} from a local file.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "file:" + s.Path }

func (s FileSource) Fetch(ctx context.Context) ([]Recipe, error) {
	if s.Path == "" {
		return nil, fmt.Errorf("%w: no catalog path configured", ErrSourceUnavailable)
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return decodeSource(data)
}

// HTTPSource fetches the catalog document from a URL.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

// NewHTTPSource builds an HTTPSource with a bounded client timeout.
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	return &HTTPSource{URL: url, Client: &http.Client{Timeout: timeout}}
}

func (s *HTTPSource) Name() string { return "http:" + s.URL }

func (s *HTTPSource) Fetch(ctx context.Context) ([]Recipe, error) {
	if s.URL == "" {
		return nil, fmt.Errorf("%w: no catalog URL configured", ErrSourceUnavailable)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrSourceUnavailable, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return decodeSource(data)
}

// ObjectGetter is the part of blob.Store the catalog needs.
type ObjectGetter interface {
	GetObject(ctx context.Context, key string) ([]byte, error)
}

// BlobSource reads the catalog document from an object store.
type BlobSource struct {
	Store ObjectGetter
	Key   string
}

func (s BlobSource) Name() string { return "s3:" + s.Key }

func (s BlobSource) Fetch(ctx context.Context) ([]Recipe, error) {
	if s.Store == nil || s.Key == "" {
		return nil, fmt.Errorf("%w: object store not configured", ErrSourceUnavailable)
	}
	data, err := s.Store.GetObject(ctx, s.Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return decodeSource(data)
}

func decodeSource(data []byte) ([]Recipe, error) {
	recipes, err := DecodeRecipes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	return recipes, nil
}
