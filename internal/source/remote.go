package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// NetworkError reports a failed retrieval: an unreachable host, a
// non-success status or an oversized body.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type FetchOptions struct {
	MaxBytes  int64
	UserAgent string
	MaxPixels int64 // 0 = DefaultMaxPixels, < 0 = без ограничения
}

// NewClient returns the HTTP client used for remote frames.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// Fetch downloads rawURL with a GET request. Nothing is retried.
func Fetch(ctx context.Context, client *http.Client, rawURL string, opts FetchOptions) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &NetworkError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	var body io.Reader = resp.Body
	if opts.MaxBytes > 0 {
		body = io.LimitReader(resp.Body, opts.MaxBytes+1)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}
	if opts.MaxBytes > 0 && int64(len(data)) > opts.MaxBytes {
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("body exceeds %d bytes", opts.MaxBytes)}
	}
	return data, nil
}

// RemoteSource скачивает и декодирует анимацию при создании.
type RemoteSource struct {
	*MemorySource
	URL string
}

func NewRemoteSource(ctx context.Context, client *http.Client, rawURL string, opts FetchOptions) (*RemoteSource, error) {
	data, err := Fetch(ctx, client, rawURL, opts)
	if err != nil {
		return nil, err
	}
	frames, err := DecodeFramesLimit(data, pixelLimit(opts.MaxPixels))
	if err != nil {
		return nil, err
	}
	return &RemoteSource{MemorySource: NewMemorySource(frames), URL: rawURL}, nil
}

func pixelLimit(n int64) int64 {
	if n == 0 {
		return DefaultMaxPixels
	}
	return n
}
