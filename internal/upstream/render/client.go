package render

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var transport = &http.Transport{
	MaxIdleConns:        500,
	MaxIdleConnsPerHost: 100,
	IdleConnTimeout:     120 * time.Second,
}

// Client calls the upstream image renderer.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
	}
}

// Request is one render call. The renderer takes the prompt in the URL path
// and everything else as query parameters.
type Request struct {
	Prompt string
	Width  int
	Height int
	Seed   int
	NoLogo bool
	Model  string
}

// Result is a rendered image.
type Result struct {
	Body        []byte
	ContentType string
}

// Render fetches one image. Any transport error, timeout, or non-2xx status
// is returned as an error; the caller decides how to surface it.
func (c *Client) Render(req Request) (*Result, error) {
	q := url.Values{}
	q.Set("width", strconv.Itoa(req.Width))
	q.Set("height", strconv.Itoa(req.Height))
	q.Set("seed", strconv.Itoa(req.Seed))
	q.Set("nologo", strconv.FormatBool(req.NoLogo))
	q.Set("model", req.Model)

	apiURL := fmt.Sprintf("%s/prompt/%s?%s", c.baseURL, url.PathEscape(req.Prompt), q.Encode())

	resp, err := c.httpClient.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("renderer returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read render response: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}
	return &Result{Body: body, ContentType: contentType}, nil
}
