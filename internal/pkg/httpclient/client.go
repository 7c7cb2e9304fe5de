package httpclient

import (
	"time"

	"github.com/go-resty/resty/v2"
)

// Client wraps resty for HTTP requests to external APIs.
type Client struct {
	r *resty.Client
}

// New creates a new HTTP client with sensible defaults.
func New() *Client {
	r := resty.New().
		SetTimeout(30 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second)

	return &Client{r: r}
}

// WithTimeout sets a custom timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	c.r.SetTimeout(d)
	return c
}

// WithRetries overrides the retry policy.
func (c *Client) WithRetries(count int) *Client {
	c.r.SetRetryCount(count)
	return c
}

// WithHeader sets a custom header.
func (c *Client) WithHeader(key, value string) *Client {
	c.r.SetHeader(key, value)
	return c
}

// Get sends a GET request and returns the response body.
func (c *Client) Get(url string) ([]byte, error) {
	resp, err := c.r.R().Get(url)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Post sends a POST request with JSON body.
func (c *Client) Post(url string, body interface{}) ([]byte, error) {
	req := c.r.R().SetHeader("Content-Type", "application/json")
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Post(url)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

// Request returns a new resty Request for chaining.
func (c *Client) Request() *resty.Request {
	return c.r.R()
}
