package sink

import (
	"bytes"
	"fmt"
	"net/http"
	"time"
)

// HttpSink is the webhook mirror: every persisted line is sent as the body of
// its own request, and a 4xx or 5xx reply counts as a failed write.
type HttpSink struct {
	url         string
	method      string
	contentType string
	client      *http.Client
}

// NewHttpSink creates a new HttpSink. Empty method and contentType default to
// POST and text/plain.
func NewHttpSink(url, method, contentType string, timeout time.Duration) *HttpSink {
	if method == "" {
		method = http.MethodPost
	}
	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	return &HttpSink{
		url:         url,
		method:      method,
		contentType: contentType,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (s *HttpSink) Write(data []byte) error {
	req, err := http.NewRequest(s.method, s.url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", s.contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("http sink received status code: %d", resp.StatusCode)
	}

	return nil
}

func (s *HttpSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
