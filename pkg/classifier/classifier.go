// Package classifier provides an HTTP client for the external document
// classification service. It relays file bytes or extracted text and parses
// the service's JSON answer into a Result.
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/JaimeStill/attest/pkg/formatting"
)

// maxResponseBytes bounds how much of a classifier response is read.
const maxResponseBytes = 1 << 20

// Client submits documents to the classification service.
type Client struct {
	http      *http.Client
	url       string
	textURL   string
	fieldName string
	timeout   time.Duration
	validate  *validator.Validate
	logger    *slog.Logger
}

// New creates a Client from a finalized Config.
func New(cfg *Config, logger *slog.Logger) *Client {
	return &Client{
		http:      &http.Client{},
		url:       cfg.URL,
		textURL:   cfg.TextURL,
		fieldName: cfg.FieldName,
		timeout:   cfg.TimeoutDuration(),
		validate:  validator.New(),
		logger:    logger.With("system", "classifier"),
	}
}

// URL returns the file classification endpoint.
func (c *Client) URL() string {
	return c.url
}

// SupportsText reports whether a text classification endpoint is configured.
func (c *Client) SupportsText() bool {
	return c.textURL != ""
}

// Classify uploads doc as multipart form data and parses the classification.
func (c *Client) Classify(ctx context.Context, doc Document) (*Result, error) {
	body, contentType, err := encodeMultipart(c.fieldName, doc)
	if err != nil {
		return nil, fmt.Errorf("encode multipart: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	return c.do(req)
}

// ClassifyText submits already-extracted text as {"text": ...}.
func (c *Client) ClassifyText(ctx context.Context, text string) (*Result, error) {
	if c.textURL == "" {
		return nil, ErrTextUnsupported
	}

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("encode text payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.textURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	result, err := c.do(req)
	if err != nil {
		return nil, err
	}

	if result.ExtractedText == "" {
		result.ExtractedText = text
	}
	return result, nil
}

func (c *Client) do(req *http.Request) (*Result, error) {
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrUnavailable, err)
	}

	c.logger.Debug(
		"classifier responded",
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RejectedError{
			StatusCode: resp.StatusCode,
			Body:       string(truncate(data, maxResponseBytes)),
		}
	}

	if len(data) > maxResponseBytes {
		return nil, fmt.Errorf("%w: response exceeds %d bytes", ErrProtocol, maxResponseBytes)
	}

	parsed, err := formatting.Parse[response](string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	return parsed.toResult(c.validate)
}

func encodeMultipart(field string, doc Document) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     field,
		"filename": doc.Filename,
	}))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

func truncate(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
