package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

// Multipart field names expected by the analysis service.
const (
	FieldSyllabus  = "syllabus"
	FieldQuestions = "questions"
	FieldThreshold = "threshold"
)

const (
	// maxResponseBytes bounds the response body; the confusion matrix is
	// the bulk of it.
	maxResponseBytes = 64 << 20

	// maxErrorBody is how much of a non-2xx body is kept for diagnostics.
	maxErrorBody = 512
)

// Options configures an HTTPValidator.
type Options struct {
	BaseURL         string
	Endpoint        string
	Timeout         time.Duration
	ContentType     string
	WithCredentials bool

	// Transport overrides the HTTP transport. Default: http.DefaultTransport.
	Transport http.RoundTripper
}

// HTTPValidator talks to the analysis service over HTTP.
type HTTPValidator struct {
	url     string
	http    *http.Client
	headers http.Header
}

var _ Validator = (*HTTPValidator)(nil)

// NewHTTPValidator creates a preconfigured HTTPValidator.
func NewHTTPValidator(opts Options) (*HTTPValidator, error) {
	target, err := endpointURL(opts.BaseURL, opts.Endpoint)
	if err != nil {
		return nil, err
	}

	hc := &http.Client{
		Timeout:   opts.Timeout,
		Transport: opts.Transport,
	}
	if opts.WithCredentials {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		hc.Jar = jar
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	if opts.ContentType != "" {
		headers.Set("Content-Type", opts.ContentType)
	}

	return &HTTPValidator{url: target, http: hc, headers: headers}, nil
}

// URL returns the endpoint requests are posted to.
func (v *HTTPValidator) URL() string {
	return v.url
}

// Validate posts the request as multipart/form-data and decodes the
// response. Every failure is returned as *ErrRequestFailed or
// *ErrInvalidResponse; nothing is retried.
func (v *HTTPValidator) Validate(ctx context.Context, req Request) (*Result, error) {
	body, contentType, err := buildBody(req)
	if err != nil {
		return nil, fmt.Errorf("build request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, v.url, body)
	if err != nil {
		return nil, &ErrRequestFailed{Err: err}
	}
	for k, vals := range v.headers {
		httpReq.Header[k] = vals
	}
	httpReq.Header.Set("Content-Type", contentType)

	id := RequestIDFrom(ctx)
	if id == "" {
		id = uuid.NewString()
	}
	httpReq.Header.Set("X-Request-ID", id)

	resp, err := v.http.Do(httpReq)
	if err != nil {
		return nil, &ErrRequestFailed{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &ErrRequestFailed{StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ErrRequestFailed{StatusCode: resp.StatusCode, Body: truncate(string(raw), maxErrorBody)}
	}

	return decodeResult(raw)
}

// buildBody encodes the three form parts and returns the body with its
// Content-Type (including boundary).
func buildBody(req Request) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := writeFilePart(w, FieldSyllabus, req.Syllabus); err != nil {
		return nil, "", err
	}
	if err := writeFilePart(w, FieldQuestions, req.Questions); err != nil {
		return nil, "", err
	}
	if err := w.WriteField(FieldThreshold, FormatThreshold(req.Threshold)); err != nil {
		return nil, "", fmt.Errorf("write %s: %w", FieldThreshold, err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func writeFilePart(w *multipart.Writer, field string, f File) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(f.Name)))
	h.Set("Content-Type", mimetype.Detect(f.Data).String())

	part, err := w.CreatePart(h)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(f.Data); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}

// endpointURL joins base and endpoint, keeping the endpoint's trailing slash.
func endpointURL(base, endpoint string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base URL %q: %w", base, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("base URL %q must be http or https", base)
	}
	if u.Host == "" {
		return "", fmt.Errorf("base URL %q has no host", base)
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(endpoint, "/"), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
