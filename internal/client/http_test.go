package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const successBody = `{
  "results": [
    {"question": "Define OBE.", "best_matching_syllabus": "Unit 1: Outcome based education", "similarity_score": 0.82, "coherent": "Yes"},
    {"question": "Explain TCP.", "best_matching_syllabus": "Unit 4: Networks", "similarity_score": 0.41, "coherent": "No"}
  ],
  "accuracy": 0.9,
  "precision": 0.88,
  "recall": 0.91,
  "f1_score": 0.895,
  "confusion_matrix_image": "iVBORw0KGgo="
}`

// recordedPart is one multipart part seen by the fake service.
type recordedPart struct {
	Name        string
	FileName    string
	ContentType string
	Body        string
}

// fakeService records every request and answers with status/body.
type fakeService struct {
	mu      sync.Mutex
	status  int
	body    string
	parts   [][]recordedPart
	headers []http.Header
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var parts []recordedPart
	mr, err := r.MultipartReader()
	if err == nil {
		for {
			p, err := mr.NextPart()
			if err != nil {
				break
			}
			data, _ := io.ReadAll(p)
			parts = append(parts, recordedPart{
				Name:        p.FormName(),
				FileName:    p.FileName(),
				ContentType: p.Header.Get("Content-Type"),
				Body:        string(data),
			})
		}
	}

	f.mu.Lock()
	f.parts = append(f.parts, parts)
	f.headers = append(f.headers, r.Header.Clone())
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(f.status)
	_, _ = io.WriteString(w, f.body)
}

func (f *fakeService) requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.parts)
}

func newTestValidator(t *testing.T, svc http.Handler) (*HTTPValidator, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	v, err := NewHTTPValidator(Options{
		BaseURL:     srv.URL + "/",
		Endpoint:    "/validate_obe/",
		Timeout:     5 * time.Second,
		ContentType: "application/json",
	})
	require.NoError(t, err)
	return v, srv
}

func testRequest() Request {
	return Request{
		Syllabus:  File{Name: "syllabus.txt", Data: []byte("Unit 1: Outcome based education\n")},
		Questions: File{Name: "questions.txt", Data: []byte("Define OBE.\nExplain TCP.\n")},
		Threshold: 0.7,
	}
}

func TestValidateSendsThreePartMultipart(t *testing.T) {
	svc := &fakeService{status: http.StatusOK, body: successBody}
	v, _ := newTestValidator(t, svc)

	_, err := v.Validate(context.Background(), testRequest())
	require.NoError(t, err)

	require.Equal(t, 1, svc.requests(), "exactly one request")
	parts := svc.parts[0]
	require.Len(t, parts, 3)

	assert.Equal(t, FieldSyllabus, parts[0].Name)
	assert.Equal(t, "syllabus.txt", parts[0].FileName)
	assert.Equal(t, "Unit 1: Outcome based education\n", parts[0].Body)
	assert.True(t, strings.HasPrefix(parts[0].ContentType, "text/plain"), parts[0].ContentType)

	assert.Equal(t, FieldQuestions, parts[1].Name)
	assert.Equal(t, "questions.txt", parts[1].FileName)

	assert.Equal(t, FieldThreshold, parts[2].Name)
	assert.Empty(t, parts[2].FileName)
	assert.Equal(t, "0.7", parts[2].Body)
}

func TestValidateHeaders(t *testing.T) {
	svc := &fakeService{status: http.StatusOK, body: successBody}
	v, _ := newTestValidator(t, svc)

	ctx := WithRequestID(context.Background(), "req-123")
	_, err := v.Validate(ctx, testRequest())
	require.NoError(t, err)

	h := svc.headers[0]
	assert.True(t, strings.HasPrefix(h.Get("Content-Type"), "multipart/form-data; boundary="))
	assert.Equal(t, "application/json", h.Get("Accept"))
	assert.Equal(t, "req-123", h.Get("X-Request-ID"))
	assert.Empty(t, h.Get("Authorization"))
}

func TestValidateDecodesResult(t *testing.T) {
	svc := &fakeService{status: http.StatusOK, body: successBody}
	v, _ := newTestValidator(t, svc)

	res, err := v.Validate(context.Background(), testRequest())
	require.NoError(t, err)

	require.Len(t, res.Results, 2)
	assert.Equal(t, "Define OBE.", res.Results[0].Question)
	assert.Equal(t, "Unit 1: Outcome based education", res.Results[0].BestMatch)
	assert.Equal(t, Value("0.82"), res.Results[0].SimilarityScore)
	assert.True(t, res.Results[0].IsCoherent())
	assert.False(t, res.Results[1].IsCoherent())

	assert.Equal(t, "0.9", res.Accuracy.String())
	assert.Equal(t, "0.88", res.Precision.String())
	assert.Equal(t, "0.91", res.Recall.String())
	assert.Equal(t, "0.895", res.F1Score.String())
	assert.True(t, res.HasImage())
	assert.Equal(t, "iVBORw0KGgo=", res.ConfusionMatrixImage)
}

func TestValidateWithoutImage(t *testing.T) {
	svc := &fakeService{status: http.StatusOK, body: `{"results": [], "accuracy": 1, "precision": 1, "recall": 1, "f1_score": 1}`}
	v, _ := newTestValidator(t, svc)

	res, err := v.Validate(context.Background(), testRequest())
	require.NoError(t, err)
	assert.False(t, res.HasImage())
	assert.Equal(t, "1", res.Accuracy.String())
}

func TestValidateNon2xx(t *testing.T) {
	for _, status := range []int{http.StatusBadRequest, http.StatusInternalServerError, http.StatusBadGateway} {
		svc := &fakeService{status: status, body: `{"detail":"boom"}`}
		v, _ := newTestValidator(t, svc)

		res, err := v.Validate(context.Background(), testRequest())
		require.Error(t, err)
		assert.Nil(t, res)

		var failed *ErrRequestFailed
		require.ErrorAs(t, err, &failed)
		assert.Equal(t, status, failed.StatusCode)
		assert.Contains(t, failed.Body, "boom")
	}
}

func TestValidateConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	v, err := NewHTTPValidator(Options{BaseURL: base, Endpoint: "/validate_obe/", Timeout: time.Second})
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), testRequest())
	var failed *ErrRequestFailed
	require.ErrorAs(t, err, &failed)
	assert.Zero(t, failed.StatusCode)
	assert.NotNil(t, failed.Err)
}

func TestValidateTimeout(t *testing.T) {
	slow := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv := httptest.NewServer(slow)
	t.Cleanup(srv.Close)

	v, err := NewHTTPValidator(Options{BaseURL: srv.URL, Endpoint: "/validate_obe/", Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), testRequest())
	var failed *ErrRequestFailed
	require.ErrorAs(t, err, &failed)
}

func TestValidateInvalidBodies(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>oops</html>`},
		{"results not array", `{"results": {"a": 1}}`},
		{"coherent not string", `{"results": [{"coherent": 1}]}`},
		{"image not string", `{"confusion_matrix_image": 42}`},
		{"top level array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{status: http.StatusOK, body: tt.body}
			v, _ := newTestValidator(t, svc)

			_, err := v.Validate(context.Background(), testRequest())
			var invalid *ErrInvalidResponse
			require.ErrorAs(t, err, &invalid)
		})
	}
}

func TestValidateKeepsCookiesWithCredentials(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	svc := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		if c, err := r.Cookie("session"); err == nil {
			seen = append(seen, c.Value)
		} else {
			seen = append(seen, "")
		}
		mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		_, _ = io.WriteString(w, successBody)
	})
	srv := httptest.NewServer(svc)
	t.Cleanup(srv.Close)

	v, err := NewHTTPValidator(Options{BaseURL: srv.URL, Endpoint: "/validate_obe/", Timeout: time.Second, WithCredentials: true})
	require.NoError(t, err)

	for range 2 {
		_, err := v.Validate(context.Background(), testRequest())
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"", "s1"}, seen)
}

func TestEndpointURL(t *testing.T) {
	tests := []struct {
		base, endpoint, want string
		wantErr              bool
	}{
		{"http://localhost:8000/", "/validate_obe/", "http://localhost:8000/validate_obe/", false},
		{"https://svc.example.test", "validate_obe/", "https://svc.example.test/validate_obe/", false},
		{"svc.example.test/", "/validate_obe/", "", true},
		{"ftp://svc.example.test/", "/validate_obe/", "", true},
		{"http://", "/validate_obe/", "", true},
	}

	for _, tt := range tests {
		got, err := endpointURL(tt.base, tt.endpoint)
		if tt.wantErr {
			assert.Error(t, err, tt.base)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestFormatThreshold(t *testing.T) {
	assert.Equal(t, "0.7", FormatThreshold(0.7))
	assert.Equal(t, "1", FormatThreshold(1))
	assert.Equal(t, "0.65", FormatThreshold(0.65))
}

func TestValueVerbatim(t *testing.T) {
	var r Result
	require.NoError(t, json.Unmarshal([]byte(`{"accuracy": 0.90, "precision": "0.88", "recall": null, "f1_score": 1e-1}`), &r))
	assert.Equal(t, "0.90", r.Accuracy.String())
	assert.Equal(t, "0.88", r.Precision.String())
	assert.True(t, r.Precision.IsString())
	assert.False(t, r.Accuracy.IsString())
	assert.Equal(t, Value(""), r.Recall)
	assert.Equal(t, "1e-1", r.F1Score.String())

	f, ok := r.Accuracy.Float()
	assert.True(t, ok)
	assert.InDelta(t, 0.9, f, 1e-9)

	f, ok = r.Precision.Float()
	assert.True(t, ok)
	assert.InDelta(t, 0.88, f, 1e-9)

	out, err := json.Marshal(Value("n/a"))
	require.NoError(t, err)
	assert.Equal(t, `"n/a"`, string(out))
}

func TestValueRoundTripKeepsJSONType(t *testing.T) {
	in := `{"results":[{"question":"q","best_matching_syllabus":"s","similarity_score":"0.5","coherent":"Yes"}],` +
		`"accuracy":"NaN","precision":"0.9","recall":"Infinity","f1_score":"0x1p-2"}`

	res, err := decodeResult([]byte(in))
	require.NoError(t, err)
	assert.Equal(t, "NaN", res.Accuracy.String())
	assert.Equal(t, "0.9", res.Precision.String())

	out, err := json.Marshal(res)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(out, &got))
	assert.Equal(t, "NaN", got["accuracy"])
	assert.Equal(t, "0.9", got["precision"])
	assert.Equal(t, "Infinity", got["recall"])
	assert.Equal(t, "0x1p-2", got["f1_score"])
	rows := got["results"].([]any)
	assert.Equal(t, "0.5", rows[0].(map[string]any)["similarity_score"])

	out, err = json.Marshal(Result{Accuracy: "0.90"})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"accuracy":0.90`)
}

func TestDecodeImageAcceptsDataURI(t *testing.T) {
	bare := &Result{ConfusionMatrixImage: "iVBORw0KGgo="}
	prefixed := &Result{ConfusionMatrixImage: ImagePrefix + "iVBORw0KGgo="}

	a, err := bare.DecodeImage()
	require.NoError(t, err)
	b, err := prefixed.DecodeImage()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), a)
}

func TestErrRequestFailedMessages(t *testing.T) {
	base := errors.New("dial tcp: refused")
	assert.Contains(t, (&ErrRequestFailed{Err: base}).Error(), "refused")
	assert.Contains(t, (&ErrRequestFailed{StatusCode: 500, Body: "boom"}).Error(), "status 500")
	assert.ErrorIs(t, &ErrRequestFailed{Err: base}, base)
}
