package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/surf-report/internal/infra/config"
)

const retryBodyLimit = 64 << 10

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// withRetry replays POST requests that failed with a retryable upstream status.
// Report generation is normally excluded: it is slow and bills model tokens per attempt.
// Every attempt carries the same request id.
func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	exclusions := make(map[string]struct{}, len(cfg.Exclude))
	for _, path := range cfg.Exclude {
		exclusions[path] = struct{}{}
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, skip := exclusions[r.URL.Path]; skip || r.Method != http.MethodPost {
			handler.ServeHTTP(w, r)
			return
		}
		body, err := readRequestBody(r)
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, errBodyTooLarge) {
				status = http.StatusRequestEntityTooLarge
			}
			http.Error(w, err.Error(), status)
			return
		}
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
			if attempt > 1 && !waitBackoff(r, cfg.BaseBackoff*time.Duration(1<<(attempt-2))) {
				http.Error(w, "request cancelled", http.StatusServiceUnavailable)
				return
			}

			recorder := newRetryRecorder()
			replay := r.Clone(r.Context())
			replay.Header.Set(requestIDHeader, requestID)
			replay.Body = io.NopCloser(bytes.NewReader(body))
			replay.ContentLength = int64(len(body))

			handler.ServeHTTP(recorder, replay)
			if !retryableStatus(recorder.status) || attempt == cfg.MaxAttempts {
				recorder.commit(w)
				return
			}
			logger.Warn("transient failure, retrying request",
				"path", r.URL.Path,
				"status", recorder.status,
				"attempt", attempt,
				"request_id", requestID,
			)
		}
	})
}

// waitBackoff sleeps for d unless the client goes away first.
func waitBackoff(r *http.Request, d time.Duration) bool {
	if d <= 0 {
		return r.Context().Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-r.Context().Done():
		return false
	case <-timer.C:
		return true
	}
}

// retryableStatus matches upstream failures worth a second try. Timeouts are
// not retried since the caller already waited the full upstream budget.
func retryableStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusInternalServerError:
		return true
	default:
		return false
	}
}

func readRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// retryRecorder buffers one attempt so a failed attempt never reaches the client.
type retryRecorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func newRetryRecorder() *retryRecorder {
	return &retryRecorder{header: make(http.Header), status: http.StatusOK}
}

func (r *retryRecorder) Header() http.Header {
	return r.header
}

func (r *retryRecorder) WriteHeader(status int) {
	r.status = status
}

func (r *retryRecorder) Write(b []byte) (int, error) {
	return r.body.Write(b)
}

func (r *retryRecorder) Flush() {}

func (r *retryRecorder) commit(w http.ResponseWriter) {
	dst := w.Header()
	for k, values := range r.header {
		dst[k] = append([]string(nil), values...)
	}
	w.WriteHeader(r.status)
	if r.body.Len() > 0 {
		_, _ = w.Write(r.body.Bytes())
	}
}
