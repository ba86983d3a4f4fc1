package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LoggingValidator is a decorator that records every validation call in
// the developer log.
type LoggingValidator struct {
	inner Validator
	log   *zap.Logger
}

// WithLogging wraps a Validator with request logging.
func WithLogging(v Validator, log *zap.Logger) Validator {
	if log == nil {
		log = zap.NewNop()
	}
	return &LoggingValidator{inner: v, log: log}
}

func (l *LoggingValidator) Validate(ctx context.Context, req Request) (*Result, error) {
	id := RequestIDFrom(ctx)
	if id == "" {
		id = uuid.NewString()
		ctx = WithRequestID(ctx, id)
	}

	start := time.Now()
	res, err := l.inner.Validate(ctx, req)

	fields := []zap.Field{
		zap.String("request_id", id),
		zap.String("syllabus", req.Syllabus.Name),
		zap.Int("syllabus_bytes", len(req.Syllabus.Data)),
		zap.String("questions", req.Questions.Name),
		zap.Int("questions_bytes", len(req.Questions.Data)),
		zap.String("threshold", FormatThreshold(req.Threshold)),
		zap.Duration("latency", time.Since(start)),
	}

	if err != nil {
		var failed *ErrRequestFailed
		if errors.As(err, &failed) && failed.StatusCode != 0 {
			fields = append(fields, zap.Int("status", failed.StatusCode))
		}
		l.log.Error("validation request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	var rows int
	if res != nil {
		rows = len(res.Results)
	}
	l.log.Info("validation request succeeded", append(fields,
		zap.Int("results", rows),
		zap.Bool("confusion_matrix", res.HasImage()),
	)...)
	return res, nil
}
