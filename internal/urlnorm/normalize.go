// Package urlnorm validates raw input URLs and resolves redirects
// (shortened map links) to a canonical final URL.
package urlnorm

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/tripstash/placeimport/pkg/fetch"
)

// ValidationError marks a user-correctable bad input. It is the only
// normalizer failure that rejects the import outright.
type ValidationError struct {
	Input  string
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid url " + e.Input + ": " + e.Reason
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks that raw parses as an absolute HTTP(S) URL.
func Validate(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, &ValidationError{Input: raw, Reason: "empty"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ValidationError{Input: raw, Reason: "not parseable"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &ValidationError{Input: raw, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return nil, &ValidationError{Input: raw, Reason: "missing host"}
	}
	return u, nil
}

// Normalizer validates and resolves input URLs.
type Normalizer struct {
	fetcher *fetch.Fetcher
}

// New creates a Normalizer backed by the given fetcher.
func New(f *fetch.Fetcher) *Normalizer {
	return &Normalizer{fetcher: f}
}

// Normalize validates raw and follows redirects to the final URL.
// Resolution failure is not fatal: the validated original URL is
// returned along with a warning, and extraction proceeds.
func (n *Normalizer) Normalize(ctx context.Context, raw string) (string, []string, error) {
	u, err := Validate(raw)
	if err != nil {
		return "", nil, eris.Wrap(err, "urlnorm")
	}

	resolved, err := n.fetcher.Resolve(ctx, u.String())
	if err != nil {
		zap.L().Debug("urlnorm: resolution failed, using original url",
			zap.String("url", u.String()),
			zap.Error(err),
		)
		return u.String(), []string{"could not follow redirects; using the URL as given"}, nil
	}

	return resolved, nil, nil
}
