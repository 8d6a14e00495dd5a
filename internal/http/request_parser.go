// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// maxBodyBytes caps request bodies. Every payload the API accepts is tiny.
const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst, enforcing the size cap.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	// A second document in the body is a malformed request.
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}

// parseMonthParam reads the optional ?month=YYYY-MM query parameter.
// Missing or empty means the current month.
func parseMonthParam(r *http.Request) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("month"))
	if v == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01", v)
	if err != nil {
		return time.Time{}, errors.New("month must be in YYYY-MM format")
	}
	return t, nil
}

// parseMonthsParam reads the optional ?months=N query parameter.
func parseMonthsParam(r *http.Request, fallback int) (int, error) {
	v := strings.TrimSpace(r.URL.Query().Get("months"))
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > 60 {
		return 0, errors.New("months must be a number between 1 and 60")
	}
	return n, nil
}

// parseDateField parses a YYYY-MM-DD request field. Empty means today.
func parseDateField(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Now(), nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return time.Time{}, errors.New("date must be in YYYY-MM-DD format")
	}
	return t, nil
}
