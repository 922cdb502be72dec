package fetch

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		statusCode int
		expected   ErrorClass
	}{
		{200, ""},
		{204, ""},
		{301, ""},
		{304, ""},
		{400, ErrorClassClient},
		{403, ErrorClassClient},
		{404, ErrorClassClient},
		{429, ErrorClassClient},
		{500, ErrorClassServer},
		{502, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.statusCode); got != tt.expected {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.statusCode, got, tt.expected)
		}
	}
}

func TestStatusError_Error(t *testing.T) {
	err := &StatusError{
		URL:        "http://example.com",
		StatusCode: 503,
		ErrorClass: ErrorClassServer,
		Message:    "503 Service Unavailable",
	}

	want := "server error (status 503) from http://example.com: 503 Service Unavailable"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestNetworkError_Unwrap(t *testing.T) {
	err := &NetworkError{URL: "http://example.com", Err: io.ErrUnexpectedEOF}

	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("errors.Is should see the wrapped error")
	}
	if !strings.Contains(err.Error(), "http://example.com") {
		t.Errorf("Error() = %q, should mention the URL", err.Error())
	}
}

func TestFunc(t *testing.T) {
	var called string
	f := Func(func(ctx context.Context, url string) (string, error) {
		called = url
		return "body", nil
	})

	body, err := f.Get(context.Background(), "http://example.com")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if body != "body" {
		t.Errorf("body = %q, want %q", body, "body")
	}
	if called != "http://example.com" {
		t.Errorf("called with %q", called)
	}
}
