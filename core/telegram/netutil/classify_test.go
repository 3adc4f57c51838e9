package netutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"testing"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("send: %w", context.DeadlineExceeded), KindTimeout},
		{"canceled", context.Canceled, KindCanceled},
		{"dns", &net.DNSError{Err: "no such host", Name: "api.telegram.org"}, KindDNS},
		{"dial", &net.OpError{Op: "dial", Err: errors.New("refused")}, KindDial},
		{"url timeout", &url.Error{Op: "Post", URL: "x", Err: &net.DNSError{IsTimeout: true}}, KindTimeout},
		{"api 400 text", errors.New("telegram: Bad Request: chat not found (400)"), KindHTTP4xx},
		{"api 502 text", errors.New("telegram: Bad Gateway (502)"), KindHTTP5xx},
		{"api 429 text", errors.New("telegram: Too Many Requests (429)"), KindFlood},
		{"plain", errors.New("boom"), KindUnknown},
	}
	for _, tc := range cases {
		if got := Classify(tc.err); got != tc.want {
			t.Fatalf("%s: Classify = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestRedact(t *testing.T) {
	in := `Post "https://api.telegram.org/bot123456:AAH-x_y/sendMessage": timeout`
	got := Redact(in)
	if got != `Post "https://api.telegram.org/bot<redacted>/sendMessage": timeout` {
		t.Fatalf("redact = %s", got)
	}
	if RedactErr(nil) != "" {
		t.Fatalf("nil error should redact to empty")
	}
}
