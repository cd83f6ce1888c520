package logger

import (
	"context"
	"testing"
)

func TestMaskEmail(t *testing.T) {
	cases := map[string]string{
		"john.doe@example.com": "joh***@example.com",
		"al@example.com":       "al***@example.com",
		"":                     "",
		"not-an-email":         "***",
	}
	for in, want := range cases {
		if got := MaskEmail(in); got != want {
			t.Errorf("MaskEmail(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMaskPhone(t *testing.T) {
	if got := MaskPhone("+38 (050) 123-45-67"); got != "***67" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := MaskPhone("1"); got != "***" {
		t.Fatalf("unexpected mask %q", got)
	}
}

func TestMaskIP(t *testing.T) {
	if got := MaskIP("192.168.1.100"); got != "192.168.*.*" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := MaskIP("2001:0db8:85a3:0000:0000:8a2e:0370:7334"); got != "2001:0db8:85a3:0000:*:*:*:*" {
		t.Fatalf("unexpected mask %q", got)
	}
}

func TestMaskToken(t *testing.T) {
	if got := MaskToken("eyJhbGciOiJIUzI1NiJ9.payload.sig"); got != "eyJh***.sig" {
		t.Fatalf("unexpected mask %q", got)
	}
	if got := MaskToken("short"); got != "***" {
		t.Fatalf("unexpected mask %q", got)
	}
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	if got := requestIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if WithContext(ctx) == nil {
		t.Fatal("expected logger")
	}
}
