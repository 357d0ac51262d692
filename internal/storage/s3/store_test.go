package s3

import (
	"strings"
	"testing"
)

func TestParseEndpoint(t *testing.T) {
	cases := []struct {
		raw        string
		useSSL     bool
		wantHost   string
		wantSecure bool
		wantErr    bool
	}{
		{raw: "minio.internal:9000", useSSL: false, wantHost: "minio.internal:9000", wantSecure: false},
		{raw: "minio.internal:9000", useSSL: true, wantHost: "minio.internal:9000", wantSecure: true},
		{raw: "http://minio.internal:9000", useSSL: false, wantHost: "minio.internal:9000", wantSecure: false},
		{raw: "https://s3.example.com", useSSL: false, wantHost: "s3.example.com", wantSecure: true},
		{raw: "", wantErr: true},
		{raw: "http://", wantErr: true},
	}
	for _, tc := range cases {
		host, secure, err := parseEndpoint(tc.raw, tc.useSSL)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseEndpoint(%q) expected error", tc.raw)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseEndpoint(%q) error = %v", tc.raw, err)
			continue
		}
		if host != tc.wantHost || secure != tc.wantSecure {
			t.Errorf("parseEndpoint(%q) = (%q, %v), want (%q, %v)", tc.raw, host, secure, tc.wantHost, tc.wantSecure)
		}
	}
}

func TestObjectKeyValidation(t *testing.T) {
	store := &Store{prefix: "exports"}

	key, err := store.objectKey("/2024/result.parquet")
	if err != nil {
		t.Fatalf("objectKey error = %v", err)
	}
	if key != "exports/2024/result.parquet" {
		t.Fatalf("objectKey = %q", key)
	}

	for _, bad := range []string{"", "  ", "../secrets", "a/../../b"} {
		if _, err := store.objectKey(bad); err == nil {
			t.Errorf("objectKey(%q) expected error", bad)
		}
	}
}

func TestCleanPrefix(t *testing.T) {
	cases := map[string]string{
		"":           "",
		"/":          "",
		"exports/":   "exports",
		"/a/b/":      "a/b",
		"  spaced  ": "spaced",
	}
	for in, want := range cases {
		if got := cleanPrefix(strings.TrimSpace(in)); got != want {
			t.Errorf("cleanPrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
