package restclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// TestSign verifies the signature against the RFC 4231 HMAC-SHA256 vector.
func TestSign(t *testing.T) {
	got := Sign([]byte("Jefe"), "what do ya want for nothing?")
	want := "W9zBRr9gdU5qBCQmCJV1x1oAPwidJzmDnexYuWTsOEM="
	if got != want {
		t.Errorf("Sign() = %s, want %s", got, want)
	}
}

// TestNewApiKey verifies the API key loading function.
func TestNewApiKey(t *testing.T) {
	// base64url without padding
	apiKey, err := NewApiKey("key-1", "c2VjcmV0")
	if err != nil {
		t.Fatalf("Failed to load API key: %v", err)
	}
	if apiKey.KeyID != "key-1" {
		t.Errorf("Expected key ID to be key-1, got %s", apiKey.KeyID)
	}
	if string(apiKey.SecretKey) != "secret" {
		t.Errorf("Expected secret to decode to %q, got %q", "secret", apiKey.SecretKey)
	}

	// standard base64 with padding
	apiKey, err = NewApiKey("key-2", "YQ==")
	if err != nil {
		t.Fatalf("Failed to load padded API key: %v", err)
	}
	if string(apiKey.SecretKey) != "a" {
		t.Errorf("Expected secret to decode to %q, got %q", "a", apiKey.SecretKey)
	}

	if _, err = NewApiKey("test-key-id", "invalid-base64-!@#$"); err == nil {
		t.Errorf("Expected error for invalid base64, got nil")
	}
	if _, err = NewApiKey("test-key-id", ""); err == nil {
		t.Errorf("Expected error for empty secret, got nil")
	}
}

// TestApiKeyContext verifies the context functionality of the API key implementation.
func TestApiKeyContext(t *testing.T) {
	apiKey := &ApiKey{KeyID: "k", SecretKey: []byte("s")}
	ctx := apiKey.Use(context.Background())

	retrievedKey, ok := ctx.Value(apiKeyValue(0)).(*ApiKey)
	if !ok || retrievedKey != apiKey {
		t.Fatal("Expected context to contain API key")
	}
	if ctx.Value(tokenValue(0)) != nil {
		t.Errorf("API key context must not answer for tokens")
	}
}

// TestStringToSign verifies the layout of the signed payload.
func TestStringToSign(t *testing.T) {
	q := NewQueryParams()
	q.Add("b", "2")
	q.Add("a", "1")
	q.Add("_sign", "ignored")

	apiKey := &ApiKey{KeyID: "k", SecretKey: []byte("s")}
	values := q.Values()
	got := apiKey.stringToSign("GET", "/v1/items", values, nil)
	want := "GET\x00/v1/items\x00a=1&b=2\x00e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got != want {
		t.Errorf("stringToSign() = %q, want %q", got, want)
	}
	if values.Get("_sign") != "ignored" {
		t.Errorf("stringToSign() modified its input")
	}

	got = apiKey.stringToSign("POST", "/", nil, []byte("test content"))
	if !strings.HasSuffix(got, "6ae8a75555209fd6c44157c0aed8016e763ff435a19cf186f76863140143ff72") {
		t.Errorf("stringToSign() does not end with the body hash: %q", got)
	}
}

// TestSignedRequest sends requests with an API key and checks the server
// can verify the signature.
func TestSignedRequest(t *testing.T) {
	apiKey := &ApiKey{KeyID: "key-1", SecretKey: []byte("0123456789abcdef")}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.RawQuery, "&")
		if !strings.HasPrefix(parts[len(parts)-1], "_sign=") {
			t.Errorf("_sign must be the last parameter: %s", r.URL.RawQuery)
		}
		if strings.Count(r.URL.RawQuery, "?") != 0 {
			t.Errorf("query contains a stray '?': %s", r.URL.RawQuery)
		}
		values := r.URL.Query()
		for _, k := range []string{"filter", "_key", "_time", "_nonce", "_sign"} {
			if values.Get(k) == "" {
				t.Errorf("missing parameter %s in %s", k, r.URL.RawQuery)
			}
		}
		if values.Get("_key") != "key-1" {
			t.Errorf("_key = %s, want key-1", values.Get("_key"))
		}

		body, _ := io.ReadAll(r.Body)
		expected := Sign(apiKey.SecretKey, apiKey.stringToSign(r.Method, r.URL.Path, values, body))
		if values.Get("_sign") != expected {
			t.Errorf("signature mismatch: got %s, want %s", values.Get("_sign"), expected)
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	for _, base := range []string{srv.URL + "/v1/items", srv.URL + "/v1/items?scope=all"} {
		r := New(http.MethodPost, base, WithTransport(srv.Client()))
		r.AddQueryParam("filter", "open")
		r.SetBodyText("payload", "")

		ctx := apiKey.Use(context.Background())
		if err := r.Send(ctx).Wait(ctx); err != nil {
			t.Fatalf("Wait failed: %v", err)
		}

		// the caller's parameters are left untouched
		if strings.Contains(r.URL(), "_sign") || !strings.HasSuffix(r.URL(), "filter=open") {
			t.Errorf("signing leaked into the request: %s", r.URL())
		}

		res := r.Result(nil)
		if res.IsError() {
			t.Fatalf("signed request to %s failed: %s", base, res.ErrorMessage())
		}
	}
}
