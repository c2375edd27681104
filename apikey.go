package restclient

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Sign returns the base64 encoded HMAC-SHA256 of stringToSign using key.
func Sign(key []byte, stringToSign string) string {
	h := hmac.New(sha256.New, key)
	h.Write([]byte(stringToSign))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ApiKey represents an API key with its secret for signing requests.
// It contains the key ID and secret key used for request signing.
type ApiKey struct {
	KeyID     string
	SecretKey []byte
}

// apiKeyValue is a type used as a context key for API key storage.
type apiKeyValue int

// withApiKey is a context wrapper that holds an API key value.
type withApiKey struct {
	context.Context
	apiKey *ApiKey
}

// Value implements the context.Context Value method for withApiKey.
// It returns the API key for apiKeyValue keys and delegates to the parent context otherwise.
func (w *withApiKey) Value(v any) any {
	if _, ok := v.(apiKeyValue); ok {
		return w.apiKey
	}

	return w.Context.Value(v)
}

// NewApiKey creates a new ApiKey from a key ID and a base64 encoded secret.
// Both base64url (- and _) and standard base64 are accepted.
func NewApiKey(keyID, secret string) (*ApiKey, error) {
	decodedSecret, err := base64.RawURLEncoding.DecodeString(secret)
	if err != nil {
		// Try standard base64 as fallback
		decodedSecret, err = base64.StdEncoding.DecodeString(secret)
		if err != nil {
			return nil, fmt.Errorf("invalid base64 secret: %w", err)
		}
	}
	if len(decodedSecret) == 0 {
		return nil, errors.New("empty secret")
	}

	return &ApiKey{
		KeyID:     keyID,
		SecretKey: decodedSecret,
	}, nil
}

// Use returns a new context that includes this API key for authentication.
// Requests sent with this context are signed with the key.
func (a *ApiKey) Use(ctx context.Context) context.Context {
	return &withApiKey{ctx, a}
}

// stringToSign builds the signed payload from the method, path, query string
// (without _sign) and the hex sha256 of the body, separated by NUL bytes.
func (a *ApiKey) stringToSign(method, path string, values url.Values, body []byte) string {
	bodyHash := sha256.Sum256(body)

	values = cloneValues(values)
	values.Del("_sign")

	var signString bytes.Buffer
	signString.WriteString(method)
	signString.WriteByte(0)
	signString.WriteString(path)
	signString.WriteByte(0)
	signString.WriteString(values.Encode())
	signString.WriteByte(0)
	signString.WriteString(hex.EncodeToString(bodyHash[:]))
	return signString.String()
}

// applyParams adds _key, _time, _nonce and finally _sign to query. The
// signature covers the parameters already present in target's query too.
func (a *ApiKey) applyParams(method string, target *url.URL, query *QueryParams, body []byte) error {
	if a == nil {
		return errors.New("nil API key")
	}

	params := [][2]string{
		{"_key", a.KeyID},
		{"_time", strconv.FormatInt(time.Now().Unix(), 10)},
		{"_nonce", uuid.New().String()},
	}
	for _, p := range params {
		if err := query.Add(p[0], p[1]); err != nil {
			return err
		}
	}

	values := target.Query()
	for k, v := range query.Values() {
		values[k] = append(values[k], v...)
	}

	// _sign must be the last parameter
	return query.Add("_sign", Sign(a.SecretKey, a.stringToSign(method, target.Path, values, body)))
}

func cloneValues(v url.Values) url.Values {
	res := make(url.Values, len(v))
	for k, vals := range v {
		res[k] = append([]string(nil), vals...)
	}
	return res
}
