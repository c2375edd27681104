package restclient

import "context"

// Token is an OAuth2 style access token. When attached to a context with Use,
// requests sent with that context carry it in their Authorization header.
type Token struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Type         string `json:"token_type"`
	Expires      int    `json:"expires_in"`
}

type tokenValue int

type withToken struct {
	context.Context
	token *Token
}

func (w *withToken) Value(v any) any {
	if _, ok := v.(tokenValue); ok {
		return w.token
	}

	return w.Context.Value(v)
}

// Use returns a context holding the token.
func (t *Token) Use(ctx context.Context) context.Context {
	return &withToken{ctx, t}
}

func (t *Token) authorization() string {
	typ := t.Type
	if typ == "" || typ == "bearer" {
		typ = "Bearer"
	}
	return typ + " " + t.AccessToken
}
