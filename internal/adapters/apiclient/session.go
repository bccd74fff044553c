package apiclient

import "context"

type sessionKey struct{}

type sessionValue struct {
	id    string
	token string
}

// WithSession binds the console session and its API bearer token to ctx.
func WithSession(ctx context.Context, sessionID, token string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionValue{id: sessionID, token: token})
}

func SessionFrom(ctx context.Context) (sessionID, token string) {
	v, _ := ctx.Value(sessionKey{}).(sessionValue)
	return v.id, v.token
}
