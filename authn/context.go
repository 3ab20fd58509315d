package authn

import "context"

type contextKey string

const credentialKey contextKey = "credential"

// WithCredential returns a context carrying the authenticated credential.
func WithCredential(ctx context.Context, cred Credential) context.Context {
	return context.WithValue(ctx, credentialKey, cred)
}

// CredentialFrom extracts the authenticated credential from the context.
func CredentialFrom(ctx context.Context) (Credential, bool) {
	cred, ok := ctx.Value(credentialKey).(Credential)
	return cred, ok
}
