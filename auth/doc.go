// Package auth guards health endpoints that expose detailed reports.
//
// Callers present an API key or a JWT bearer token. API keys are looked up
// by SHA-256 in a KeyStore: MemoryKeyStore for keys from configuration,
// RedisKeyStore for keys rotated at runtime. JWTs are verified with an
// HMAC secret, a static public key, or keys fetched from a JWKS endpoint.
//
// Middleware rejects unauthenticated requests with 401 and callers
// lacking a required role with 403.
package auth
