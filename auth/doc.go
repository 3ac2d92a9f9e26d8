// Package auth builds outbound Authorization header values for endpoint
// clients.
//
// A Credential is the one active authorization value of a client: bearer
// token or basic user/password pair, whichever was configured last. The
// package also inspects bearer tokens that happen to be JWTs so a client
// can warn about configuring an already-expired token; no signature
// validation is performed, that is the server's job.
package auth
