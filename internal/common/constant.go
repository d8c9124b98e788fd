// Package common holds constants and sentinel errors shared by the client
// packages. Callers match the errors with errors.Is.
package common

// AccessTokenHeaderName is the gRPC metadata key carrying the access token.
const AccessTokenHeaderName = "access_token"
