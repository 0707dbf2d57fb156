// Package common contains constants, sentinel errors and small helpers
// shared by the docadmin packages.
package common

// HTTP header names and values used on outbound requests.
const (
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
	RequestIDHeader     = "X-Request-ID"
	ContentTypeHeader   = "Content-Type"
	ContentDisposition  = "Content-Disposition"
	JSONContentType     = "application/json"
)

// TokenMetadataKey is the key the bearer token is stored under in the local
// metadata table.
const TokenMetadataKey = "token"

// DefaultDownloadName is used when a download response carries no usable
// file name.
const DefaultDownloadName = "download.bin"
