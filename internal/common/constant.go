// Package common contains shared constants and sentinel errors used across
// the roster hub server and its admin tooling.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the session
// token on inbound requests.
const AccessTokenHeaderName = "access_token"

// LegacyAdminParty is the wire spelling of the pseudo-party used by messages
// written before every sender had a numeric user id.
const LegacyAdminParty = "admin"
