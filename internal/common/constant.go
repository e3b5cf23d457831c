// Package common contains shared constants and sentinel errors used across
// ConnectHub client components.
package common

// MaxPostLength is the client-side cap on post content, counted in characters
// after trimming.
const MaxPostLength = 1000

// DefaultFeedLimit bounds the number of posts requested for the feed.
const DefaultFeedLimit = 50

// PreviewLength is the number of characters of a post shown before truncation.
const PreviewLength = 300

// AnonKeyHeaderName is the header carrying the project's anonymous API key on
// every backend request.
const AnonKeyHeaderName = "apikey"
