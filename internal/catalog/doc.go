// Package catalog talks to the remote addon catalog over its JSON HTTP API.
//
// Search results are decoded straight into the projection used for matching, so
// unrelated upstream schema changes never reach the resolver. Failures are
// reported through the sentinels of the addon package.
package catalog
