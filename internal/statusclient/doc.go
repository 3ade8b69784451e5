// Package statusclient performs the single outbound request of a refresh
// cycle: GET on the connectivity endpoint, decoded into a map of service
// name to reachability result. Every failure mode (transport error,
// non-2xx status, undecodable or malformed body) is reported as
// ErrCheckFailed.
package statusclient
