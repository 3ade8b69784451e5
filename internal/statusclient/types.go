package statusclient

import (
	"sort"
	"time"
)

// Result is one service's entry in the results map. Only Accessible is
// interpreted; the remaining fields are passed through for display.
type Result struct {
	Accessible bool   `json:"accessible"`
	URL        string `json:"url,omitempty"`
	LocalURL   string `json:"local_url,omitempty"`
	PublicURL  string `json:"public_url,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Results maps a service name to its result.
type Results map[string]Result

// Names returns the service names in lexical order.
func (r Results) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Response is the decoded body of a successful check.
type Response struct {
	IsLocal   bool    `json:"is_local"`
	Results   Results `json:"results"`
	Timestamp float64 `json:"timestamp"`
}

// CheckedAt converts the server timestamp (unix seconds) to a time.
// The zero time is returned when the server sent none.
func (r *Response) CheckedAt() time.Time {
	if r.Timestamp <= 0 {
		return time.Time{}
	}
	sec := int64(r.Timestamp)
	nsec := int64((r.Timestamp - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec)
}
