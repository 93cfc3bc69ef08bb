package client

import (
	"fmt"
	"net/url"
)

// Path formats a request path, escaping each segment.
func Path(format string, segments ...string) string {
	escaped := make([]interface{}, len(segments))
	for i, segment := range segments {
		escaped[i] = url.PathEscape(segment)
	}

	return fmt.Sprintf(format, escaped...)
}
