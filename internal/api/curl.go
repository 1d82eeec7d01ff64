package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Curl renders req as an equivalent curl command line, including the
// client's default headers. Header order is stable.
func (c *Client) Curl(req *Request) (string, error) {
	parts := []string{"curl"}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	if method != http.MethodGet {
		parts = append(parts, "-X", method)
	}

	headers := make(map[string]string)
	c.mu.Lock()
	for k, v := range c.headers {
		headers[k] = v
	}
	c.mu.Unlock()
	for k, v := range req.Headers {
		headers[k] = v
	}
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		parts = append(parts, "-H", shellQuote(k+": "+headers[k]))
	}

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return "", fmt.Errorf("encoding request body: %w", err)
		}
		parts = append(parts, "-d", shellQuote(string(data)))
	}

	parts = append(parts, shellQuote(c.URL(req.Endpoint, req.Params)))
	return strings.Join(parts, " "), nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
