package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

type Response struct {
	StatusCode int
	Status     string
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

func (r *Response) BodyString() string {
	return string(r.Body)
}

// Field returns the string at a gjson path of a JSON body, or "" when the
// body is not JSON or the path is absent
func (r *Response) Field(path string) string {
	if !gjson.ValidBytes(r.Body) {
		return ""
	}
	return gjson.GetBytes(r.Body, path).String()
}

// PrettyBody returns the body indented when it is JSON, verbatim otherwise
func (r *Response) PrettyBody() string {
	if gjson.ValidBytes(r.Body) {
		return strings.TrimSpace(gjson.ParseBytes(r.Body).Get("@pretty").Raw)
	}
	return r.BodyString()
}

func (r *Response) Header(key string) string {
	for k, v := range r.Headers {
		if strings.EqualFold(k, key) {
			return v
		}
	}
	return ""
}

func (r *Response) IsJSON() bool {
	return strings.Contains(r.Header("Content-Type"), "application/json")
}

// IsOK reports a 200 status, the only status a webhook endpoint accepts with
func (r *Response) IsOK() bool {
	return r.StatusCode == http.StatusOK
}

func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
