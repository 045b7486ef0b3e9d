package auth

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// TokenSource identifies where a bearer token was found, for diagnostics.
type TokenSource string

const (
	SourceHeader TokenSource = "header"
	SourceQuery  TokenSource = "query"
	SourceCookie TokenSource = "cookie"
	SourceBody   TokenSource = "body"
)

// maxTokenBodyBytes bounds how much of a request body the body extractor
// will read looking for a token field.
const maxTokenBodyBytes = 1 << 20

type extractor struct {
	source  TokenSource
	extract func(r *http.Request) string
}

// extractors lists the bearer locations in priority order; the first
// non-empty match wins.
var extractors = []extractor{
	{SourceHeader, fromAuthorizationHeader},
	{SourceQuery, fromQueryParam},
	{SourceCookie, fromAccessCookie},
	{SourceBody, fromBodyField},
}

// ExtractToken probes the request for a bearer token.
func ExtractToken(r *http.Request) (string, TokenSource, bool) {
	for _, e := range extractors {
		if token := e.extract(r); token != "" {
			return token, e.source, true
		}
	}
	return "", "", false
}

func fromAuthorizationHeader(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

func fromQueryParam(r *http.Request) string {
	return r.URL.Query().Get("token")
}

func fromAccessCookie(r *http.Request) string {
	cookie, err := r.Cookie(AccessCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// fromBodyField peeks at a JSON body for a "token" field. The body is
// restored afterwards so the downstream handler can still read it.
func fromBodyField(r *http.Request) string {
	if r.Body == nil || r.Body == http.NoBody {
		return ""
	}
	if ct := r.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		return ""
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyBytes))
	r.Body = io.NopCloser(bytes.NewReader(data))
	if err != nil {
		return ""
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return ""
	}
	return payload.Token
}
