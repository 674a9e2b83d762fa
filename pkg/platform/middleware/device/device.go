// Package device classifies the client that submitted a request from its
// User-Agent header.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknown = "unknown"

// Platform summarizes a User-Agent as "kind/os/browser", where kind is bot,
// mobile or desktop. Missing parts read "unknown".
func Platform(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return strings.Join([]string{unknown, unknown, unknown}, "/")
	}
	ua := useragent.New(userAgent)

	kind := "desktop"
	switch {
	case ua.Bot():
		kind = "bot"
	case ua.Mobile():
		kind = "mobile"
	}

	osName := ua.OSInfo().Name
	if osName == "" {
		osName = unknown
	}
	browser, _ := ua.Browser()
	if browser == "" {
		browser = unknown
	}
	return strings.Join([]string{kind, osName, browser}, "/")
}
