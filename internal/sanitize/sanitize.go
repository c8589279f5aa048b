// Package sanitize cleans markup before it is inserted into rendered
// content.
package sanitize

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	contentPolicyOnce sync.Once
	contentPolicy     *bluemonday.Policy
)

// HTML strips scripts, event handlers and unsafe URLs from raw, keeping
// the markup user-generated content normally needs.
func HTML(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}
	return strings.TrimSpace(policy().Sanitize(trimmed))
}

func policy() *bluemonday.Policy {
	contentPolicyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Globally()
		p.AllowAttrs("type", "checked", "disabled").OnElements("input")
		contentPolicy = p
	})
	return contentPolicy
}
