package testutil

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/dom"
)

// AssertRendered compares the rendered children of host, anchors omitted,
// with want and reports a diff on mismatch.
func AssertRendered(t *testing.T, host *html.Node, want string) {
	t.Helper()

	if diff := cmp.Diff(want, dom.Render(host, false)); diff != "" {
		t.Errorf("rendered markup mismatch (-want +got):\n%s", diff)
	}
}
