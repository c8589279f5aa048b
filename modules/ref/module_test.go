package ref_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/weavego/internal/testutil"
	"github.com/vk/weavego/modules/ref"
)

func TestRef_RecordsAndDropsReference(t *testing.T) {
	// --- Arrange ---
	mc := testutil.ModuleContext(t, "#field", "", nil, "field")
	host := testutil.NewFakeHost()
	mc.Host = host
	m, err := ref.New(mc)
	require.NoError(t, err)

	// --- Act ---
	_, err = m.Process(context.Background())
	require.NoError(t, err)

	// --- Assert ---
	assert.Same(t, mc.Node, host.Refs["field"])
	v, ok := mc.Scope.Get("field")
	require.True(t, ok)
	assert.Equal(t, "div", v.GetAttr("tag").AsString())

	m.Cleanup()
	assert.NotContains(t, host.Refs, "field")
}
