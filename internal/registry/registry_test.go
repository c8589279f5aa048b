package registry_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/registry"
	"github.com/vk/weavego/internal/template"
)

type noop struct{}

func (noop) Process(context.Context) (bool, error) { return false, nil }
func (noop) Update(context.Context) (bool, error)  { return false, nil }
func (noop) Cleanup()                              {}

type noopStructural struct{}

func (noopStructural) Process(context.Context) ([]registry.Item, error) { return nil, nil }
func (noopStructural) Update(context.Context) (bool, error)             { return false, nil }
func (noopStructural) Cleanup()                                         {}

func static(name, pattern string, access registry.Access) *registry.StaticDescriptor {
	return &registry.StaticDescriptor{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		Access:  access,
		New:     func(*registry.Context) (registry.StaticModule, error) { return noop{}, nil },
	}
}

func structural(name, pattern string) *registry.StructuralDescriptor {
	return &registry.StructuralDescriptor{
		Name:    name,
		Pattern: regexp.MustCompile(pattern),
		New:     func(*registry.Context) (registry.StructuralModule, error) { return noopStructural{}, nil },
	}
}

func element(attrs ...string) *template.Node {
	n := &template.Node{Type: template.ElementNode, Tag: "div"}
	for _, a := range attrs {
		n.Attrs = append(n.Attrs, template.Attr{Name: a, Value: "v"})
	}
	return n
}

func TestRegister_DuplicatePanics(t *testing.T) {
	r := registry.New()
	r.Register(static("let", `^let-`, registry.Write))

	require.PanicsWithValue(t, "module with name 'let' already registered", func() {
		r.Register(structural("let", `^\*let$`))
	})
}

func TestRegister_InvalidDescriptorPanics(t *testing.T) {
	r := registry.New()
	require.Panics(t, func() {
		r.Register(&registry.StaticDescriptor{Name: "broken"})
	})
}

func TestReset(t *testing.T) {
	r := registry.New()
	r.Register(static("let", `^let-`, registry.Write))
	require.Equal(t, 1, r.Len())

	r.Reset()

	assert.Equal(t, 0, r.Len())
	assert.NotPanics(t, func() { r.Register(static("let", `^let-`, registry.Write)) })
}

func TestResolveStatic_ClaimsOnlyRequestedAccess(t *testing.T) {
	// --- Arrange ---
	r := registry.New()
	r.Register(static("let", `^let-(.+)$`, registry.Write))
	r.Register(static("bind", `^\[(.+)\]$`, registry.Read))
	buffer := element("let-x", "[title]", "plain")

	// --- Act ---
	writes, err := r.ResolveStatic(buffer, registry.Write, false)

	// --- Assert ---
	require.NoError(t, err)
	require.Len(t, writes, 1)
	assert.Equal(t, "let", writes[0].Descriptor.Name)
	assert.Equal(t, []string{"let-x", "x"}, writes[0].Match)
	assert.Equal(t, []string{"[title]", "plain"}, buffer.AttrNames(), "claimed attributes leave the buffer")

	reads, err := r.ResolveStatic(buffer, registry.Read, false)
	require.NoError(t, err)
	require.Len(t, reads, 1)
	assert.Equal(t, []string{"plain"}, buffer.AttrNames())
}

func TestResolveStatic_FirstMatchingDescriptorWins(t *testing.T) {
	r := registry.New()
	r.Register(static("class", `^\[class\.(.+)\]$`, registry.Read))
	r.Register(static("bind", `^\[(.+)\]$`, registry.ReadWrite))
	buffer := element("[class.done]")

	rw, err := r.ResolveStatic(buffer, registry.ReadWrite, false)
	require.NoError(t, err)
	assert.Empty(t, rw, "the attribute belongs to the earlier Read descriptor")

	read, err := r.ResolveStatic(buffer, registry.Read, false)
	require.NoError(t, err)
	require.Len(t, read, 1)
	assert.Equal(t, "class", read[0].Descriptor.Name)
}

func TestResolveStatic_ContractViolations(t *testing.T) {
	t.Run("write module declaring mutation", func(t *testing.T) {
		r := registry.New()
		d := static("bad", `^bad$`, registry.Write)
		d.MutatesAttributes = true
		r.Register(d)

		_, err := r.ResolveStatic(element("bad"), registry.Write, false)

		require.Error(t, err)
		assert.True(t, errors.Is(err, fault.ErrModuleContractViolation))
	})

	t.Run("forbidden inside structural scope", func(t *testing.T) {
		r := registry.New()
		d := static("ref", `^#`, registry.Write)
		d.ForbiddenInStructural = true
		r.Register(d)

		_, err := r.ResolveStatic(element("#item"), registry.Write, false)
		require.NoError(t, err)

		_, err = r.ResolveStatic(element("#item"), registry.Write, true)
		require.ErrorIs(t, err, fault.ErrModuleContractViolation)
	})
}

func TestResolveStructural(t *testing.T) {
	r := registry.New()
	r.Register(structural("repeat", `^\*repeat$`))
	r.Register(structural("if", `^\*if$`))

	t.Run("claims the single directive", func(t *testing.T) {
		buffer := element("class", "*repeat")
		require.True(t, r.IsStructural(buffer))

		got, err := r.ResolveStructural(buffer)

		require.NoError(t, err)
		assert.Equal(t, "repeat", got.Descriptor.Name)
		assert.Equal(t, []string{"class"}, buffer.AttrNames())
	})

	t.Run("two directives violate the contract", func(t *testing.T) {
		_, err := r.ResolveStructural(element("*if", "*repeat"))
		require.ErrorIs(t, err, fault.ErrModuleContractViolation)
	})

	t.Run("missing directive fails resolution", func(t *testing.T) {
		buffer := element("class")
		assert.False(t, r.IsStructural(buffer))

		_, err := r.ResolveStructural(buffer)
		require.ErrorIs(t, err, fault.ErrResolutionFailure)
	})
}

func TestResolveExpression(t *testing.T) {
	r := registry.New()
	r.Register(&registry.ExpressionDescriptor{
		Name:    "interpolate",
		Pattern: regexp.MustCompile(`.*`),
		New:     func(*registry.Context) (registry.ExpressionModule, error) { return nil, nil },
	})

	d := r.ResolveExpression(registry.TextAttr)
	require.NotNil(t, d)
	assert.Equal(t, "interpolate", d.Name)
	assert.Equal(t, map[registry.Kind][]string{registry.Expression: {"interpolate"}}, r.Names())
}
