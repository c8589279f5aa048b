package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/weavego/internal/app"
)

func TestParse_Success(t *testing.T) {
	// --- Arrange ---
	out := &bytes.Buffer{}
	args := []string{"--component", "todo-list", "--log-level", "DEBUG", "--frame-interval", "10ms", "site/"}

	// --- Act ---
	cfg, exit, err := Parse(args, out)

	// --- Assert ---
	require.NoError(t, err)
	assert.False(t, exit)
	assert.Equal(t, &app.Config{
		ConfigPath:    "site/",
		Component:     "todo-list",
		LogLevel:      "debug",
		FrameInterval: 10 * time.Millisecond,
	}, cfg)
}

func TestParse_ExitsCleanly(t *testing.T) {
	testCases := []struct {
		name string
		args []string
	}{
		{name: "help", args: []string{"--help"}},
		{name: "no config path", args: []string{"--log-format", "json"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := &bytes.Buffer{}

			cfg, exit, err := Parse(tc.args, out)

			require.NoError(t, err)
			assert.True(t, exit)
			assert.Nil(t, cfg)
			assert.Contains(t, out.String(), "Usage:")
		})
	}
}

func TestParse_Errors(t *testing.T) {
	testCases := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown flag", args: []string{"--nope", "a.hcl"}, want: "unknown flag: --nope"},
		{name: "bad format", args: []string{"--log-format", "xml", "a.hcl"}, want: "invalid log-format"},
		{name: "bad level", args: []string{"--log-level", "loud", "a.hcl"}, want: "invalid log-level"},
		{name: "negative interval", args: []string{"--frame-interval=-1s", "a.hcl"}, want: "must not be negative"},
		{name: "two paths", args: []string{"a.hcl", "b.hcl"}, want: "expected one CONFIG_PATH"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := Parse(tc.args, &bytes.Buffer{})

			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, 2, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.want)
		})
	}
}
