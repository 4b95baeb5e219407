package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeName(t *testing.T) {
	cases := []struct {
		appID      int64
		serviceDir string
		service    string
		want       string
	}{
		{100, "/a/", "b", "/100/a/b"},
		{100, "a", "b", "/100/a/b"},
		{100, "", "b", "/100/b"},
		{100, "/a", "b", "/100/a/b"},
	}
	for _, c := range cases {
		got := MakeName(c.appID, c.serviceDir, c.service)
		assert.Equal(t, c.want, got)
		assert.True(t, IsCanonical(got))
	}
}

func TestMakeTbusppUrl(t *testing.T) {
	assert.Equal(t, "tbuspp://100.a.b/9", MakeTbusppUrl("/100/a/b", 9))
}

func TestFormatNameStr(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a.b.c", "/a/b/c"},
		{"/a/b/", "/a/b"},
		{"a/b", "/a/b"},
		{"/", "/"},
	}
	for _, c := range cases {
		got, err := FormatNameStr(c.in)
		require.NoError(t, err)
		assert.Equal(t, c.want, got)
	}
}

func TestFormatNameStrEmptyFails(t *testing.T) {
	_, err := FormatNameStr("")
	require.Error(t, err)
}

func TestFormatNameStrIdempotent(t *testing.T) {
	once, err := FormatNameStr("a.b.c")
	require.NoError(t, err)

	twice, err := FormatNameStr(once)
	require.NoError(t, err)

	assert.Equal(t, once, twice)
}

func TestMakeNameNeverDoublesSlashes(t *testing.T) {
	got := MakeName(1, "//a//", "//b")
	assert.NotContains(t, got, "//")
	assert.Equal(t, byte('/'), got[0])
}
