package hookrunner

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnum(t *testing.T) {
	assert.Equal(t, "UNKNOWN", UNKNOWN.String())
	assert.Equal(t, 0, UNKNOWN.EnumIndex())
	assert.Equal(t, "CHANGED", CHANGED.String())
	assert.Equal(t, 1, CHANGED.EnumIndex())
	assert.Equal(t, "REMOVED", REMOVED.String())
	assert.Equal(t, 2, REMOVED.EnumIndex())
}

func TestShouldReport(t *testing.T) {
	includes := []regexp.Regexp{
		*regexp.MustCompile(`\.foo$`),
		*regexp.MustCompile(`\.bar$`),
	}
	excludes := []regexp.Regexp{
		*regexp.MustCompile(`ignore`),
	}
	testCases := []struct {
		desc     string
		includes []regexp.Regexp
		excludes []regexp.Regexp
		path     string
		expected bool
	}{
		{
			desc:     "included",
			includes: includes,
			excludes: excludes,
			path:     "/tmp/w/a.foo",
			expected: true,
		},
		{
			desc:     "not included",
			includes: includes,
			excludes: excludes,
			path:     "/tmp/w/a.baz",
			expected: false,
		},
		{
			desc:     "included then excluded",
			includes: includes,
			excludes: excludes,
			path:     "/tmp/w/ignore.foo",
			expected: false,
		},
		{
			desc:     "empty include list matches everything",
			excludes: excludes,
			path:     "/tmp/w/a.baz",
			expected: true,
		},
		{
			desc:     "empty include list still excluded",
			excludes: excludes,
			path:     "/tmp/w/ignore.baz",
			expected: false,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(
				t,
				tc.expected,
				shouldReport(tc.includes, tc.excludes, tc.path),
			)
		})
	}
}
