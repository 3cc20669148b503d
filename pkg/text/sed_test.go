package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Replace(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		input string
		want  string
	}{
		{
			name:  "simple_replacement",
			expr:  "s/b/B/",
			input: "a/b.txt",
			want:  "a/B.txt",
		},
		{
			name:  "first_match_only",
			expr:  "s/o/0/",
			input: "foo/boo",
			want:  "f0o/boo",
		},
		{
			name:  "global_flag",
			expr:  "s/o/0/g",
			input: "foo/boo",
			want:  "f00/b00",
		},
		{
			name:  "case_insensitive",
			expr:  "s/readme/README/i",
			input: "docs/ReadMe.md",
			want:  "docs/README.md",
		},
		{
			name:  "alternate_delimiter",
			expr:  "s#logs/#archive/logs/#",
			input: "logs/2024.txt",
			want:  "archive/logs/2024.txt",
		},
		{
			name:  "escaped_delimiter",
			expr:  `s/a\/b/c/`,
			input: "x/a/b",
			want:  "x/c",
		},
		{
			name:  "native_groups",
			expr:  `s/(\d+)-(\d+)/${2}-${1}/`,
			input: "img/10-20.png",
			want:  "img/20-10.png",
		},
		{
			name:  "anonymous_groups",
			expr:  `s/(\d+)-(\d+)/\2-\1/`,
			input: "img/10-20.png",
			want:  "img/20-10.png",
		},
		{
			name:  "anonymous_group_followed_by_letter",
			expr:  `s/(a)/\1b/`,
			input: "cat",
			want:  "cabt",
		},
		{
			name:  "no_match",
			expr:  "s/zzz/y/",
			input: "a/b.txt",
			want:  "a/b.txt",
		},
		{
			name:  "empty_replacement",
			expr:  "s/\\.bak$//",
			input: "data/file.csv.bak",
			want:  "data/file.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr, err := Parse(tt.expr)
			require.NoError(t, err)
			assert.Equal(t, tt.want, expr.Replace(tt.input))
			assert.Equal(t, tt.expr, expr.String())
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		wantError string
	}{
		{name: "not_substitution", expr: "y/a/b/", wantError: "must start with 's'"},
		{name: "missing_delimiter", expr: "s", wantError: "missing a delimiter"},
		{name: "letter_delimiter", expr: "sxaxbx", wantError: "invalid delimiter"},
		{name: "unterminated", expr: "s/a/b", wantError: "expected 2 sections"},
		{name: "unknown_flag", expr: "s/a/b/q", wantError: "unsupported flag"},
		{name: "empty_pattern", expr: "s//b/", wantError: "empty pattern"},
		{name: "bad_regexp", expr: "s/(a/b/", wantError: "missing closing )"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.expr)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidExpression)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestParse_FlagsCompileInline(t *testing.T) {
	expr, err := Parse("s/a.b/x/gis")
	require.NoError(t, err)
	assert.True(t, expr.Global())
	assert.Equal(t, "(?is)a.b", expr.Pattern())
}

func TestParse_AnonymousGroupsMatchNativeSyntax(t *testing.T) {
	inputs := []string{"2024-01/report.csv", "x/1999-12/a", "nothing-here", ""}

	anon, err := Parse(`s/(\d{4})-(\d{2})/\2.\1/g`)
	require.NoError(t, err)
	native, err := Parse(`s/(\d{4})-(\d{2})/${2}.${1}/g`)
	require.NoError(t, err)

	for _, in := range inputs {
		assert.Equal(t, native.Replace(in), anon.Replace(in), "input %q", in)
	}
}

func TestParse_AnonymousGroupsDisabled(t *testing.T) {
	expr, err := Parse(`s/(a)/[\1]/`, WithAnonymousCaptureGroups(false))
	require.NoError(t, err)
	assert.Equal(t, `c[\1]t`, expr.Replace("cat"))
	assert.Equal(t, `[\1]`, expr.ReplacementTemplate())
}

func TestRewriteAnonymousCaptureGroups(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `s/(a)/\1/`, want: `s/(a)/${1}/`},
		{in: `s/(a)(b)/\2\1/`, want: `s/(a)(b)/${2}${1}/`},
		{in: `s/a/b/`, want: `s/a/b/`},
		{in: `s/(a)/\12/`, want: `s/(a)/${1}2/`},
		// literal backslash before a digit is rewritten too
		{in: `s/a/\\1/`, want: `s/a/\${1}/`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RewriteAnonymousCaptureGroups(tt.in))
		})
	}
}
