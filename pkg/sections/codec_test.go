// pkg/sections/codec_test.go
// TEST TYPE: Unit Tests
// DEPENDENCIES: None
// PURPOSE: Test exclude-section parsing, extraction and local merge

package sections_test

import (
	"strings"
	"testing"

	"github.com/arthur-debert/drifters/pkg/errors"
	"github.com/arthur-debert/drifters/pkg/sections"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const taggedLocal = `export PATH=$HOME/bin:$PATH
# drifters::exclude::start
export TOKEN=secret
export WORK=1
# drifters::exclude::stop
alias ll='ls -la'
`

func TestExtractSyncable_NoTags(t *testing.T) {
	content := "alias a\nalias b\n"

	out, ok, err := sections.ExtractSyncable(content, "#")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, content, out)
}

func TestExtractSyncable_RemovesBodies(t *testing.T) {
	out, ok, err := sections.ExtractSyncable(taggedLocal, "#")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `export PATH=$HOME/bin:$PATH
# drifters::exclude::start
# drifters::exclude::stop
alias ll='ls -la'
`, out)
	assert.NotContains(t, out, "secret")
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		content string
		prefix  string
	}{
		{name: "single_section", content: taggedLocal, prefix: "#"},
		{
			name:    "two_sections_no_trailing_newline",
			content: "a\n// drifters::exclude::start\nx\n// drifters::exclude::stop\nb\n//drifters::exclude::start note\ny\n//drifters::exclude::stop",
			prefix:  "//",
		},
		{
			name:    "crlf_terminators",
			content: "a\r\n-- drifters::exclude::start\r\nlocal\r\n-- drifters::exclude::stop\r\nb\r\n",
			prefix:  "--",
		},
		{
			name:    "indented_tags",
			content: "[user]\n    # drifters::exclude::start\n    email = me@work\n    # drifters::exclude::stop\n",
			prefix:  "#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			syncable, ok, err := sections.ExtractSyncable(tt.content, tt.prefix)
			require.NoError(t, err)
			require.True(t, ok)

			merged, err := sections.MergeLocal(tt.content, syncable, tt.prefix)
			require.NoError(t, err)
			assert.Equal(t, tt.content, merged)
		})
	}
}

func TestMergeLocal_PreservesLocalBody(t *testing.T) {
	local := "old line\n# drifters::exclude::start\nX\n# drifters::exclude::stop\n"
	incoming := "new line\n# drifters::exclude::start\n# drifters::exclude::stop\nadded\n"

	merged, err := sections.MergeLocal(local, incoming, "#")
	require.NoError(t, err)
	assert.Equal(t, "new line\n# drifters::exclude::start\nX\n# drifters::exclude::stop\nadded\n", merged)
}

func TestMergeLocal_MatchesByOrdinal(t *testing.T) {
	local := strings.Join([]string{
		"# drifters::exclude::start", "first", "# drifters::exclude::stop",
		"# drifters::exclude::start", "second", "# drifters::exclude::stop",
	}, "\n") + "\n"
	incoming := strings.Join([]string{
		"top",
		"# drifters::exclude::start", "# drifters::exclude::stop",
		"middle",
		"# drifters::exclude::start", "# drifters::exclude::stop",
		"# drifters::exclude::start", "remote third", "# drifters::exclude::stop",
	}, "\n") + "\n"

	merged, err := sections.MergeLocal(local, incoming, "#")
	require.NoError(t, err)

	assert.Equal(t, strings.Join([]string{
		"top",
		"# drifters::exclude::start", "first", "# drifters::exclude::stop",
		"middle",
		"# drifters::exclude::start", "second", "# drifters::exclude::stop",
		"# drifters::exclude::start", "remote third", "# drifters::exclude::stop",
	}, "\n")+"\n", merged)
}

func TestMergeLocal_LocalWithoutTrailingNewline(t *testing.T) {
	local := "a\n# drifters::exclude::start\nX\n# drifters::exclude::stop"
	incoming := "a\n# drifters::exclude::start\n# drifters::exclude::stop\nb\n"

	merged, err := sections.MergeLocal(local, incoming, "#")
	require.NoError(t, err)
	assert.Equal(t, "a\n# drifters::exclude::start\nX\n# drifters::exclude::stop\nb\n", merged)
}

func TestMergeLocal_IncomingWithoutTags(t *testing.T) {
	merged, err := sections.MergeLocal(taggedLocal, "replaced\n", "#")
	require.NoError(t, err)
	assert.Equal(t, "replaced\n", merged)
}

func TestUnclosedTag(t *testing.T) {
	content := "a\n# drifters::exclude::start\nsecret\nb\n"

	_, _, err := sections.ExtractSyncable(content, "#")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedContent))
	assert.Equal(t, "add a matching stop tag", errors.Hint(err))
	assert.Equal(t, 2, errors.GetErrorDetails(err)["line"])

	_, err = sections.Parse(content, "#")
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedContent))

	_, err = sections.MergeLocal(content, "x\n", "#")
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedContent))

	_, err = sections.MergeLocal("x\n", content, "#")
	assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedContent))
}

func TestParse_TagRecognition(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		sections int
	}{
		{
			name:     "inline_tag_is_not_a_tag",
			content:  "echo hi # drifters::exclude::start\n",
			sections: 0,
		},
		{
			name:     "orphan_stop_is_synced",
			content:  "# drifters::exclude::stop\nplain\n",
			sections: 0,
		},
		{
			name:     "nested_start_is_body",
			content:  "# drifters::exclude::start\n# drifters::exclude::start\n# drifters::exclude::stop\n",
			sections: 1,
		},
		{
			name:     "other_prefix_ignored",
			content:  "// drifters::exclude::start\n",
			sections: 0,
		},
		{
			name:     "longer_word_is_not_a_tag",
			content:  "# drifters::exclude::startled\n# drifters::exclude::stopped\n",
			sections: 0,
		},
		{
			name:     "trailing_text_after_marker",
			content:  "# drifters::exclude::start local only\nx\n# drifters::exclude::stop\r\n",
			sections: 1,
		},
		{
			name:     "marker_at_end_of_file",
			content:  "# drifters::exclude::start\nx\n# drifters::exclude::stop",
			sections: 1,
		},
		{
			name:     "no_space_after_prefix",
			content:  "#drifters::exclude::start\nx\n#drifters::exclude::stop\n",
			sections: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := sections.Parse(tt.content, "#")
			require.NoError(t, err)
			assert.Len(t, doc.Sections(), tt.sections)
			assert.Equal(t, tt.content, doc.String())
		})
	}
}

func TestParse_Spans(t *testing.T) {
	doc, err := sections.Parse(taggedLocal, "#")
	require.NoError(t, err)
	require.Len(t, doc.Spans, 3)

	head, ok := doc.Spans[0].(sections.SyncedSpan)
	require.True(t, ok)
	assert.Equal(t, []string{"export PATH=$HOME/bin:$PATH\n"}, head.Lines)

	region, ok := doc.Spans[1].(sections.LocalOnlySpan)
	require.True(t, ok)
	assert.Equal(t, "# drifters::exclude::start\n", region.Start)
	assert.Equal(t, []string{"export TOKEN=secret\n", "export WORK=1\n"}, region.Body)
	assert.Equal(t, "# drifters::exclude::stop\n", region.Stop)

	_, ok = doc.Spans[2].(sections.SyncedSpan)
	assert.True(t, ok)
}

func TestCommentPrefix(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{".bashrc", "#"},
		{".zshrc", "#"},
		{"config.toml", "#"},
		{".gitconfig", "#"},
		{"settings.json", "//"},
		{"settings.local.json", "//"},
		{"init.lua", "--"},
		{"schema.SQL", "--"},
		{".vimrc", `"`},
		{"_vimrc", `"`},
		{"plugins.vim", `"`},
		{"main.go", "//"},
		{"README", "#"},
		{"archive.tar.gz", "#"},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, sections.CommentPrefix(tt.filename))
		})
	}
}
