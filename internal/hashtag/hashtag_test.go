package hashtag

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantHTML string
		wantTags []string
	}{
		{
			name:     "no tags",
			content:  "just a photo of the sea",
			wantHTML: "just a photo of the sea",
			wantTags: []string{},
		},
		{
			name:     "single tag",
			content:  "golden #sunset",
			wantHTML: `golden <a href="/explore/tags/sunset/">#sunset</a>`,
			wantTags: []string{"sunset"},
		},
		{
			name:     "case sensitive",
			content:  "#Go and #go",
			wantHTML: `<a href="/explore/tags/Go/">#Go</a> and <a href="/explore/tags/go/">#go</a>`,
			wantTags: []string{"Go", "go"},
		},
		{
			name:     "digits and underscore",
			content:  "#day_1 #2024!",
			wantHTML: `<a href="/explore/tags/day_1/">#day_1</a> <a href="/explore/tags/2024/">#2024</a>!`,
			wantTags: []string{"day_1", "2024"},
		},
		{
			name:     "bare hash is not a tag",
			content:  "# nothing here #",
			wantHTML: "# nothing here #",
			wantTags: []string{},
		},
		{
			name:     "hangul",
			content:  "여행 #서울 좋다",
			wantHTML: `여행 <a href="/explore/tags/%EC%84%9C%EC%9A%B8/">#서울</a> 좋다`,
			wantTags: []string{"서울"},
		},
		{
			name:     "accented letters stay in the tag",
			content:  "#café time",
			wantHTML: `<a href="/explore/tags/caf%C3%A9/">#café</a> time`,
			wantTags: []string{"café"},
		},
		{
			name:     "mixed script",
			content:  "#Seoul서울_2024.",
			wantHTML: `<a href="/explore/tags/Seoul%EC%84%9C%EC%9A%B8_2024/">#Seoul서울_2024</a>.`,
			wantTags: []string{"Seoul서울_2024"},
		},
		{
			name:     "markup passes through",
			content:  "<b>bold</b> #x",
			wantHTML: `<b>bold</b> <a href="/explore/tags/x/">#x</a>`,
			wantTags: []string{"x"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, tags := Derive(tt.content)
			assert.Equal(t, tt.wantHTML, html)
			assert.Equal(t, tt.wantTags, tags)
		})
	}
}

func TestDerive_DuplicateTagLinksTwiceCountsOnce(t *testing.T) {
	html, tags := Derive("nice #sunset shot #sunset")

	assert.Equal(t, []string{"sunset"}, tags)
	assert.Equal(t, 2, strings.Count(html, `<a href="/explore/tags/sunset/">#sunset</a>`))
}

func TestExtract_FromDerivedHTMLIsStable(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"#a #b #a",
		"mixed #Tag_1, #tag_1 and #日本",
		"edge##double and end#",
	}
	for _, in := range inputs {
		html, tags := Derive(in)
		assert.Equal(t, tags, Extract(html), "input %q", in)
	}
}

func TestTagPath(t *testing.T) {
	assert.Equal(t, "/explore/tags/sunset/", TagPath("sunset"))
}
