package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"  Go 1.22 Released!  ", "go-1-22-released"},
		{"UPPER case", "upper-case"},
		{"multiple   spaces -- and dashes", "multiple-spaces-and-dashes"},
		{"---", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.title), "title %q", tt.title)
	}
}

func TestDefaultURI(t *testing.T) {
	assert.Equal(t, "hello-world.html", DefaultURI("Hello World"))
	assert.Equal(t, "post.html", DefaultURI("!!!"))
}
