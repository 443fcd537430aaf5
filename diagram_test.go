package textractor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWriteTreeDiagram(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	err := WriteTreeDiagram(&buf, []string{
		"src/a.py",
		"src/sub/b.py",
		"README.md",
	})
	assert.NoError(err)

	expected := strings.TrimLeft(`
├── README.md
└── src/
    ├── a.py
    └── sub/
        └── b.py
`, "\n")
	assert.Equal(expected, buf.String())
}

func TestWriteTreeDiagram_Empty(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	assert.NoError(WriteTreeDiagram(&buf, nil))
	assert.Empty(buf.String())
}
