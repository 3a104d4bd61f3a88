package ui

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestTable(t *testing.T) {
	color.NoColor = true
	var b strings.Builder
	Table(&b, []string{"ID", "TYPE"}, [][]string{{"1", "material"}, {"12", "object"}})
	assert.Equal(t, "  ID  TYPE\n  ──  ────────\n  1   material\n  12  object\n", b.String())
}

func TestTableEmpty(t *testing.T) {
	var b strings.Builder
	Table(&b, []string{"ID"}, nil)
	assert.Empty(t, b.String())
}

func TestStatusIcon(t *testing.T) {
	color.NoColor = true
	assert.Equal(t, "✓", StatusIcon(true))
	assert.Equal(t, "✗", StatusIcon(false))
}
