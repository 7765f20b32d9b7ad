package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildContextBlock(t *testing.T) {
	passages := []Passage{
		{Text: "  Automatic fire hydrant system required.  ", Clause: "5.1.1", Page: "312"},
		{Text: "Staircase pressurization rules.", Clause: "", Page: ""},
	}

	block := buildContextBlock(passages)

	assert.Contains(t, block, "[1] Page 312 | Clause 5.1.1:\nAutomatic fire hydrant system required.\n\n")
	assert.Contains(t, block, "[2] Page Unknown | Clause N/A:\nStaircase pressurization rules.\n\n")

	// Entries are blank-line separated and 1-based.
	assert.True(t, strings.Index(block, "[1]") < strings.Index(block, "[2]"))
}

func TestBuildContextBlockEmpty(t *testing.T) {
	assert.Equal(t, "", buildContextBlock(nil))
}

func TestBuildPrompt(t *testing.T) {
	passages := []Passage{{Text: "Table 8 sizes of mains.", Clause: "5.1.1(a)", Page: "312"}}
	prompt := buildPrompt(passages, "size of mains for educational buildings")

	assert.Contains(t, prompt, "senior building code consultant")
	assert.Contains(t, prompt, "Table 8 sizes of mains.")
	assert.Contains(t, prompt, "Question: size of mains for educational buildings")

	// The Size of Mains shortcut rule must survive verbatim.
	assert.Contains(t, prompt, "Reference Clause 5.1.1(a) and Page 312 whenever answering Size of Mains related queries.")
}
