package parser

import "strings"

const fence = "```"

// NoCodeFound is returned by ExtractPython when the document has no python block.
const NoCodeFound = "No code found."

// PythonTags are the fence tags treated as python.
var PythonTags = []string{"python", "py"}

// ExtractCode returns the bodies of all fenced blocks whose opening fence is
// tagged with one of tags, in document order, joined by one blank line.
//
// An opening fence is a line that reads exactly ```<tag> (surrounding
// whitespace ignored); the block ends at the next line starting with ```.
// Outside a block, fence lines with other tags are ignored, so a tagged
// fence nested in or following another block still opens a block. A block
// still open at the end of the document is not matched. ok is false when
// nothing matched.
func ExtractCode(body string, tags ...string) (code string, ok bool) {
	var (
		blocks []string
		cur    []string
		open   bool
	)

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSuffix(line, "\r")
		trimmed := strings.TrimSpace(line)
		isFence := strings.HasPrefix(trimmed, fence)

		switch {
		case open && isFence:
			blocks = append(blocks, strings.Join(cur, "\n"))
			open = false
		case open:
			cur = append(cur, line)
		case isFence && hasTag(trimmed[len(fence):], tags):
			open = true
			cur = cur[:0]
		}
	}

	if len(blocks) == 0 {
		return "", false
	}
	return strings.Join(blocks, "\n\n"), true
}

// ExtractPython extracts python blocks, or returns NoCodeFound.
func ExtractPython(body string) string {
	code, ok := ExtractCode(body, PythonTags...)
	if !ok {
		return NoCodeFound
	}
	return code
}

func hasTag(info string, tags []string) bool {
	info = strings.TrimSpace(info)
	for _, t := range tags {
		if info == t {
			return true
		}
	}
	return false
}
