package mcpserver

import (
	"strings"

	"github.com/starford/cookhub/internal/hubservice"
)

// ManifestFormatURI is the resource URI of the manifest format description.
const ManifestFormatURI = "cookhub://manifest-format"

// manifestFormatTemplate describes how the hub catalog is derived from the
// navigation manifest. {{group}}, {{manifest}} and {{content}} are filled in
// from the service options.
const manifestFormatTemplate = `# Cookhub Manifest Format

The catalog of a branch is read from the navigation manifest ` + "`{{manifest}}`" + ` at
the root of that branch.

## Structure

` + "```" + `yaml
nav:
  - Home: index.md
  - {{group}}:                     # catalog group, matched by exact label
      - Introduction: {{content}}/index.md   # excluded (slug "index")
      - Streaming: {{content}}/streaming.md  # id 1, slug "streaming"
      - Retries: {{content}}/retries.md      # id 2, slug "retries"
` + "```" + `

## Rules

1. Only the **first** top-level group labelled ` + "`{{group}}`" + ` is read. Other groups are ignored.
2. An entry's **id** is its zero-based position inside the group. Excluded
   entries keep their position, so ids may have gaps.
3. The **slug** is the last path segment without its extension.
4. Entries whose slug is ` + "`index`" + ` are not listed.
5. Entries without a ` + "`/`" + ` or without an extension are skipped. So are nested groups.
6. Page content is served from ` + "`{{content}}/<slug>.md`" + `, independent of the entry path.

## Code blocks

` + "`get_cookbook_code`" + ` returns every block opened by a line reading ` + "```python" + ` or
` + "```py" + `, up to the next fence line, in document order, separated by one blank
line. Fence lines with other tags never open a block, so a python block nested
in a markdown example is still returned. A python fence that is never closed
is ignored. A page without python blocks yields ` + "`No code found.`" + `
`

// ManifestFormat renders the format description for the given options.
func ManifestFormat(opts hubservice.Options) string {
	return strings.NewReplacer(
		"{{group}}", opts.CatalogGroup,
		"{{manifest}}", opts.ManifestPath,
		"{{content}}", strings.TrimSuffix(opts.ContentDir, "/"),
	).Replace(manifestFormatTemplate)
}
