package parser

import "testing"

func TestExtractCode_TwoBlocksEitherTag(t *testing.T) {
	for _, tags := range [][2]string{{"python", "python"}, {"py", "py"}, {"python", "py"}} {
		body := "# Title\n```" + tags[0] + "\nx=1\n```\nsome prose\n```" + tags[1] + "\ny=2\n```\n"
		got := ExtractPython(body)
		if got != "x=1\n\ny=2" {
			t.Errorf("tags %v: got %q, want %q", tags, got, "x=1\n\ny=2")
		}
	}
}

func TestExtractPython_NoBlocksReturnsSentinel(t *testing.T) {
	for _, body := range []string{"", "just text", "```js\nconsole.log(1)\n```\n"} {
		if got := ExtractPython(body); got != NoCodeFound {
			t.Errorf("body %q: got %q, want sentinel", body, got)
		}
	}
}

func TestExtractCode_UnsupportedTagIgnored(t *testing.T) {
	body := "```bash\npip install instructor\n```\n```python\nimport instructor\n```\n"
	got, ok := ExtractCode(body, PythonTags...)
	if !ok || got != "import instructor" {
		t.Errorf("got %q ok=%v", got, ok)
	}
}

func TestExtractCode_UnterminatedFenceIsNoMatch(t *testing.T) {
	body := "```python\na = 1\n```\n\n```python\nb = 2\nnever closed"
	got, ok := ExtractCode(body, PythonTags...)
	if !ok || got != "a = 1" {
		t.Errorf("got %q ok=%v, want only the terminated block", got, ok)
	}

	if got := ExtractPython("```py\nonly = 'open'\n"); got != NoCodeFound {
		t.Errorf("lone unterminated fence: got %q", got)
	}
}

func TestExtractCode_MultilineAndIndentation(t *testing.T) {
	body := "1. Step\n\n    ```python\n    def f():\n        return 1\n    ```\n"
	got, ok := ExtractCode(body, PythonTags...)
	if !ok {
		t.Fatal("expected a match for an indented fence")
	}
	if got != "    def f():\n        return 1" {
		t.Errorf("got %q", got)
	}
}

func TestExtractCode_CRLF(t *testing.T) {
	body := "```python\r\nx = 1\r\ny = 2\r\n```\r\n"
	got, ok := ExtractCode(body, PythonTags...)
	if !ok || got != "x = 1\ny = 2" {
		t.Errorf("got %q ok=%v", got, ok)
	}
}

func TestExtractCode_OtherTagsIgnored(t *testing.T) {
	body := "```text\nprint('not python')\n```\n```python\nreal = True\n```\n"
	got, ok := ExtractCode(body, PythonTags...)
	if !ok || got != "real = True" {
		t.Errorf("got %q ok=%v", got, ok)
	}
}

func TestExtractPython_NestedInOtherBlock(t *testing.T) {
	body := "````markdown\n```python\nx=1\n```\n````\n"
	if got := ExtractPython(body); got != "x=1" {
		t.Errorf("got %q, want %q", got, "x=1")
	}
}

func TestExtractPython_AfterUnclosedOtherBlock(t *testing.T) {
	body := "```bash\npip install instructor\n\n```python\nimport instructor\n```\n"
	if got := ExtractPython(body); got != "import instructor" {
		t.Errorf("got %q, want %q", got, "import instructor")
	}
}

func TestExtractPython_SequentialBlocksAroundOtherFences(t *testing.T) {
	body := "```python\na = 1\n```\n```bash\nls\n```\n```py\nb = 2\n```\n"
	if got := ExtractPython(body); got != "a = 1\n\nb = 2" {
		t.Errorf("got %q", got)
	}
}

func TestExtractCode_TagMustMatchExactly(t *testing.T) {
	body := "```python3\nx = 1\n```\n```pyth\ny = 2\n```\n"
	if _, ok := ExtractCode(body, PythonTags...); ok {
		t.Error("python3 and pyth must not match")
	}
}

func TestExtractCode_EmptyBlock(t *testing.T) {
	got, ok := ExtractCode("```py\n```\n", PythonTags...)
	if !ok || got != "" {
		t.Errorf("got %q ok=%v", got, ok)
	}
}
