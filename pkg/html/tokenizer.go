package html

import (
	"fmt"
	gohtml "html"
	"strings"
	"unicode"
)

type TokenType int

const (
	TokenStartTag TokenType = iota
	TokenEndTag
	TokenText
	TokenEOF
)

type Token struct {
	Type        TokenType
	TagName     string
	Attributes  map[string]string
	Text        string
	SelfClosing bool
}

// Tokenizer splits markup into tags and text. Comments, doctypes and
// processing instructions are skipped.
type Tokenizer struct {
	input string
	pos   int
}

func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{input: src}
}

func (t *Tokenizer) NextToken() (Token, error) {
	for t.pos < len(t.input) {
		if t.input[t.pos] != '<' {
			if tok, ok := t.readText(); ok {
				return tok, nil
			}
			continue
		}
		switch {
		case strings.HasPrefix(t.input[t.pos:], "<!--"):
			t.skipPast("-->")
		case strings.HasPrefix(t.input[t.pos:], "<!"), strings.HasPrefix(t.input[t.pos:], "<?"):
			t.skipPast(">")
		default:
			return t.readTag()
		}
	}
	return Token{Type: TokenEOF}, nil
}

// readText consumes text up to the next '<'. Whitespace-only runs between
// tags are dropped and reported with ok=false.
func (t *Tokenizer) readText() (Token, bool) {
	end := strings.IndexByte(t.input[t.pos:], '<')
	if end < 0 {
		end = len(t.input) - t.pos
	}
	raw := t.input[t.pos : t.pos+end]
	t.pos += end
	if strings.TrimSpace(raw) == "" {
		return Token{}, false
	}
	text := strings.Join(strings.Fields(raw), " ")
	return Token{Type: TokenText, Text: gohtml.UnescapeString(text)}, true
}

func (t *Tokenizer) readTag() (Token, error) {
	start := t.pos
	t.pos++ // '<'
	end := false
	if t.peek() == '/' {
		end = true
		t.pos++
	}
	name := t.readName(isTagNameChar)
	if name == "" {
		return Token{}, fmt.Errorf("expected tag name at position %d", start)
	}
	if end {
		if !t.skipPast(">") {
			return Token{}, fmt.Errorf("unterminated end tag </%s> at position %d", name, start)
		}
		return Token{Type: TokenEndTag, TagName: name}, nil
	}

	tok := Token{Type: TokenStartTag, TagName: name, Attributes: make(map[string]string)}
	for {
		t.skipWhitespace()
		switch t.peek() {
		case 0:
			return Token{}, fmt.Errorf("unexpected EOF in <%s> at position %d", name, start)
		case '>':
			t.pos++
			return tok, nil
		case '/':
			t.pos++
			t.skipWhitespace()
			if t.peek() == '>' {
				t.pos++
				tok.SelfClosing = true
				return tok, nil
			}
			continue
		}
		attr := t.readName(isAttributeNameChar)
		if attr == "" {
			return Token{}, fmt.Errorf("expected attribute name at position %d", t.pos)
		}
		t.skipWhitespace()
		if t.peek() != '=' {
			tok.Attributes[attr] = ""
			continue
		}
		t.pos++
		t.skipWhitespace()
		val, err := t.readValue()
		if err != nil {
			return Token{}, err
		}
		tok.Attributes[attr] = gohtml.UnescapeString(val)
	}
}

func (t *Tokenizer) readValue() (string, error) {
	q := t.peek()
	if q == '"' || q == '\'' {
		t.pos++
		end := strings.IndexByte(t.input[t.pos:], q)
		if end < 0 {
			return "", fmt.Errorf("unterminated attribute value at position %d", t.pos)
		}
		val := t.input[t.pos : t.pos+end]
		t.pos += end + 1
		return val, nil
	}
	start := t.pos
	for t.pos < len(t.input) && !unicode.IsSpace(rune(t.input[t.pos])) && t.input[t.pos] != '>' {
		t.pos++
	}
	return t.input[start:t.pos], nil
}

// ReadRawUntil returns everything up to the closing tag (matched
// case-insensitively) and consumes the tag. Used for <script> and <style>.
func (t *Tokenizer) ReadRawUntil(tag string) string {
	needle := "</" + tag
	lower := strings.ToLower(t.input[t.pos:])
	idx := strings.Index(lower, needle)
	if idx < 0 {
		content := t.input[t.pos:]
		t.pos = len(t.input)
		return content
	}
	content := t.input[t.pos : t.pos+idx]
	t.pos += idx
	t.skipPast(">")
	return content
}

func (t *Tokenizer) readName(ok func(byte) bool) string {
	start := t.pos
	for t.pos < len(t.input) && ok(t.input[t.pos]) {
		t.pos++
	}
	return strings.ToLower(t.input[start:t.pos])
}

func (t *Tokenizer) peek() byte {
	if t.pos >= len(t.input) {
		return 0
	}
	return t.input[t.pos]
}

func (t *Tokenizer) skipWhitespace() {
	for t.pos < len(t.input) && unicode.IsSpace(rune(t.input[t.pos])) {
		t.pos++
	}
}

// skipPast advances beyond the next occurrence of s, or to EOF.
func (t *Tokenizer) skipPast(s string) bool {
	idx := strings.Index(t.input[t.pos:], s)
	if idx < 0 {
		t.pos = len(t.input)
		return false
	}
	t.pos += idx + len(s)
	return true
}

func isTagNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isAttributeNameChar(c byte) bool {
	return isTagNameChar(c) || c == ':' || c == '.'
}
