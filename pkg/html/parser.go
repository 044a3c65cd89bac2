package html

import (
	"fmt"
)

type Parser struct {
	tokenizer *Tokenizer
	doc       *Document
	stack     []*Node
}

func NewParser(src string) *Parser {
	return &Parser{
		tokenizer: NewTokenizer(src),
		doc:       NewDocument(),
	}
}

func (p *Parser) Parse() (*Document, error) {
	p.stack = []*Node{p.doc.Root}

	for {
		token, err := p.tokenizer.NextToken()
		if err != nil {
			return nil, fmt.Errorf("tokenizer error: %w", err)
		}
		switch token.Type {
		case TokenEOF:
			return p.doc, nil

		case TokenStartTag:
			switch token.TagName {
			case "style":
				p.doc.Stylesheets = append(p.doc.Stylesheets, p.tokenizer.ReadRawUntil("style"))
				continue
			case "script":
				p.doc.Scripts = append(p.doc.Scripts, p.tokenizer.ReadRawUntil("script"))
				continue
			}
			node := &Node{
				Type:       ElementNode,
				TagName:    token.TagName,
				Attributes: token.Attributes,
				Children:   make([]*Node, 0),
			}
			p.current().AddChild(node)
			if !token.SelfClosing && !isVoidElement(token.TagName) {
				p.stack = append(p.stack, node)
			}

		case TokenText:
			p.current().AppendText(token.Text)

		case TokenEndTag:
			p.close(token.TagName)
		}
	}
}

func (p *Parser) current() *Node {
	return p.stack[len(p.stack)-1]
}

// close pops up to and including the nearest open element named tag.
// Stray end tags are ignored.
func (p *Parser) close(tag string) {
	for i := len(p.stack) - 1; i >= 1; i-- {
		if p.stack[i].TagName == tag {
			p.stack = p.stack[:i]
			return
		}
	}
}

func Parse(src string) (*Document, error) {
	return NewParser(src).Parse()
}
