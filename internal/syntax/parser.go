package syntax

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
)

// ErrUnsupportedLanguage is returned by NewParser for languages without a grammar.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Parser turns source text into an immutable Tree.
// It is safe for concurrent use; each Parse call builds its own tree-sitter parser.
type Parser struct {
	lang     *sitter.Language
	langName string
}

// NewParser creates a parser for a given language.
func NewParser(lang string) (*Parser, error) {
	switch lang {
	case "csharp", "c#", "cs":
		return &Parser{lang: csharp.GetLanguage(), langName: "csharp"}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
}

// Language returns the canonical language name.
func (p *Parser) Language() string {
	return p.langName
}

// Extensions returns the file extensions this parser handles.
func (p *Parser) Extensions() []string {
	return []string{".cs"}
}

// ParseFile reads and parses a single source file.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Tree, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return p.Parse(ctx, path, src)
}

// Parse parses src and snapshots the result. The returned Tree holds no
// tree-sitter resources and can be shared between goroutines.
func (p *Parser) Parse(ctx context.Context, path string, src []byte) (*Tree, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(p.lang)

	st, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse file %s: %w", path, err)
	}
	defer st.Close()

	tree := &Tree{Path: path, Source: src}
	root := st.RootNode()
	tree.hasErrors = root.HasError()

	cursor := sitter.NewTreeCursor(root)
	defer cursor.Close()
	tree.Root = tree.snapshot(cursor, nil, 0)
	return tree, nil
}

func (t *Tree) snapshot(c *sitter.TreeCursor, parent *Node, index int) *Node {
	sn := c.CurrentNode()
	n := &Node{
		Kind:   sn.Type(),
		Field:  c.CurrentFieldName(),
		Named:  sn.IsNamed(),
		Span:   spanOf(sn),
		tree:   t,
		parent: parent,
		index:  index,
	}
	if c.GoToFirstChild() {
		i := 0
		for {
			n.children = append(n.children, t.snapshot(c, n, i))
			i++
			if !c.GoToNextSibling() {
				break
			}
		}
		c.GoToParent()
	}
	return n
}

func spanOf(n *sitter.Node) Span {
	start, end := n.StartPoint(), n.EndPoint()
	return Span{
		StartByte: toInt(n.StartByte()),
		EndByte:   toInt(n.EndByte()),
		Start:     Point{Line: toInt(start.Row) + 1, Column: toInt(start.Column)},
		End:       Point{Line: toInt(end.Row) + 1, Column: toInt(end.Column)},
	}
}

func toInt(v uint32) int {
	n, err := safecast.Conv[int](v)
	if err != nil {
		return math.MaxInt
	}
	return n
}
