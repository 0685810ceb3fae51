// Package xml parses, checks and pretty-prints the lyric XML documents
// SongBridge writes, and runs XPath queries against them.
//
// Parsing goes through xmlquery, which uses encoding/xml and never fetches
// external entities. Validate additionally disables internal entity
// expansion.
package xml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/FocuswithJustin/SongBridge/core/encoding"
)

// Document is a parsed XML document.
type Document struct {
	root *xmlquery.Node
}

// Node is an element, text or attribute node of a Document.
type Node struct {
	node *xmlquery.Node
}

// ValidationResult reports whether a document is well formed.
type ValidationResult struct {
	Valid  bool
	Errors []ValidationError
}

// ValidationError locates one well-formedness error.
type ValidationError struct {
	Line    int
	Column  int
	Message string
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}

// FormatOptions controls Format.
type FormatOptions struct {
	Indent string // defaults to two spaces
	// Inline names elements written on one line exactly as parsed, even
	// when they hold only child elements.
	Inline []string
}

// Parse parses data into a Document.
func Parse(data []byte) (*Document, error) {
	root, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return &Document{root: root}, nil
}

// Validate checks that data is well formed. It stops at the first error.
func Validate(data []byte) ValidationResult {
	result := ValidationResult{Valid: true}

	decoder := xml.NewDecoder(bytes.NewReader(data))
	// No entity expansion (CWE-611).
	decoder.Entity = map[string]string{}

	for {
		_, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			line, col := decoder.InputPos()
			result.Valid = false
			result.Errors = append(result.Errors, ValidationError{
				Line:    line,
				Column:  col,
				Message: err.Error(),
			})
			break
		}
	}
	return result
}

// Format pretty-prints data. Elements holding only elements are indented one
// child per line; elements with text content, such as lyric lines mixing
// text and <br/>, are written on one line exactly as parsed.
func Format(data []byte, opts FormatOptions) ([]byte, error) {
	if opts.Indent == "" {
		opts.Indent = "  "
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	// xmlquery synthesizes a declaration for input that has none.
	keepDecl := bytes.HasPrefix(bytes.TrimSpace(data), []byte("<?xml"))
	var buf bytes.Buffer
	for child := doc.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.DeclarationNode && !keepDecl {
			continue
		}
		formatNode(&buf, child, 0, opts)
	}
	return buf.Bytes(), nil
}

func formatNode(w *bytes.Buffer, n *xmlquery.Node, depth int, opts FormatOptions) {
	switch n.Type {
	case xmlquery.DeclarationNode:
		w.WriteString("<?xml")
		for _, attr := range n.Attr {
			fmt.Fprintf(w, " %s=\"%s\"", attr.Name.Local, encoding.EscapeXMLAttr(attr.Value))
		}
		w.WriteString("?>\n")

	case xmlquery.ElementNode:
		writeIndent(w, depth, opts.Indent)
		if hasText(n) || slices.Contains(opts.Inline, n.Data) {
			w.WriteString(outputXML(n))
			w.WriteString("\n")
			return
		}
		writeStartTag(w, n)
		if n.FirstChild == nil {
			w.WriteString("/>\n")
			return
		}
		w.WriteString(">\n")
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			formatNode(w, child, depth+1, opts)
		}
		writeIndent(w, depth, opts.Indent)
		w.WriteString("</" + qualifiedName(n) + ">\n")

	case xmlquery.CommentNode:
		writeIndent(w, depth, opts.Indent)
		w.WriteString("<!--" + n.Data + "-->\n")
	}
}

// hasText reports whether n has a non-blank text or CDATA child.
func hasText(n *xmlquery.Node) bool {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		switch child.Type {
		case xmlquery.TextNode, xmlquery.CharDataNode:
			if strings.TrimSpace(child.Data) != "" {
				return true
			}
		}
	}
	return false
}

func writeStartTag(w *bytes.Buffer, n *xmlquery.Node) {
	w.WriteString("<" + qualifiedName(n))
	for _, attr := range n.Attr {
		name := attr.Name.Local
		switch {
		case attr.Name.Space == "xmlns":
			name = "xmlns:" + name
		case attr.Name.Space != "" && name != "xmlns":
			name = attr.Name.Space + ":" + name
		}
		fmt.Fprintf(w, " %s=\"%s\"", name, encoding.EscapeXMLAttr(attr.Value))
	}
}

func qualifiedName(n *xmlquery.Node) string {
	if n.Prefix != "" {
		return n.Prefix + ":" + n.Data
	}
	return n.Data
}

// outputXML writes n itself with <br/> style empty elements and the text
// spacing of lyric lines intact.
func outputXML(n *xmlquery.Node) string {
	return n.OutputXMLWithOptions(
		xmlquery.WithOutputSelf(),
		xmlquery.WithEmptyTagSupport(),
		xmlquery.WithPreserveSpace(),
	)
}

func writeIndent(w *bytes.Buffer, depth int, indent string) {
	w.WriteString(strings.Repeat(indent, depth))
}

// Root returns the document element.
func (d *Document) Root() *Node {
	if d.root == nil {
		return nil
	}
	for child := d.root.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			return &Node{node: child}
		}
	}
	return nil
}

// XPath returns the nodes matching expr.
func (d *Document) XPath(expr string) ([]*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	nodes := xmlquery.QuerySelectorAll(d.root, compiled)
	result := make([]*Node, len(nodes))
	for i, n := range nodes {
		result[i] = &Node{node: n}
	}
	return result, nil
}

// XPathFirst returns the first node matching expr, or nil.
func (d *Document) XPathFirst(expr string) (*Node, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	node := xmlquery.QuerySelector(d.root, compiled)
	if node == nil {
		return nil, nil
	}
	return &Node{node: node}, nil
}

// Evaluate evaluates an XPath expression that yields a value, such as
// count(//verse). Numbers are float64, booleans bool and strings string.
func (d *Document) Evaluate(expr string) (interface{}, error) {
	compiled, err := xpath.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath: %w", err)
	}
	v := compiled.Evaluate(xmlquery.CreateXPathNavigator(d.root))
	if it, ok := v.(*xpath.NodeIterator); ok {
		var texts []string
		for it.MoveNext() {
			texts = append(texts, it.Current().Value())
		}
		return strings.Join(texts, ""), nil
	}
	return v, nil
}

// Name returns the element's local name.
func (n *Node) Name() string {
	if n.node == nil {
		return ""
	}
	return n.node.Data
}

// Text returns the text of the node and its descendants.
func (n *Node) Text() string {
	if n.node == nil {
		return ""
	}
	return n.node.InnerText()
}

// Children returns the child elements.
func (n *Node) Children() []*Node {
	if n.node == nil {
		return nil
	}
	var children []*Node
	for child := n.node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, &Node{node: child})
		}
	}
	return children
}

// Attr returns the value of the named attribute, or "".
func (n *Node) Attr(name string) string {
	if n.node == nil {
		return ""
	}
	return n.node.SelectAttr(name)
}
