// Package xmltree is a narrow tree-edit layer over an in-memory XML
// document: load a file, address nodes with a path expression, set
// attributes and text, remove subtrees, write the document back. Every
// mutator reports whether it actually changed a stored value.
package xmltree

import (
	"errors"
	"fmt"
	"os"

	"github.com/beevik/etree"
	pkgerrors "github.com/pkg/errors"
)

var (
	// ErrCapabilityUnavailable means the XML tree engine cannot be used in
	// this environment. Checked once at startup, before any file I/O.
	ErrCapabilityUnavailable = errors.New("xml tree capability unavailable")

	// ErrConfigLoad means the target file is missing or unparsable.
	ErrConfigLoad = errors.New("cannot load configuration file")

	// ErrPersist means writing the mutated document back failed.
	ErrPersist = errors.New("cannot persist configuration file")
)

type (
	// Tree is a loaded XML document plus the path it came from.
	Tree struct {
		doc   *etree.Document
		path  string
		diags []string
	}

	// Node wraps a single element in a Tree.
	Node struct {
		el *etree.Element
	}
)

// Available verifies the tree engine works by round-tripping a trivial
// document. Callers run this once at startup, before any file I/O.
func Available() error {
	doc := etree.NewDocument()
	if err := doc.ReadFromString("<probe/>"); err != nil {
		return pkgerrors.Wrap(ErrCapabilityUnavailable, err.Error())
	}
	if doc.Root() == nil || doc.Root().Tag != "probe" {
		return ErrCapabilityUnavailable
	}
	return nil
}

// Load parses the XML file at path.
func Load(path string) (*Tree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, pkgerrors.Wrapf(ErrConfigLoad, "%s: %s", path, err.Error())
	}
	if doc.Root() == nil {
		return nil, pkgerrors.Wrapf(ErrConfigLoad, "%s: document has no root element", path)
	}
	return &Tree{doc: doc, path: path}, nil
}

// LoadBytes parses an in-memory XML document. The resulting tree has no
// backing path and cannot be saved with Save.
func LoadBytes(data []byte) (*Tree, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, pkgerrors.Wrap(ErrConfigLoad, err.Error())
	}
	if doc.Root() == nil {
		return nil, pkgerrors.Wrap(ErrConfigLoad, "document has no root element")
	}
	return &Tree{doc: doc}, nil
}

// Path returns the file this tree was loaded from, if any.
func (t *Tree) Path() string {
	return t.path
}

// Root returns the document's root element.
func (t *Tree) Root() *Node {
	return &Node{el: t.doc.Root()}
}

// Query returns all elements matching the path expression, evaluated from
// the document root.
func (t *Tree) Query(expr string) ([]*Node, error) {
	p, err := etree.CompilePath(expr)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid path %q", expr)
	}
	els := t.doc.FindElementsPath(p)
	nodes := make([]*Node, 0, len(els))
	for _, el := range els {
		nodes = append(nodes, &Node{el: el})
	}
	return nodes, nil
}

// Find returns the first element matching the path expression, or nil.
func (t *Tree) Find(expr string) (*Node, error) {
	nodes, err := t.Query(expr)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// Warnf records a non-fatal diagnostic surfaced in the final result.
func (t *Tree) Warnf(format string, args ...interface{}) {
	t.diags = append(t.diags, fmt.Sprintf(format, args...))
}

// Diagnostics returns all non-fatal problems recorded while editing.
func (t *Tree) Diagnostics() []string {
	return t.diags
}

// Bytes serializes the document.
func (t *Tree) Bytes() ([]byte, error) {
	return t.doc.WriteToBytes()
}

// Save writes the document back to the file it was loaded from. The write
// happens once, after all in-memory mutation is complete.
func (t *Tree) Save() error {
	if t.path == "" {
		return pkgerrors.Wrap(ErrPersist, "tree has no backing file")
	}
	return t.SaveTo(t.path)
}

// SaveTo writes the document to an arbitrary path.
func (t *Tree) SaveTo(path string) error {
	if err := t.doc.WriteToFile(path); err != nil {
		return pkgerrors.Wrapf(ErrPersist, "%s: %s", path, err.Error())
	}
	return nil
}

// Tag returns the element name.
func (n *Node) Tag() string {
	return n.el.Tag
}

// Attr returns an attribute value and whether the attribute exists.
func (n *Node) Attr(key string) (string, bool) {
	a := n.el.SelectAttr(key)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// AttrOr returns an attribute value, or the fallback if it is absent.
func (n *Node) AttrOr(key, fallback string) string {
	return n.el.SelectAttrValue(key, fallback)
}

// SetAttr stores an attribute value and reports whether the stored value
// actually changed.
func (n *Node) SetAttr(key, value string) bool {
	if a := n.el.SelectAttr(key); a != nil && a.Value == value {
		return false
	}
	n.el.CreateAttr(key, value)
	return true
}

// RemoveAttr deletes an attribute and reports whether it existed.
func (n *Node) RemoveAttr(key string) bool {
	return n.el.RemoveAttr(key) != nil
}

// Text returns the element's character data.
func (n *Node) Text() string {
	return n.el.Text()
}

// SetText stores the element's character data and reports whether it
// changed.
func (n *Node) SetText(value string) bool {
	if n.el.Text() == value {
		return false
	}
	n.el.SetText(value)
	return true
}

// AddChild appends a new child element after all existing children.
func (n *Node) AddChild(tag string) *Node {
	return &Node{el: n.el.CreateElement(tag)}
}

// Children returns the direct child elements with the given tag.
func (n *Node) Children(tag string) []*Node {
	els := n.el.SelectElements(tag)
	nodes := make([]*Node, 0, len(els))
	for _, el := range els {
		nodes = append(nodes, &Node{el: el})
	}
	return nodes
}

// Find returns the first descendant matching the path expression
// (evaluated relative to this node), or nil.
func (n *Node) Find(expr string) (*Node, error) {
	p, err := etree.CompilePath(expr)
	if err != nil {
		return nil, pkgerrors.Wrapf(err, "invalid path %q", expr)
	}
	el := n.el.FindElementPath(p)
	if el == nil {
		return nil, nil
	}
	return &Node{el: el}, nil
}

// RemoveChild detaches a direct child element and its whole subtree,
// reporting whether it was present.
func (n *Node) RemoveChild(child *Node) bool {
	return n.el.RemoveChild(child.el) != nil
}

// Copy duplicates the file at src to dst. Used for backups before a
// destructive write.
func Copy(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return pkgerrors.Wrapf(ErrPersist, "backup %s: %s", src, err.Error())
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return pkgerrors.Wrapf(ErrPersist, "backup %s: %s", dst, err.Error())
	}
	return nil
}
