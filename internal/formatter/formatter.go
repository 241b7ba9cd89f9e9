// Package formatter rewrites an XML file in a canonical human-readable
// form: two-space indentation, blank lines stripped, trailing newline.
package formatter

import (
	"bytes"
	"os"

	"github.com/beevik/etree"
	pkgerrors "github.com/pkg/errors"

	"tomcatvhost/internal/xmltree"
)

const indentSpaces = 2

// Format reformats the file at path in place. It reports whether the file
// content changed; an already-canonical file is left untouched.
func Format(path string) (bool, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return false, pkgerrors.Wrapf(xmltree.ErrConfigLoad, "%s: %s", path, err.Error())
	}

	formatted, err := Bytes(original)
	if err != nil {
		return false, err
	}
	if bytes.Equal(original, formatted) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, pkgerrors.Wrapf(xmltree.ErrPersist, "%s: %s", path, err.Error())
	}
	if err := os.WriteFile(path, formatted, info.Mode().Perm()); err != nil {
		return false, pkgerrors.Wrapf(xmltree.ErrPersist, "%s: %s", path, err.Error())
	}
	return true, nil
}

// Bytes returns the canonical form of an XML document.
func Bytes(data []byte) ([]byte, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, pkgerrors.Wrap(xmltree.ErrConfigLoad, err.Error())
	}
	doc.Indent(indentSpaces)

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, pkgerrors.Wrap(xmltree.ErrPersist, err.Error())
	}
	if len(out) > 0 && out[len(out)-1] != '\n' {
		out = append(out, '\n')
	}
	return out, nil
}
