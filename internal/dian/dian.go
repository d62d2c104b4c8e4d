// Package dian reads DIAN electronic invoicing documents: the outer
// AttachedDocument envelope and the UBL Invoice embedded in it as
// character data.
package dian

import (
	"encoding/xml"
	"io"
	"strings"
)

// UBL namespace URIs. Suppliers disagree on prefix spellings for these
// ("cac" vs "ns2", "cbc" vs "ns3"), so element lookups bind to the URIs,
// never to literal prefixes.
const (
	nsCAC = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
	nsCBC = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
)

func cac(local string) xml.Name { return xml.Name{Space: nsCAC, Local: local} }
func cbc(local string) xml.Name { return xml.Name{Space: nsCBC, Local: local} }

// node is a generic element tree. encoding/xml resolves every prefix to its
// namespace URI in XMLName.Space while decoding, which is what makes the
// URI-bound lookups above work across supplier dialects.
type node struct {
	XMLName  xml.Name
	Text     string `xml:",chardata"`
	Children []node `xml:",any"`
}

// child returns the first direct child with the given name, or nil.
func (n *node) child(name xml.Name) *node {
	for i := range n.Children {
		c := &n.Children[i]
		if c.XMLName.Local == name.Local && c.XMLName.Space == name.Space {
			return c
		}
	}

	return nil
}

// path walks direct children step by step, returning nil as soon as any
// step is missing.
func (n *node) path(steps ...xml.Name) *node {
	cur := n
	for _, step := range steps {
		if cur == nil {
			return nil
		}

		cur = cur.child(step)
	}

	return cur
}

// text returns the trimmed character data of the element reached by the
// given path, or "" when the path is missing.
func (n *node) text(steps ...xml.Name) string {
	found := n.path(steps...)
	if found == nil {
		return ""
	}

	return strings.TrimSpace(found.Text)
}

// decode parses a whole document into a node tree. Input is expected to be
// UTF-8 already (uploads go through encoding.NewUTF8Reader first), so the
// charset the XML declaration still claims is ignored.
func decode(r io.Reader) (*node, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}

	var root node
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}

	return &root, nil
}
