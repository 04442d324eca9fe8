package colorize

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/matzehuels/heightchart/pkg/errors"
)

// Markup is a recolored vector asset ready to be inlined.
type Markup struct {
	SVG    string  `json:"svg"`
	Aspect float64 `json:"aspect,omitempty"` // width/height from viewBox, 0 when unknown
}

// Recolor parses raw SVG, sets fill on every path element and returns the
// serialized root svg element. An empty fill leaves fills untouched.
//
// Parsing goes through the HTML5 parser; SVG is foreign content there, so
// camel-cased names such as viewBox survive the round trip. Prolog content
// outside the root element (XML declaration, comments, doctype) is dropped.
func Recolor(raw []byte, fill string) (Markup, error) {
	doc, err := html.Parse(bytes.NewReader(raw))
	if err != nil {
		return Markup{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse svg")
	}
	root := findSVG(doc)
	if root == nil {
		return Markup{}, errors.New(errors.ErrCodeInvalidFormat, "no <svg> element")
	}

	if fill != "" {
		walk(root, func(n *html.Node) {
			if n.Type == html.ElementNode && n.Data == "path" {
				setAttr(n, "fill", fill)
			}
		})
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return Markup{}, errors.Wrap(errors.ErrCodeInternal, err, "render svg")
	}
	return Markup{SVG: buf.String(), Aspect: aspectOf(root)}, nil
}

func findSVG(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && (n.DataAtom == atom.Svg || n.Data == "svg") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSVG(c); found != nil {
			return found
		}
	}
	return nil
}

func walk(n *html.Node, fn func(*html.Node)) {
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// aspectOf derives width/height from viewBox, falling back to the width and
// height attributes.
func aspectOf(svg *html.Node) float64 {
	if vb := strings.Fields(strings.ReplaceAll(getAttr(svg, "viewBox"), ",", " ")); len(vb) == 4 {
		w, errW := strconv.ParseFloat(vb[2], 64)
		h, errH := strconv.ParseFloat(vb[3], 64)
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return w / h
		}
	}
	w := parseLength(getAttr(svg, "width"))
	h := parseLength(getAttr(svg, "height"))
	if w > 0 && h > 0 {
		return w / h
	}
	return 0
}

func parseLength(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
