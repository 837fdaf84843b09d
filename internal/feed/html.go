package feed

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockElements = map[atom.Atom]bool{
	atom.Div: true, atom.Li: true, atom.Ul: true, atom.Ol: true,
	atom.Tr: true, atom.Table: true, atom.Pre: true, atom.Hr: true,
	atom.Section: true, atom.Article: true, atom.Header: true, atom.Footer: true,
}

// paragraph-like elements are set off by a blank line.
var paragraphElements = map[atom.Atom]bool{
	atom.P: true, atom.Blockquote: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

var htmlSpace = regexp.MustCompile(`[ \t\r\n\f]+`)

// HTMLToText renders an HTML fragment as plain text. Block elements start
// new lines, paragraphs and headings are separated by a blank line, and
// <strong>/<b> become **bold** so section headings stay recognisable.
// Input that is not HTML comes back unchanged apart from line tidying.
func HTMLToText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return tidy(fragment)
	}
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return tidy(fragment)
	}

	w := &textWriter{}
	for _, n := range nodes {
		w.render(n, false)
	}
	return tidy(w.b.String())
}

type textWriter struct {
	b strings.Builder
}

func (w *textWriter) endsWith(s string) bool {
	return strings.HasSuffix(w.b.String(), s)
}

func (w *textWriter) newline() {
	if w.b.Len() > 0 && !w.endsWith("\n") {
		w.b.WriteByte('\n')
	}
}

func (w *textWriter) blankLine() {
	if w.b.Len() == 0 {
		return
	}
	w.newline()
	if !w.endsWith("\n\n") {
		w.b.WriteByte('\n')
	}
}

func (w *textWriter) render(n *html.Node, pre bool) {
	switch n.Type {
	case html.TextNode:
		text := n.Data
		if !pre {
			text = htmlSpace.ReplaceAllString(text, " ")
			if text == " " && (w.b.Len() == 0 || w.endsWith("\n")) {
				return
			}
		}
		w.b.WriteString(text)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Head:
			return
		case atom.Br:
			w.b.WriteByte('\n')
			return
		}
	}

	isBlock := n.Type == html.ElementNode && blockElements[n.DataAtom]
	isPara := n.Type == html.ElementNode && paragraphElements[n.DataAtom]
	isBold := n.Type == html.ElementNode && (n.DataAtom == atom.Strong || n.DataAtom == atom.B)
	pre = pre || n.DataAtom == atom.Pre

	switch {
	case isPara:
		w.blankLine()
	case isBlock:
		w.newline()
	}
	if isBold {
		w.b.WriteString("**")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.render(c, pre)
	}
	if isBold {
		w.b.WriteString("**")
	}
	switch {
	case isPara:
		w.blankLine()
	case isBlock:
		w.newline()
	}
}

// tidy trims every line, collapses runs of blank lines to one and drops
// leading and trailing blank lines.
func tidy(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, l := range lines {
		l = strings.TrimSpace(l)
		if l == "" {
			blank = len(out) > 0
			continue
		}
		if blank {
			out = append(out, "")
			blank = false
		}
		out = append(out, l)
	}
	return strings.Join(out, "\n")
}
