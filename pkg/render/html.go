package render

import (
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/reflow-ui/reflow/pkg/tree"
)

// htmlEscaper covers text content; attrEscaper additionally neutralizes
// whitespace that could break attribute parsing.
var (
	htmlEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	attrEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
		"\n", "&#10;",
		"\r", "&#13;",
		"\t", "&#9;",
	)
)

func escapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}

// voidElements have no closing tag and never carry children.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// booleanAttrs render as the bare attribute name when their value is
// true and are omitted entirely when it is false.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true,
	"autoplay": true, "checked": true, "controls": true,
	"default": true, "defer": true, "disabled": true,
	"formnovalidate": true, "hidden": true, "ismap": true,
	"itemscope": true, "loop": true, "multiple": true, "muted": true,
	"nomodule": true, "novalidate": true, "open": true,
	"playsinline": true, "readonly": true, "required": true,
	"reversed": true, "selected": true,
}

// writeAttrs renders an attribute list. Function-valued attributes are
// event handlers wired on the client side; they produce no markup.
func writeAttrs(w io.Writer, attrs []tree.Attr) error {
	for _, a := range attrs {
		if a.Value != nil && reflect.TypeOf(a.Value).Kind() == reflect.Func {
			continue
		}
		if booleanAttrs[a.Name] {
			if b, ok := a.Value.(bool); ok {
				if !b {
					continue
				}
				if _, err := fmt.Fprintf(w, " %s", a.Name); err != nil {
					return err
				}
				continue
			}
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, a.Name, escapeAttr(fmt.Sprintf("%v", a.Value))); err != nil {
			return err
		}
	}
	return nil
}
