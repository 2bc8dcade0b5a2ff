package fontfile

import (
	"fmt"
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ClassName turns a font name into the CSS class used for previews.
func ClassName(fontName string) string {
	return whitespaceRun.ReplaceAllString(fontName, "-")
}

// FaceRule returns an @font-face rule for fontName served from url, followed
// by a class rule applying the family.
func FaceRule(fontName, url string) string {
	family := cssString(fontName)
	var b strings.Builder
	fmt.Fprintf(&b, "@font-face {\n  font-family: '%s';\n  src: url(\"%s\") format('truetype');\n}\n", family, cssURL(url))
	fmt.Fprintf(&b, ".%s {\n  font-family: '%s';\n}\n", cssIdent(ClassName(fontName)), family)
	return b.String()
}

func cssString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
}

func cssURL(s string) string {
	return strings.NewReplacer(`"`, `%22`, "\n", "", "\r", "").Replace(s)
}

// cssIdent escapes characters that would end a class selector early.
func cssIdent(s string) string {
	var b strings.Builder
	for i, r := range s {
		switch {
		case r == '-' || r == '_' || r >= 0x80:
			b.WriteRune(r)
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				fmt.Fprintf(&b, `\3%c `, r)
			} else {
				b.WriteRune(r)
			}
		default:
			b.WriteByte('\\')
			b.WriteRune(r)
		}
	}
	return b.String()
}
