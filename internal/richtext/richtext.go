// Package richtext cleans campaign messages written in the dashboard editor and
// derives the plain-text preview used by emails and the recording page.
package richtext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var blockedTags = "script,style,iframe,object,embed,form,input,button,link,meta"

// Sanitize removes active content from editor HTML and returns the body markup.
func Sanitize(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find(blockedTags).Remove()
	doc.Find("*").Each(func(_ int, s *goquery.Selection) {
		node := s.Get(0)
		kept := node.Attr[:0]
		for _, a := range node.Attr {
			key := strings.ToLower(a.Key)
			if strings.HasPrefix(key, "on") || key == "style" {
				continue
			}
			if (key == "href" || key == "src") && unsafeURL(a.Val) {
				continue
			}
			kept = append(kept, a)
		}
		node.Attr = kept
	})
	doc.Find("a[href]").SetAttr("rel", "noopener noreferrer nofollow")

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func unsafeURL(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.HasPrefix(v, "javascript:") || strings.HasPrefix(v, "vbscript:") || strings.HasPrefix(v, "data:")
}

// Preview flattens html into whitespace-collapsed text of at most maxRunes runes.
func Preview(html string, maxRunes int) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	doc.Find(blockedTags).Remove()
	// Block elements would otherwise glue their words together.
	doc.Find("p,div,br,li,h1,h2,h3,h4,h5,h6").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml(" ")
	})

	text := strings.Join(strings.Fields(doc.Text()), " ")
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}

	runes := []rune(text)
	cut := strings.TrimRight(string(runes[:maxRunes-1]), " ")
	return cut + "…"
}
