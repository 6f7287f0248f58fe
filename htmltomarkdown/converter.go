// Package htmltomarkdown converts extracted documentation HTML into
// normalized Markdown.
package htmltomarkdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docdex"
)

// Ensure Converter implements docdex.Converter at compile time.
var _ docdex.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown. The output
// is normalized: code fences carry a language token, blank-line runs are
// collapsed, headings are surrounded by blank lines, trailing whitespace is
// stripped.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown. Empty or unparseable input
// yields an empty string, never an error: normalization must not be able to
// abort a batch.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", nil
	}

	if cleaned, ok := preprocess(html); ok {
		html = cleaned
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", nil
	}

	return NormalizeMarkdown(result), nil
}

var codeClassRe = regexp.MustCompile(`^(?:language|lang|code)-([A-Za-z0-9+#-]+)$`)

// preprocess cleans HTML quirks the converter cannot handle: code language
// class variants are normalized to language-x, empty anchors and sourceless
// images are dropped.
func preprocess(html string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", false
	}

	doc.Find("pre, code").Each(func(_ int, sel *goquery.Selection) {
		for _, token := range strings.Fields(sel.AttrOr("class", "")) {
			if m := codeClassRe.FindStringSubmatch(token); m != nil {
				sel.SetAttr("class", "language-"+strings.ToLower(m[1]))
				return
			}
		}
	})

	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		if strings.TrimSpace(sel.Text()) == "" && sel.Children().Length() == 0 {
			sel.Remove()
		}
	})

	doc.Find("img").Each(func(_ int, sel *goquery.Selection) {
		if strings.TrimSpace(sel.AttrOr("src", "")) == "" {
			sel.Remove()
		}
	})

	out, err := doc.Find("body").Html()
	if err != nil {
		return "", false
	}
	return out, true
}

var headingRe = regexp.MustCompile(`^#{1,6} `)

// NormalizeMarkdown applies whitespace normalization: trailing whitespace is
// stripped per line, blank-line runs collapse to at most two (one inside
// code fences), and headings get a blank line on both sides.
func NormalizeMarkdown(md string) string {
	lines := strings.Split(md, "\n")
	out := make([]string, 0, len(lines))
	inFence := false
	pendingBlanks := 0

	emit := func(line string) {
		limit := 2
		if inFence {
			limit = 1
		}
		if len(out) == 0 {
			limit = 0
		}
		if pendingBlanks > limit {
			pendingBlanks = limit
		}
		if pendingBlanks == 0 && len(out) > 0 && !inFence && headingRe.MatchString(out[len(out)-1]) {
			pendingBlanks = 1
		}
		for range pendingBlanks {
			out = append(out, "")
		}
		pendingBlanks = 0
		out = append(out, line)
	}

	for _, raw := range lines {
		line := strings.TrimRight(raw, " \t")
		if line == "" {
			pendingBlanks++
			continue
		}
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			emit(line)
			inFence = !inFence
			continue
		}
		if !inFence && headingRe.MatchString(line) {
			if len(out) > 0 && pendingBlanks == 0 {
				pendingBlanks = 1
			}
			emit(line)
			continue
		}
		emit(line)
	}

	return strings.Trim(strings.Join(out, "\n"), "\n")
}
