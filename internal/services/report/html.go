package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table),
)

const htmlHead = `<!DOCTYPE html>
<html lang="nl">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: Arial, sans-serif; max-width: 52rem; margin: 2rem auto; color: #222; }
table { border-collapse: collapse; width: 100%%; }
th, td { border: 1px solid #ccc; padding: 0.4rem 0.6rem; text-align: left; }
th { background: #eee; }
</style>
</head>
<body>
`

// RenderHTML converts a markdown report to a standalone HTML page
func RenderHTML(md, title string) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("failed to render HTML: %w", err)
	}

	var out bytes.Buffer
	fmt.Fprintf(&out, htmlHead, html.EscapeString(title))
	out.Write(body.Bytes())
	out.WriteString("</body>\n</html>\n")
	return out.Bytes(), nil
}
