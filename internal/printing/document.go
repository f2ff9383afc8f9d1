package printing

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"io"

	"github.com/noah-isme/gema-result-api/internal/result"
)

// PageBreak separates consecutive cards of a batch.
const PageBreak = `<div class="page-break"></div>`

const printCSS = `@page { size: A4; margin: 10mm; }
* { -webkit-print-color-adjust: exact !important; print-color-adjust: exact !important; color-adjust: exact !important; }
body { font-family: Arial, Helvetica, sans-serif; font-size: 12px; margin: 0; }
.page-break { page-break-after: always; break-after: page; }
.report-card { width: 100%; }
table { border-collapse: collapse; width: 100%; margin-bottom: 8px; }
th, td { border: 1px solid #333; padding: 3px 5px; text-align: left; }
.card-header { text-align: center; }
.school-logo { max-height: 72px; }
.summary { display: flex; gap: 8px; }
.signatures { display: flex; justify-content: space-between; margin-top: 24px; }
.signature-line { display: block; border-top: 1px solid #333; width: 160px; margin-bottom: 4px; }`

const autoPrintScript = `<script>window.addEventListener("load", function () { window.focus(); window.print(); });</script>`

// CardRenderer renders a single card fragment.
type CardRenderer interface {
	Render(w io.Writer, card result.CardData) error
}

// Document is a print-ready HTML page holding one or more cards.
type Document struct {
	Title string
	HTML  []byte
	Cards int
}

func buildDocument(ctx context.Context, renderer CardRenderer, title string, cards []result.CardData, autoPrint bool) (Document, error) {
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("<style>\n" + printCSS + "\n</style>\n</head>\n<body>\n")

	for idx, card := range cards {
		if err := ctx.Err(); err != nil {
			return Document{}, err
		}
		buf.WriteString(`<div class="print-document">` + "\n")
		if err := renderer.Render(&buf, card); err != nil {
			return Document{}, err
		}
		buf.WriteString("\n</div>\n")
		if idx < len(cards)-1 {
			buf.WriteString(PageBreak + "\n")
		}
	}

	if autoPrint {
		buf.WriteString(autoPrintScript + "\n")
	}
	buf.WriteString("</body>\n</html>\n")

	return Document{Title: title, HTML: buf.Bytes(), Cards: len(cards)}, nil
}
