package output

import (
	"fmt"
	"html"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rsilvagit/examwatch/internal/model"
	"github.com/samber/lo"
)

const (
	headline = "New Goethe exam availability detected"
	footer   = "This alert was generated automatically."
	noPrice  = "n/a"
)

// ParseRecipients splits a comma-separated list, trimming entries and
// dropping empty ones.
func ParseRecipients(csv string) []string {
	return lo.Compact(lo.Map(strings.Split(csv, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
}

// FormatText renders the plain-text email body.
func FormatText(offers []model.NormalizedOffer) string {
	blocks := lo.Map(offers, func(o model.NormalizedOffer, _ int) string {
		return strings.Join([]string{
			fmt.Sprintf("Date: %s → %s", plainText(o.StartDate), plainText(o.EndDate)),
			fmt.Sprintf("Location: %s", plainText(o.LocationName)),
			fmt.Sprintf("Availability: %s (%s)", plainText(o.Availability), plainText(o.AvailabilityText)),
			fmt.Sprintf("Price: %s", price(o)),
			fmt.Sprintf("Book: %s", o.ButtonLink),
		}, "\n")
	})

	return headline + ":\n\n" + strings.Join(blocks, "\n\n") + "\n\n" + footer
}

// FormatHTML renders the HTML email body.
func FormatHTML(offers []model.NormalizedOffer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h3>%s</h3>\n", headline)
	for _, o := range offers {
		link := html.EscapeString(o.ButtonLink)
		b.WriteString(`<div class="offer" style="margin-bottom:12px;padding:8px;border:1px solid #ddd;border-radius:6px;">` + "\n")
		fmt.Fprintf(&b, "  <div><strong>Date:</strong> %s → %s</div>\n", escaped(o.StartDate), escaped(o.EndDate))
		fmt.Fprintf(&b, "  <div><strong>Location:</strong> %s</div>\n", escaped(o.LocationName))
		fmt.Fprintf(&b, "  <div><strong>Availability:</strong> %s (%s)</div>\n", escaped(o.Availability), escaped(o.AvailabilityText))
		fmt.Fprintf(&b, "  <div><strong>Price:</strong> %s</div>\n", html.EscapeString(price(o)))
		fmt.Fprintf(&b, "  <div><strong>Book:</strong> <a href=\"%s\">%s</a></div>\n", link, link)
		b.WriteString("</div>\n")
	}
	fmt.Fprintf(&b, `<div style="color:#666;font-size:12px;">%s</div>`, footer)
	return b.String()
}

func price(o model.NormalizedOffer) string {
	if p := plainText(o.Price); p != "" {
		return p
	}
	return noPrice
}

func escaped(s string) string {
	return html.EscapeString(plainText(s))
}

// plainText strips markup the exam finder sometimes embeds in text fields.
func plainText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
