package output

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rsilvagit/examwatch/internal/model"
)

// ResultWriter defines how newly bookable offers are presented or delivered.
type ResultWriter interface {
	WriteOffers(ctx context.Context, offers []model.NormalizedOffer) error
}

var (
	_ ResultWriter = (*ConsolePrinter)(nil)
	_ ResultWriter = (*EmailWriter)(nil)
)

// ConsolePrinter writes offers to w in a formatted table.
type ConsolePrinter struct {
	w io.Writer
}

func NewConsolePrinter(w io.Writer) *ConsolePrinter {
	return &ConsolePrinter{w: w}
}

func (cp *ConsolePrinter) WriteOffers(_ context.Context, offers []model.NormalizedOffer) error {
	if len(offers) == 0 {
		fmt.Fprintln(cp.w, "No new bookable offers detected.")
		return nil
	}

	w := tabwriter.NewWriter(cp.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tDATE\tLOCATION\tAVAILABILITY\tPRICE\tLINK")
	fmt.Fprintln(w, "---\t----\t--------\t------------\t-----\t----")
	for _, o := range offers {
		fmt.Fprintf(w, "%s\t%s - %s\t%s\t%s\t%s\t%s\n",
			o.Key, o.StartDate, o.EndDate, plainText(o.LocationName), plainText(o.Availability), price(o), o.ButtonLink)
	}
	return w.Flush()
}
