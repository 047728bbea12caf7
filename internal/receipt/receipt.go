// Package receipt prints an order as a plain-text till receipt.
package receipt

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/orders"
)

const (
	DefaultShopName = "Juice Shop"
	rule            = "--------------------------------"
)

type Shop struct {
	Name  string
	Phone string
}

var paymentLabels = map[orders.PaymentMethod]string{
	orders.PaymentCash:      "Cash",
	orders.PaymentPromptPay: "PromptPay",
	orders.PaymentCard:      "Credit card",
}

func PaymentLabel(m orders.PaymentMethod) string {
	if l, ok := paymentLabels[m]; ok {
		return l
	}
	return string(m)
}

// Render writes o to w, with times shown in loc.
func Render(w io.Writer, o orders.Order, shop Shop, loc *time.Location) error {
	if shop.Name == "" {
		shop.Name = DefaultShopName
	}
	created := o.CreatedAt
	if loc != nil {
		created = created.In(loc)
	}

	var b strings.Builder
	fmt.Fprintln(&b, shop.Name)
	if shop.Phone != "" {
		fmt.Fprintf(&b, "Tel: %s\n", shop.Phone)
	}
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Receipt  %s\n", created.Format("02/01/2006 15:04"))
	fmt.Fprintf(&b, "Order    #%s\n", o.ID)
	fmt.Fprintln(&b, rule)

	tw := tabwriter.NewWriter(&b, 0, 0, 1, ' ', tabwriter.AlignRight)
	for _, it := range o.Items {
		name := it.Name
		if it.Emoji != "" {
			name = it.Emoji + " " + name
		}
		fmt.Fprintf(tw, "%s\tx%d\t%s\t\n", name, it.Qty, it.Subtotal().StringFixed(2))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("receipt items: %w", err)
	}

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Total    ฿%s\n", o.Total.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Paid by  %s\n", PaymentLabel(o.PaymentMethod))
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Thank you, come again!")

	_, err := io.WriteString(w, b.String())
	return err
}
