package notification

import (
	"fmt"
	"html/template"
	"strings"
)

var confirmationTmpl = template.Must(template.New("order_confirmation").Parse(`<html>
<head>
<style>
    body { font-family: Arial, sans-serif; }
    .header { background-color: #4CAF50; color: white; padding: 20px; }
    .content { padding: 20px; }
    table { border-collapse: collapse; width: 100%; }
    th, td { border: 1px solid #ddd; padding: 8px; text-align: left; }
    th { background-color: #f2f2f2; }
    .total { font-weight: bold; font-size: 18px; }
</style>
</head>
<body>
<div class="header">
    <h1>Order Confirmation</h1>
</div>
<div class="content">
    <p>Thank you for your order!</p>
    <p><strong>Order ID:</strong> {{.OrderID}}</p>

    <h2>Order Details</h2>
    <table>
        <tr>
            <th>Product</th>
            <th>Quantity</th>
            <th>Price</th>
        </tr>
        {{range .Items}}<tr>
            <td>{{.Name}}</td>
            <td>{{.Quantity}}</td>
            <td>{{.Price}}</td>
        </tr>
        {{end}}
    </table>

    <p class="total">Total: {{.Total}}</p>
</div>
</body>
</html>
`))

type emailItem struct {
	Name     string
	Quantity int
	Price    string
}

type emailData struct {
	OrderID string
	Items   []emailItem
	Total   string
}

// BuildOrderConfirmationEmail renders the HTML confirmation body for a
// completed order.
func BuildOrderConfirmationEmail(summary OrderSummary) (string, error) {
	data := emailData{
		OrderID: summary.OrderID,
		Total:   formatCents(summary.TotalAmount),
	}
	for _, item := range summary.Items {
		name := item.ProductName
		if name == "" {
			name = item.ProductID
		}
		data.Items = append(data.Items, emailItem{
			Name:     name,
			Quantity: item.Quantity,
			Price:    formatCents(item.UnitPrice),
		})
	}

	var b strings.Builder
	if err := confirmationTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("failed to render order confirmation email: %w", err)
	}
	return b.String(), nil
}

// formatCents renders an amount in minor units as a dollar string.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
