package ai

import (
	"fmt"
	"strings"

	"quote-to-cash/internal/core"
)

const promptHeader = `You are a sales assistant preparing quotes.
Turn the request below into a quote draft using ONLY the customers and products listed.
Rules:
1. Copy the customer email and product SKUs exactly as listed.
2. Quantities are positive whole numbers.
3. Discounts are percentages between 0 and 100 as strings (e.g. "10"). Use "0" when none is asked for.
4. Use 30 validity days unless the request names another period.
5. If the customer or a product cannot be identified, fill "clarification" with a short question and leave "lines" empty.
6. Provide a confidence score (0.0-1.0) and explain your reasoning.
`

func buildPrompt(request string, customers []core.Customer, products []core.Product) string {
	var b strings.Builder
	b.WriteString(promptHeader)

	b.WriteString("\nCustomers (email | name | company):\n")
	for _, c := range customers {
		fmt.Fprintf(&b, "- %s | %s | %s\n", c.Email, c.Name, c.Company)
	}

	b.WriteString("\nProducts (SKU | name | category | unit price):\n")
	for _, p := range products {
		fmt.Fprintf(&b, "- %s | %s | %s | %s\n", p.SKU, p.Name, p.Category, p.Price.StringFixed(2))
	}

	fmt.Fprintf(&b, "\nRequest: %s", strings.TrimSpace(request))
	return b.String()
}
