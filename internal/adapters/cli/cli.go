package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"quote-to-cash/internal/app"
	"quote-to-cash/internal/core"
)

const usage = `Available: dashboard, quotes [status], orders [status], invoices [status],
           status <quote|order|invoice> <ref> <status>, sweep, draft "<request>",
           preview (JSON lines on stdin), seed`

// Run executes a one-shot CLI command.
// args is os.Args[1:]; the first element is the subcommand name.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("no command given\n%s", usage)
	}

	switch args[0] {
	case "dashboard", "dash", "d":
		result, err := svc.GetDashboard(ctx)
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}
		printDashboard(out, result.Metrics)

	case "quotes", "q":
		result, err := svc.ListQuotes(ctx, optArg(args, 1))
		if err != nil {
			return fmt.Errorf("failed to list quotes: %w", err)
		}
		printQuotes(out, result)

	case "orders", "o":
		result, err := svc.ListOrders(ctx, optArg(args, 1))
		if err != nil {
			return fmt.Errorf("failed to list orders: %w", err)
		}
		printOrders(out, result)

	case "invoices", "i":
		result, err := svc.ListInvoices(ctx, optArg(args, 1))
		if err != nil {
			return fmt.Errorf("failed to list invoices: %w", err)
		}
		printInvoices(out, result)

	case "status":
		if len(args) < 4 {
			return fmt.Errorf("usage: app status <quote|order|invoice> <ref> <status>")
		}
		return transition(ctx, svc, out, args[1], args[2], args[3])

	case "sweep":
		res, err := svc.SweepExpired(ctx)
		if err != nil {
			return fmt.Errorf("sweep failed: %w", err)
		}
		fmt.Fprintf(out, "Expired quotes: %d\nOverdue invoices: %d\n", res.QuotesExpired, res.InvoicesOverdue)

	case "draft":
		if len(args) < 2 {
			return fmt.Errorf("usage: app draft \"<quote request>\"")
		}
		result, err := svc.DraftQuote(ctx, strings.Join(args[1:], " "))
		if err != nil {
			return fmt.Errorf("agent error: %w", err)
		}
		if result.IsClarification {
			return fmt.Errorf("AI needs clarification: %s", result.ClarificationMessage)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)

	case "preview":
		lines, err := readLines(in)
		if err != nil {
			return err
		}
		preview, err := svc.PreviewQuote(ctx, lines)
		if err != nil {
			return fmt.Errorf("preview failed: %w", err)
		}
		printPreview(out, preview)

	case "seed":
		res, err := svc.Seed(ctx)
		if err != nil {
			return fmt.Errorf("seed failed: %w", err)
		}
		printSeed(out, res)

	default:
		return fmt.Errorf("unknown command: %s\n%s", args[0], usage)
	}
	return nil
}

func optArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

func transition(ctx context.Context, svc app.ApplicationService, out io.Writer, kind, ref, status string) error {
	switch strings.ToLower(kind) {
	case "quote":
		res, err := svc.TransitionQuote(ctx, ref, status)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s is now %s\n", res.Quote.QuoteNumber, res.Quote.Status)
	case "order":
		res, err := svc.TransitionOrder(ctx, ref, status)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s is now %s\n", res.Order.OrderNumber, res.Order.Status)
	case "invoice":
		res, err := svc.TransitionInvoice(ctx, ref, status)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s is now %s\n", res.Invoice.InvoiceNumber, res.Invoice.Status)
	default:
		return fmt.Errorf("unknown document kind %q (want quote, order or invoice)", kind)
	}
	return nil
}

// readLines decodes one core.LineInput per non-blank input line.
func readLines(in io.Reader) ([]core.LineInput, error) {
	var lines []core.LineInput
	sc := bufio.NewScanner(in)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		var l core.LineInput
		if err := json.Unmarshal([]byte(text), &l); err != nil {
			return nil, fmt.Errorf("invalid JSON on line %d: %w", n, err)
		}
		lines = append(lines, l)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no lines on stdin")
	}
	return lines, nil
}

func printDashboard(out io.Writer, m *core.DashboardMetrics) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-58s\n", "DASHBOARD "+m.Period)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-30s %29s\n", "Total revenue", m.TotalRevenue.StringFixed(2))
	fmt.Fprintf(out, "  %-30s %29s\n", "Revenue this month", m.RevenueThisMonth.StringFixed(2))
	fmt.Fprintf(out, "  %-30s %29s\n", "Pending payments", m.PendingPayments.StringFixed(2))
	fmt.Fprintf(out, "  %-30s %28s%%\n", "Conversion rate", m.ConversionRate.StringFixed(2))
	fmt.Fprintf(out, "  %-30s %29s\n", "Quotes (this month)", fmt.Sprintf("%d (%d)", m.TotalQuotes, m.QuotesThisMonth))
	fmt.Fprintf(out, "  %-30s %29s\n", "Orders (this month)", fmt.Sprintf("%d (%d)", m.TotalOrders, m.OrdersThisMonth))
	fmt.Fprintf(out, "  %-30s %29d\n", "Invoices", m.TotalInvoices)
	fmt.Fprintln(out, strings.Repeat("-", 62))
	fmt.Fprintf(out, "  %-30s %10s %18s\n", "PIPELINE", "COUNT", "VALUE")
	for _, s := range m.Pipeline {
		fmt.Fprintf(out, "  %-30s %10d %18s\n", s.Status, s.Count, s.Value.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
}

func printQuotes(out io.Writer, r *app.QuoteListResult) {
	fmt.Fprintf(out, "  %-14s %-26s %-10s %15s\n", "NUMBER", "CUSTOMER", "STATUS", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 68))
	for _, q := range r.Quotes {
		fmt.Fprintf(out, "  %-14s %-26s %-10s %15s\n", q.QuoteNumber, q.Customer.Company, q.Status, q.Total.StringFixed(2))
	}
	fmt.Fprintf(out, "  %d quote(s)\n", r.Count)
}

func printOrders(out io.Writer, r *app.OrderListResult) {
	fmt.Fprintf(out, "  %-14s %-26s %-10s %15s\n", "NUMBER", "CUSTOMER", "STATUS", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 68))
	for _, o := range r.Orders {
		fmt.Fprintf(out, "  %-14s %-26s %-10s %15s\n", o.OrderNumber, o.Customer.Company, o.Status, o.Total.StringFixed(2))
	}
	fmt.Fprintf(out, "  %d order(s)\n", r.Count)
}

func printInvoices(out io.Writer, r *app.InvoiceListResult) {
	fmt.Fprintf(out, "  %-14s %-26s %-10s %-10s %15s\n", "NUMBER", "CUSTOMER", "STATUS", "DUE", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 79))
	for _, inv := range r.Invoices {
		fmt.Fprintf(out, "  %-14s %-26s %-10s %-10s %15s\n", inv.InvoiceNumber, inv.Customer.Company, inv.Status,
			inv.DueDate.Format("2006-01-02"), inv.Total.StringFixed(2))
	}
	fmt.Fprintf(out, "  %d invoice(s)\n", r.Count)
}

func printPreview(out io.Writer, p *core.Preview) {
	fmt.Fprintf(out, "  %-12s %5s %12s %8s %15s\n", "SKU", "QTY", "UNIT", "DISC %", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 58))
	for _, it := range p.Items {
		sku := it.Product.SKU
		if sku == "" {
			sku = "-"
		}
		fmt.Fprintf(out, "  %-12s %5s %12s %8s %15s\n", sku, strconv.Itoa(it.Quantity),
			it.UnitPrice.StringFixed(2), it.Discount.String(), it.Total.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("-", 58))
	fmt.Fprintf(out, "  %-40s %15s\n", "Subtotal", p.Subtotal.StringFixed(2))
	fmt.Fprintf(out, "  %-40s %15s\n", "Tax", p.Tax.StringFixed(2))
	fmt.Fprintf(out, "  %-40s %15s\n", "Total", p.Total.StringFixed(2))
}

func printSeed(out io.Writer, r *app.SeedResult) {
	fmt.Fprintf(out, "Seeded %d customers, %d products, %d quotes, %d orders, %d invoices.\n",
		r.Customers, r.Products, r.Quotes, r.Orders, r.Invoices)
}
