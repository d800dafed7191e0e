package cli

import (
	"fmt"
	"io"
	"strings"

	"bomboniere/internal/app"
	"bomboniere/internal/core"
)

func printClients(w io.Writer, result *app.ClientListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintf(w, "  %-74s\n", "CLIENTS")
	fmt.Fprintln(w, strings.Repeat("=", 78))
	if len(result.Clients) == 0 {
		fmt.Fprintln(w, "  No clients found.")
		fmt.Fprintln(w, strings.Repeat("=", 78))
		return
	}
	fmt.Fprintf(w, "  %-36s %-20s %12s  %s\n", "ID", "NAME", "BALANCE", "DUE")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, c := range result.Clients {
		due := c.DueDateLabel
		if c.Overdue {
			due += " (overdue)"
		}
		fmt.Fprintf(w, "  %-36s %-20s %12s  %s\n", c.ID, truncate(c.Name, 20), core.FormatBRL(c.Balance), due)
	}
	fmt.Fprintln(w, strings.Repeat("=", 78))
}

func printProducts(w io.Writer, result *app.ProductListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-58s\n", "PRODUCTS")
	fmt.Fprintln(w, strings.Repeat("=", 62))
	if len(result.Products) == 0 {
		fmt.Fprintln(w, "  No products found.")
		fmt.Fprintln(w, strings.Repeat("=", 62))
		return
	}
	fmt.Fprintf(w, "  %-10s %-28s %-10s %10s\n", "ID", "NAME", "ICON", "PRICE")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, p := range result.Products {
		fmt.Fprintf(w, "  %-10s %-28s %-10s %10s\n", truncate(p.ID, 10), truncate(p.Name, 28), p.Icon, core.FormatBRL(p.Price))
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func printSale(w io.Writer, result *app.SaleResult) {
	fmt.Fprintln(w, "SALE RECORDED")
	for _, tx := range result.Transactions {
		fmt.Fprintf(w, "  %-34s %12s\n", tx.ProductName, core.FormatBRL(tx.Amount))
	}
	fmt.Fprintf(w, "  %-34s %12s\n", "TOTAL", core.FormatBRL(result.Total))
	fmt.Fprintf(w, "  %-34s %12s\n", "BALANCE", core.FormatBRL(result.Balance))
	fmt.Fprintf(w, "  DUE: %s\n", core.FormatDate(result.DueDate))
	if result.Notification != nil {
		fmt.Fprintln(w)
		printNotification(w, result.Notification)
	}
}

func printNotification(w io.Writer, n *app.NotificationResult) {
	fmt.Fprintln(w, strings.Repeat("-", 62))
	fmt.Fprintln(w, n.Message)
	fmt.Fprintln(w, strings.Repeat("-", 62))
	fmt.Fprintf(w, "LINK: %s\n", n.Link)
}

func printTransactions(w io.Writer, result *app.TransactionListResult) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 78))
	fmt.Fprintf(w, "  %-10s %-20s %-28s %12s\n", "DATE", "CLIENT", "PRODUCT", "AMOUNT")
	fmt.Fprintln(w, strings.Repeat("-", 78))
	for _, tx := range result.Transactions {
		fmt.Fprintf(w, "  %-10s %-20s %-28s %12s\n",
			core.FormatDate(tx.Date), truncate(tx.ClientName, 20), truncate(tx.ProductName, 28), core.FormatBRL(tx.Amount))
	}
	if result.Balance != nil {
		fmt.Fprintln(w, strings.Repeat("-", 78))
		fmt.Fprintf(w, "  %-60s %12s\n", "BALANCE", core.FormatBRL(*result.Balance))
	}
	fmt.Fprintln(w, strings.Repeat("=", 78))
}

func printSummary(w io.Writer, s *core.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %s\n", s.CycleLabel)
	fmt.Fprintln(w, strings.Repeat("=", 62))
	fmt.Fprintf(w, "  %-40s %15s\n", "Total receivable", core.FormatBRL(s.TotalReceivable))
	fmt.Fprintf(w, "  %-40s %15d\n", "Clients owing", s.DebtorCount)
	fmt.Fprintf(w, "  %-40s %15s\n", "Sales this month", core.FormatBRL(s.MonthlySales))
	fmt.Fprintf(w, "  %-40s %15s\n", "Received this month", core.FormatBRL(s.MonthlyReceipts))
	if len(s.TopDebtors) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 62))
		fmt.Fprintln(w, "  TOP DEBTORS")
		for _, c := range s.TopDebtors {
			fmt.Fprintf(w, "  %-40s %15s\n", truncate(c.Name, 40), core.FormatBRL(c.Balance))
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 62))
}

func printSettings(w io.Writer, s *core.Settings) {
	greeting := s.CustomGreeting
	if greeting == "" {
		greeting = "(default)"
	}
	pix := s.PixKey
	if pix == "" {
		pix = "(not set)"
	}
	fmt.Fprintf(w, "OWNER:    %s\n", s.OwnerName)
	fmt.Fprintf(w, "PIX:      %s\n", pix)
	fmt.Fprintf(w, "INSTANT:  %t\n", s.InstantMessage)
	fmt.Fprintf(w, "GREETING: %s\n", greeting)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
