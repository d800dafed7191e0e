package core

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	deepLinkBase = "https://wa.me/"

	messageDivider = "────────────────────"

	salePixFallback    = "Consulte no balcão"
	billingPixFallback = "Solicite a chave PIX"
)

// greetingPlaceholder matches the two accepted placeholders, {client} and its
// Portuguese form {cliente}, in any letter case. Nothing else in a template is
// rewritten, including near misses such as {clientes} or {client name}.
var greetingPlaceholder = regexp.MustCompile(`(?i)\{client(e)?\}`)

var nonDigits = regexp.MustCompile(`[^0-9]`)

// BillingNotice is the ledger state rendered into a cycle-closing bill.
type BillingNotice struct {
	ClientName   string
	TotalBalance decimal.Decimal
	DueDate      time.Time
	PixKey       string
	Greeting     string // owner's custom greeting template, may be blank
}

// SaleNotice is a just-recorded sale rendered into a purchase receipt.
type SaleNotice struct {
	ClientName        string
	Items             []CartItem
	SaleTotal         decimal.Decimal
	DueDate           time.Time
	BalanceBeforeSale decimal.Decimal
	PixKey            string
	Greeting          string
}

// RenderGreeting substitutes the bolded client name for every {client} or
// {cliente} in template, or builds the shop's default greeting when the
// template is blank.
func RenderGreeting(clientName, template string) string {
	bold := "*" + clientName + "*"
	if strings.TrimSpace(template) == "" {
		return "💎 *BOMBONIERE PREMIUM* 💎\nOlá, " + bold + "!"
	}
	return greetingPlaceholder.ReplaceAllLiteralString(template, bold)
}

// RenderBillingMessage builds the cycle-closing reminder sent to a client.
func RenderBillingMessage(n BillingNotice) string {
	var b strings.Builder
	b.WriteString(RenderGreeting(n.ClientName, n.Greeting))
	b.WriteString("\nEsta é uma mensagem de fechamento de ciclo.\n\n")
	b.WriteString(messageDivider + "\n")
	b.WriteString("⚠️ *Resumo de Pendências*\n")
	fmt.Fprintf(&b, "💰 *Total a Pagar:* %s\n", FormatBRL(n.TotalBalance))
	fmt.Fprintf(&b, "📅 *Vencimento:* %s\n", FormatDate(n.DueDate))
	b.WriteString(messageDivider + "\n\n")
	b.WriteString("🔗 *PIX para pagamento:* \n")
	b.WriteString(pixOr(n.PixKey, billingPixFallback) + "\n\n")
	b.WriteString("_Por favor, envie o comprovante assim que possível. Obrigado!_")
	return strings.TrimSpace(b.String())
}

// RenderSaleMessage builds the receipt sent right after a sale. The accumulated
// total shown is BalanceBeforeSale + SaleTotal.
func RenderSaleMessage(n SaleNotice) string {
	lines := make([]string, 0, len(n.Items))
	for _, item := range n.Items {
		lines = append(lines, fmt.Sprintf("• %dx %s (%s)", item.Qty, item.Name, FormatBRL(item.LineTotal())))
	}
	accumulated := n.BalanceBeforeSale.Add(n.SaleTotal)

	var b strings.Builder
	b.WriteString(RenderGreeting(n.ClientName, n.Greeting))
	b.WriteString("\nNova compra registrada:\n\n")
	b.WriteString("🛒 *Resumo do Pedido:*\n")
	b.WriteString(strings.Join(lines, "\n") + "\n")
	b.WriteString(messageDivider + "\n")
	fmt.Fprintf(&b, "💵 *Total da Compra:* %s\n", FormatBRL(n.SaleTotal))
	fmt.Fprintf(&b, "📅 *Vencimento:* %s\n", FormatDate(n.DueDate))
	b.WriteString(messageDivider + "\n")
	fmt.Fprintf(&b, "💰 *Total Acumulado:* %s\n", FormatBRL(accumulated))
	fmt.Fprintf(&b, "🔗 *PIX:* %s\n\n", pixOr(n.PixKey, salePixFallback))
	b.WriteString("_Obrigado!_")
	return strings.TrimSpace(b.String())
}

// PhoneDigits strips everything but ASCII digits from a phone number.
func PhoneDigits(phone string) string {
	return nonDigits.ReplaceAllString(phone, "")
}

// BuildDeepLink returns https://wa.me/<digits>?text=<message>. The message is
// percent-encoded with %20 for spaces so that any URL decoder restores it
// byte for byte.
func BuildDeepLink(phone, message string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(message), "+", "%20")
	return deepLinkBase + PhoneDigits(phone) + "?text=" + encoded
}

// DecodeDeepLink extracts the phone digits and the message from a link built by BuildDeepLink.
func DecodeDeepLink(link string) (phone, message string, err error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse deep link: %w", err)
	}
	if u.Host != "wa.me" {
		return "", "", fmt.Errorf("%w: not a wa.me link", ErrInvalidInput)
	}
	return strings.TrimPrefix(u.Path, "/"), u.Query().Get("text"), nil
}

func pixOr(pixKey, fallback string) string {
	if pixKey == "" {
		return fallback
	}
	return pixKey
}
