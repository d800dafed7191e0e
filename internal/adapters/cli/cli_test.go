package cli_test

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"bomboniere/internal/adapters/cli"
	"bomboniere/internal/app"
	"bomboniere/internal/core"
	"bomboniere/internal/store"
	"bomboniere/internal/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	svc    app.ApplicationService
	served bool
}

func newHarness() *harness {
	now := time.Date(2024, time.March, 22, 10, 0, 0, 0, time.UTC)
	seq := 0
	ledger := core.NewLedger(store.New(memory.New()),
		core.WithClock(func() time.Time { return now }),
		core.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("c%d", seq)
		}),
	)
	return &harness{svc: app.NewAppService(ledger, nil, time.UTC)}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	open := func(context.Context) (app.ApplicationService, func(), error) {
		return h.svc, func() {}, nil
	}
	serve := func(context.Context) error {
		h.served = true
		return nil
	}
	root := cli.NewRootCommand(open, serve)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestSaleSettleBill(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "clients", "add", "Ana", "+55 11 99999-9999")
	require.NoError(t, err)
	assert.Contains(t, out, "id c1")

	out, err = h.run(t, "sale", "c1", "p1:2", "p6")
	require.NoError(t, err)
	assert.Contains(t, out, "Chocolate Premium (2x)")
	assert.Contains(t, out, "R$ 30,00")
	assert.Contains(t, out, "DUE: 05/04/2024")
	assert.Contains(t, out, "LINK: https://wa.me/5511999999999?text=")

	out, err = h.run(t, "clients", "list", "--debt")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "05/04/2024")

	out, err = h.run(t, "bill", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "💰 *Total a Pagar:* R$ 30,00")

	out, err = h.run(t, "settle", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "Received R$ 30,00 from Ana")

	out, err = h.run(t, "settle", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to settle.")

	out, err = h.run(t, "history", "c1")
	require.NoError(t, err)
	assert.Contains(t, out, "Pagamento de Fatura")
	assert.Contains(t, out, "R$ 0,00")
}

func TestSale_BadQuantity(t *testing.T) {
	h := newHarness()
	_, err := h.run(t, "sale", "c1", "p1:x")
	assert.ErrorIs(t, err, core.ErrInvalidInput)

	_, err = h.run(t, "sale", "c1")
	assert.Error(t, err)
}

func TestProductsAndSettings(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "products", "save", "Pudim", "7,90", "--icon", "cake")
	require.NoError(t, err)
	assert.Contains(t, out, "Pudim R$ 7,90")

	out, err = h.run(t, "products", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Trufa Artesanal")
	assert.Contains(t, out, "Pudim")

	out, err = h.run(t, "settings", "--pix", "pix@loja.com", "--instant=false")
	require.NoError(t, err)
	assert.Contains(t, out, "PIX:      pix@loja.com")
	assert.Contains(t, out, "INSTANT:  false")

	out, err = h.run(t, "settings")
	require.NoError(t, err)
	assert.Contains(t, out, "OWNER:    Admin")
	assert.Contains(t, out, "PIX:      pix@loja.com")
}

func TestDueDateAndSummary(t *testing.T) {
	h := newHarness()

	out, err := h.run(t, "due-date", "2024-12-20")
	require.NoError(t, err)
	assert.Contains(t, out, "20/12/2024 → due 05/01/2025")

	out, err = h.run(t, "summary")
	require.NoError(t, err)
	assert.Contains(t, out, "Ciclo Vigente: 21 a 05 (Vence dia 05)")
	assert.Contains(t, out, "Total receivable")
}

func TestServe(t *testing.T) {
	h := newHarness()
	_, err := h.run(t, "serve")
	require.NoError(t, err)
	assert.True(t, h.served)
}
