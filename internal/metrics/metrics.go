// Package metrics exposes Prometheus collectors for ledger activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

// Message kinds.
const (
	MessageSale    = "sale"
	MessageBilling = "billing"
)

// Recorder is the set of counters the application service updates.
type Recorder struct {
	SalesRecorded      prometheus.Counter
	SaleLines          prometheus.Counter
	SaleAmount         prometheus.Histogram
	Settlements        prometheus.Counter
	SettledAmount      prometheus.Counter
	MessagesRendered   *prometheus.CounterVec
	OrphanTransactions prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		SalesRecorded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bomboniere",
			Name:      "sales_recorded_total",
			Help:      "Sales checked out at the point of sale.",
		}),
		SaleLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bomboniere",
			Name:      "sale_lines_total",
			Help:      "Ledger entries appended by sales.",
		}),
		SaleAmount: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bomboniere",
			Name:      "sale_amount_brl",
			Help:      "Distribution of sale totals in BRL.",
			Buckets:   []float64{5, 10, 20, 50, 100, 200, 500},
		}),
		Settlements: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bomboniere",
			Name:      "settlements_total",
			Help:      "Debts settled.",
		}),
		SettledAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bomboniere",
			Name:      "settled_amount_brl_total",
			Help:      "Sum of settled balances in BRL.",
		}),
		MessagesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bomboniere",
			Name:      "messages_rendered_total",
			Help:      "Notification payloads built, by kind.",
		}, []string{"kind"}),
		OrphanTransactions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "bomboniere",
			Name:      "orphan_transactions_total",
			Help:      "Entries recorded for a client id that no longer resolves.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			r.SalesRecorded, r.SaleLines, r.SaleAmount,
			r.Settlements, r.SettledAmount,
			r.MessagesRendered, r.OrphanTransactions,
		)
	}
	return r
}

// ObserveSale records one checkout.
func (r *Recorder) ObserveSale(lines int, total decimal.Decimal) {
	r.SalesRecorded.Inc()
	r.SaleLines.Add(float64(lines))
	r.SaleAmount.Observe(total.InexactFloat64())
}

// ObserveSettlement records one settled debt.
func (r *Recorder) ObserveSettlement(amount decimal.Decimal) {
	r.Settlements.Inc()
	r.SettledAmount.Add(amount.Abs().InexactFloat64())
}

// ObserveMessage records one rendered notification.
func (r *Recorder) ObserveMessage(kind string) {
	r.MessagesRendered.WithLabelValues(kind).Inc()
}
