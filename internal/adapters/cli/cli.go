package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"bomboniere/internal/app"
	"bomboniere/internal/core"

	"github.com/spf13/cobra"
)

// Opener builds the service the commands run against. The returned func
// releases whatever the service holds open.
type Opener func(ctx context.Context) (app.ApplicationService, func(), error)

// Server runs the HTTP API until ctx is cancelled.
type Server func(ctx context.Context) error

// NewRootCommand wires every subcommand. The service is opened per invocation
// so that `serve` and the one-shot commands share configuration.
func NewRootCommand(open Opener, serve Server) *cobra.Command {
	root := &cobra.Command{
		Use:   "bomboniere",
		Short: "Customer credit ledger for a small shop",
		Long: `Track what each customer owes, record sales and payments, and build
the WhatsApp billing messages for the shop's two monthly billing cycles.`,
		SilenceUsage: true,
	}

	run := func(fn func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			svc, release, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer release()
			return fn(cmd.Context(), svc, cmd, args)
		}
	}

	root.AddCommand(
		clientsCommand(run),
		productsCommand(run),
		settingsCommand(run),
		&cobra.Command{
			Use:   "sale CLIENT_ID PRODUCT_ID[:QTY]...",
			Short: "Record a sale on the client's account",
			Args:  cobra.MinimumNArgs(2),
			RunE:  run(runSale),
		},
		&cobra.Command{
			Use:   "settle CLIENT_ID",
			Short: "Record a payment clearing the client's balance",
			Args:  cobra.ExactArgs(1),
			RunE:  run(runSettle),
		},
		&cobra.Command{
			Use:   "bill CLIENT_ID",
			Short: "Print the cycle-closing bill and its WhatsApp link",
			Args:  cobra.ExactArgs(1),
			RunE:  run(runBill),
		},
		&cobra.Command{
			Use:   "history [CLIENT_ID]",
			Short: "List ledger entries, optionally for one client",
			Args:  cobra.MaximumNArgs(1),
			RunE:  run(runHistory),
		},
		&cobra.Command{
			Use:   "summary",
			Short: "Show the dashboard figures for this month",
			Args:  cobra.NoArgs,
			RunE:  run(runSummary),
		},
		&cobra.Command{
			Use:   "due-date [YYYY-MM-DD]",
			Short: "Show the billing due date for a date (default today)",
			Args:  cobra.MaximumNArgs(1),
			RunE:  run(runDueDate),
		},
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
	)
	return root
}

type runner func(fn func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error

// ─── clients ────────────────────────────────────────────────────────────────

func clientsCommand(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "Manage customers",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List customers with balance and due date",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			search, _ := cmd.Flags().GetString("search")
			debtOnly, _ := cmd.Flags().GetBool("debt")
			result, err := svc.ListClients(ctx, app.ClientFilter{Search: search, DebtOnly: debtOnly})
			if err != nil {
				return err
			}
			printClients(cmd.OutOrStdout(), result)
			return nil
		}),
	}
	list.Flags().StringP("search", "s", "", "Filter by name")
	list.Flags().Bool("debt", false, "Only customers who owe something")

	add := &cobra.Command{
		Use:   "add NAME PHONE",
		Short: "Register a customer",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			result, err := svc.RegisterClient(ctx, app.RegisterClientRequest{Name: args[0], Phone: args[1]})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Client %s registered with id %s\n", result.Client.Name, result.Client.ID)
			return nil
		}),
	}

	del := &cobra.Command{
		Use:   "delete CLIENT_ID",
		Short: "Remove a customer (ledger history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			if err := svc.DeleteClient(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Client %s deleted.\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, add, del)
	return cmd
}

// ─── products ───────────────────────────────────────────────────────────────

func productsCommand(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "products",
		Short: "Manage the point-of-sale catalog",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List catalog items",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			result, err := svc.ListProducts(ctx)
			if err != nil {
				return err
			}
			printProducts(cmd.OutOrStdout(), result)
			return nil
		}),
	}

	save := &cobra.Command{
		Use:   "save NAME PRICE",
		Short: "Create a catalog item, or update one with --id",
		Args:  cobra.ExactArgs(2),
		RunE: run(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			icon, _ := cmd.Flags().GetString("icon")
			result, err := svc.SaveProduct(ctx, app.SaveProductRequest{ID: id, Name: args[0], Price: args[1], Icon: icon})
			if err != nil {
				return err
			}
			p := result.Product
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s saved: %s %s\n", p.ID, p.Name, core.FormatBRL(p.Price))
			return nil
		}),
	}
	save.Flags().String("id", "", "Existing product id to update")
	save.Flags().String("icon", core.DefaultProductIcon, "Icon tag ("+strings.Join(core.ProductIcons, ", ")+")")

	del := &cobra.Command{
		Use:   "delete PRODUCT_ID",
		Short: "Remove a catalog item",
		Args:  cobra.ExactArgs(1),
		RunE: run(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
			if err := svc.DeleteProduct(ctx, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Product %s deleted.\n", args[0])
			return nil
		}),
	}

	cmd.AddCommand(list, save, del)
	return cmd
}

// ─── settings ───────────────────────────────────────────────────────────────

func settingsCommand(run runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the owner's settings",
		Args:  cobra.NoArgs,
		RunE: run(func(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
			settings, err := svc.GetSettings(ctx)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.NFlag() > 0 {
				if flags.Changed("pix") {
					settings.PixKey, _ = flags.GetString("pix")
				}
				if flags.Changed("owner") {
					settings.OwnerName, _ = flags.GetString("owner")
				}
				if flags.Changed("instant") {
					settings.InstantMessage, _ = flags.GetBool("instant")
				}
				if flags.Changed("greeting") {
					settings.CustomGreeting, _ = flags.GetString("greeting")
				}
				if settings, err = svc.SaveSettings(ctx, *settings); err != nil {
					return err
				}
			}
			printSettings(cmd.OutOrStdout(), settings)
			return nil
		}),
	}
	cmd.Flags().String("pix", "", "PIX key printed on messages")
	cmd.Flags().String("owner", "", "Owner name")
	cmd.Flags().Bool("instant", true, "Send a receipt on every sale")
	cmd.Flags().String("greeting", "", "Custom greeting; {client} is replaced by the name")
	return cmd
}

// ─── ledger ─────────────────────────────────────────────────────────────────

func runSale(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
	items, err := parseItems(args[1:])
	if err != nil {
		return err
	}
	result, err := svc.RecordSale(ctx, app.SaleRequest{ClientID: args[0], Items: items})
	if err != nil {
		return err
	}
	printSale(cmd.OutOrStdout(), result)
	return nil
}

// parseItems reads PRODUCT_ID[:QTY] arguments; QTY defaults to 1.
func parseItems(args []string) ([]app.SaleItemInput, error) {
	items := make([]app.SaleItemInput, 0, len(args))
	for _, arg := range args {
		id, qtyText, hasQty := strings.Cut(arg, ":")
		qty := 1
		if hasQty {
			n, err := strconv.Atoi(qtyText)
			if err != nil {
				return nil, fmt.Errorf("%w: bad quantity in %q", core.ErrInvalidInput, arg)
			}
			qty = n
		}
		items = append(items, app.SaleItemInput{ProductID: id, Qty: qty})
	}
	return items, nil
}

func runSettle(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
	result, err := svc.SettleDebt(ctx, args[0])
	if err != nil {
		return err
	}
	if !result.Settled {
		fmt.Fprintln(cmd.OutOrStdout(), "Nothing to settle.")
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Received %s from %s. Balance is now zero.\n",
		core.FormatBRL(result.Amount), result.Transaction.ClientName)
	return nil
}

func runBill(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
	result, err := svc.BillClient(ctx, args[0])
	if err != nil {
		return err
	}
	printNotification(cmd.OutOrStdout(), result)
	return nil
}

func runHistory(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
	clientID := ""
	if len(args) == 1 {
		clientID = args[0]
	}
	result, err := svc.ListTransactions(ctx, clientID)
	if err != nil {
		return err
	}
	printTransactions(cmd.OutOrStdout(), result)
	return nil
}

func runSummary(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, _ []string) error {
	result, err := svc.GetSummary(ctx)
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), result)
	return nil
}

func runDueDate(ctx context.Context, svc app.ApplicationService, cmd *cobra.Command, args []string) error {
	date := ""
	if len(args) == 1 {
		date = args[0]
	}
	result, err := svc.ComputeDueDate(ctx, date)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s → due %s\n%s\n", core.FormatDate(result.Date), result.Formatted, result.CycleLabel)
	return nil
}
