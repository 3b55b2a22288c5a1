package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/storefront/internal/cart"
	"github.com/roach88/storefront/internal/catalog"
)

// CartOptions holds flags for the cart command.
type CartOptions struct {
	*RootOptions
	Catalog  string
	Checkout bool

	// Checkouter overrides the checkout boundary (for testing).
	// If nil, defaults to cart.Unimplemented.
	Checkouter cart.Checkout
}

// CartView is the JSON form of a cart.
type CartView struct {
	Items []CartLine `json:"items"`
	Count int        `json:"count"`
	Total string     `json:"total"`
}

// CartLine is one cart line in CartView.
type CartLine struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"line_total"`
}

// NewCartCommand creates the cart command.
func NewCartCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CartOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cart <op>...",
		Short: "Apply operations to a fresh cart",
		Long: `Apply cart operations in order to an empty cart and print the result.

Operations:
  add=ID      add one unit of product ID
  remove=ID   remove the line for product ID
  qty=ID:N    set the quantity of product ID (N <= 0 removes the line)
  clear       empty the cart

Example:
  storefront cart add=1 add=1 add=2
  storefront cart add=1 qty=1:3 remove=2 --format json
  storefront cart add=1 --checkout`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCart(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "path to a catalog YAML file")
	cmd.Flags().BoolVar(&opts.Checkout, "checkout", false, "check out the final cart")

	return cmd
}

// cartOp is one parsed cart operation.
type cartOp struct {
	kind     string // add, remove, qty, clear
	id       int64
	quantity int
}

// parseCartOp parses one operation argument.
func parseCartOp(arg string) (cartOp, error) {
	if arg == "clear" {
		return cartOp{kind: "clear"}, nil
	}
	kind, value, ok := strings.Cut(arg, "=")
	if !ok {
		return cartOp{}, fmt.Errorf("invalid operation %q: want add=ID, remove=ID, qty=ID:N or clear", arg)
	}

	switch kind {
	case "add", "remove":
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return cartOp{}, fmt.Errorf("invalid operation %q: bad product id", arg)
		}
		return cartOp{kind: kind, id: id}, nil
	case "qty":
		idStr, qtyStr, ok := strings.Cut(value, ":")
		if !ok {
			return cartOp{}, fmt.Errorf("invalid operation %q: want qty=ID:N", arg)
		}
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			return cartOp{}, fmt.Errorf("invalid operation %q: bad product id", arg)
		}
		qty, err := strconv.Atoi(qtyStr)
		if err != nil {
			return cartOp{}, fmt.Errorf("invalid operation %q: bad quantity", arg)
		}
		return cartOp{kind: kind, id: id, quantity: qty}, nil
	default:
		return cartOp{}, fmt.Errorf("invalid operation %q: unknown operation %q", arg, kind)
	}
}

func runCart(opts *CartOptions, args []string, cmd *cobra.Command) error {
	ops := make([]cartOp, 0, len(args))
	for _, arg := range args {
		op, err := parseCartOp(arg)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid cart operation", err)
		}
		ops = append(ops, op)
	}

	cat, err := resolveCatalog(opts.RootOptions, opts.Catalog)
	if err != nil {
		return err
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())
	engine := cart.NewEngine(logger)
	out := formatter(opts.RootOptions, cmd)

	for _, op := range ops {
		switch op.kind {
		case "add":
			product, err := cat.Find(op.id)
			if errors.Is(err, catalog.ErrProductNotFound) {
				if outErr := out.Error(CodeProductNotFound, err.Error(), nil); outErr != nil {
					return outErr
				}
				return WrapExitError(ExitFailure, "cart operation failed", err)
			}
			if err != nil {
				return err
			}
			engine.AddItem(product)
		case "remove":
			engine.RemoveItem(op.id)
		case "qty":
			engine.UpdateQuantity(op.id, op.quantity)
		case "clear":
			engine.Clear()
		}
	}

	state := engine.State()

	if opts.Checkout {
		checkout := opts.Checkouter
		if checkout == nil {
			checkout = cart.Unimplemented{}
		}
		if err := checkout.Checkout(cmd.Context(), state); err != nil {
			if outErr := out.Error(CodeCheckoutFailed, err.Error(), newCartView(state)); outErr != nil {
				return outErr
			}
			return WrapExitError(ExitFailure, "checkout failed", err)
		}
	}

	if opts.Format == "json" {
		return out.Success(newCartView(state))
	}
	return printCart(cmd, state)
}

func newCartView(s cart.State) CartView {
	v := CartView{Items: make([]CartLine, 0, len(s.Items)), Count: s.Count(), Total: s.Total.Fixed()}
	for _, it := range s.Items {
		v.Items = append(v.Items, CartLine{
			ID:        it.ID,
			Name:      it.Name,
			Price:     it.Price.Fixed(),
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal().Fixed(),
		})
	}
	return v
}

func printCart(cmd *cobra.Command, s cart.State) error {
	w := cmd.OutOrStdout()
	if s.IsEmpty() {
		fmt.Fprintln(w, "Cart is empty.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tQTY\tLINE")
	for _, it := range s.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", it.ID, it.Name, it.Price.Fixed(), it.Quantity, it.LineTotal().Fixed())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nItems: %d  Total: %s\n", s.Count(), s.Total.Fixed())
	return nil
}
