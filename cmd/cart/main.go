package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/jerseyshop/storefront/internal/app"
	"github.com/jerseyshop/storefront/internal/cart"
	"github.com/jerseyshop/storefront/internal/delivery"
	"github.com/jerseyshop/storefront/pkg/errors"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  cart list")
	fmt.Println("  cart add <product_id> <size> [quantity]")
	fmt.Println("  cart update <line_id> <quantity>   (0 removes the line)")
	fmt.Println("  cart remove <line_id>")
	fmt.Println("  cart clear")
	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx := context.Background()
	if err := a.Refresh(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Stock unavailable, every size counts as sold out: %v\n", err)
	}

	c, err := cart.New(ctx, a.Store, a.Catalog, a.Logger)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	args := os.Args[2:]
	switch os.Args[1] {
	case "list":
	case "add":
		if len(args) < 2 {
			usage()
		}
		qty := 1
		if len(args) > 2 {
			qty = atoi(args[2])
		}
		product, ok := a.Catalog.Get(args[0])
		if !ok {
			fail(&errors.ErrNotFound{Resource: "product", ID: args[0]})
		}
		res, err := c.Add(ctx, product, args[1], qty)
		if err != nil {
			fail(err)
		}
		switch res.Outcome {
		case cart.OutcomeAdded:
			fmt.Printf("Added %d × %s (%s)\n", res.Added, product.Name, args[1])
		case cart.OutcomePartial:
			fmt.Printf("Only %d left in stock; added %d × %s (%s)\n", res.Ceiling, res.Added, product.Name, args[1])
		case cart.OutcomeRejected:
			if res.Ceiling == 0 {
				fmt.Printf("%s (%s) is out of stock\n", product.Name, args[1])
			} else {
				fmt.Printf("You already have all %d in your cart\n", res.Ceiling)
			}
		}
	case "update":
		if len(args) < 2 {
			usage()
		}
		if err := c.UpdateQuantity(ctx, args[0], atoi(args[1])); err != nil {
			fail(err)
		}
	case "remove":
		if len(args) < 1 {
			usage()
		}
		if err := c.Remove(ctx, args[0]); err != nil {
			fail(err)
		}
	case "clear":
		if err := c.Clear(ctx); err != nil {
			fail(err)
		}
	default:
		usage()
	}

	printCart(c)
}

func printCart(c *cart.Cart) {
	if c.IsEmpty() {
		fmt.Println("Your cart is empty")
		return
	}
	fmt.Println()
	for _, l := range c.Lines() {
		fmt.Printf("%-20s %-32s %-4s ×%-3d %10.2f\n", l.ID, l.Product.Name, l.Size, l.Quantity, l.Subtotal())
	}
	count := c.Count()
	charge := delivery.Charge(count)
	fmt.Printf("\n%-62s %10.2f\n", fmt.Sprintf("Subtotal (%d items)", count), c.Total())
	fmt.Printf("%-62s %10d\n", "Delivery", charge)
	fmt.Printf("%-62s %10.2f\n", "Total", c.Total()+float64(charge))
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Not a number: %s\n", s)
		os.Exit(1)
	}
	return n
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errors.UserMessage(err))
	os.Exit(1)
}
