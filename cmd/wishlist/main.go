package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jerseyshop/storefront/internal/app"
	"github.com/jerseyshop/storefront/internal/wishlist"
	"github.com/jerseyshop/storefront/pkg/errors"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  wishlist list")
		fmt.Println("  wishlist toggle <product_id>")
		fmt.Println("  wishlist clear")
		os.Exit(1)
	}

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx := context.Background()
	w, err := wishlist.New(ctx, a.Store, a.Logger)
	if err != nil {
		fail(err)
	}
	defer w.Close()

	switch os.Args[1] {
	case "list":
		if err := a.Refresh(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Stock unavailable: %v\n", err)
		}
	case "toggle":
		if len(os.Args) < 3 {
			fmt.Println("Usage: wishlist toggle <product_id>")
			os.Exit(1)
		}
		id := os.Args[2]
		if _, ok := a.Catalog.Get(id); !ok {
			fail(&errors.ErrNotFound{Resource: "product", ID: id})
		}
		added, err := w.Toggle(ctx, id)
		if err != nil {
			fail(err)
		}
		if added {
			fmt.Println("Added to wishlist")
		} else {
			fmt.Println("Removed from wishlist")
		}
	case "clear":
		if err := w.Clear(ctx); err != nil {
			fail(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	products := w.Products(a.Catalog)
	if len(products) == 0 {
		fmt.Println("Your wishlist is empty")
		return
	}
	for _, p := range products {
		status := "in stock"
		if !p.InStock() {
			status = "sold out"
		}
		fmt.Printf("%-14s %-32s %8.2f  %s\n", p.ID, p.Name, p.Price, status)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errors.UserMessage(err))
	os.Exit(1)
}
