package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jerseyshop/storefront/internal/app"
	"github.com/jerseyshop/storefront/internal/catalog"
	"github.com/jerseyshop/storefront/internal/domain"
)

func main() {
	watch := flag.Duration("watch", 0, "Keep refreshing at this interval (e.g. 30s) until interrupted")
	club := flag.String("club", "", "Only show this club")
	inStock := flag.Bool("in-stock", false, "Only show products with any size available")
	flag.Parse()

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	query := catalog.Query{Club: *club, InStockOnly: *inStock}

	if *watch <= 0 {
		if err := a.Refresh(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to fetch stock: %v\n", err)
			os.Exit(1)
		}
		printAvailability(a.Catalog.Filter(query))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.Fetcher.RunLoop(ctx, *watch)

	ticker := time.NewTicker(*watch)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fmt.Printf("--- %s\n", time.Now().Format(time.Kitchen))
			printAvailability(a.Catalog.Filter(query))
		}
	}
}

func printAvailability(products []domain.Product) {
	for _, p := range products {
		sizes := make([]string, 0, len(p.Sizes))
		for _, s := range p.Sizes {
			n := p.StockFor(s)
			if n == 0 {
				sizes = append(sizes, s+":sold out")
			} else {
				sizes = append(sizes, fmt.Sprintf("%s:%d", s, n))
			}
		}
		fmt.Printf("%-14s %-32s %8.2f %s\n", p.ID, p.Name, p.Price, strings.Join(sizes, "  "))
	}
}
