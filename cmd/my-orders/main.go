package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jerseyshop/storefront/internal/app"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/service"
	"github.com/jerseyshop/storefront/pkg/errors"
)

func main() {
	page := flag.Int("page", 1, "Page to show")
	limit := flag.Int("limit", 10, "Orders per page")
	flag.Parse()

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx := context.Background()
	orders := service.NewOrderService(a.Client, a.Logger)

	switch flag.Arg(0) {
	case "", "list":
		res, err := orders.MyOrders(ctx, *page, *limit)
		if err != nil {
			fail(err)
		}
		if len(res.Orders) == 0 {
			fmt.Println("You have no orders yet")
			return
		}
		for _, o := range res.Orders {
			printOrder(o)
		}
		p := res.Pagination
		fmt.Printf("Page %d of %d (%d orders)\n", p.Page, p.TotalPages, p.Total)
	case "cancel":
		if flag.NArg() < 2 {
			fmt.Println("Usage: my-orders cancel <order_id>")
			os.Exit(1)
		}
		order, err := orders.Find(ctx, flag.Arg(1))
		if err != nil {
			fail(err)
		}
		if err := orders.Cancel(ctx, order); err != nil {
			fail(err)
		}
		fmt.Printf("Order %s cancelled\n", order.ID)
	default:
		fmt.Println("Usage: my-orders [-page N] [-limit N] [list | cancel <order_id>]")
		os.Exit(1)
	}
}

func printOrder(o domain.Order) {
	fmt.Printf("%s  %-10s  %s  total %.2f\n", o.ID, o.Status, o.CreatedAt.Local().Format("02 Jan 2006 15:04"), o.TotalAmount)
	for _, it := range o.Items {
		fmt.Printf("    %d × %s (%s)  %.2f\n", it.Quantity, it.Name, it.Size, it.Price*float64(it.Quantity))
	}
	if o.Status.CanCancel() {
		fmt.Println("    can be cancelled")
	}
	fmt.Println()
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errors.UserMessage(err))
	os.Exit(1)
}
