package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jerseyshop/storefront/internal/app"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/service"
	"github.com/jerseyshop/storefront/pkg/errors"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  admin [-page N] [-limit N] orders [status]")
	fmt.Println("  admin status <order_id> <pending|confirmed|shipped|delivered|cancelled>")
	fmt.Println("  admin users")
	fmt.Println("  admin message <user_id> <info|promotion|order|alert> <text>")
	fmt.Println("  admin broadcast <info|promotion|order|alert> <text>")
	fmt.Println("  admin history")
	fmt.Println("  admin stock <product_id> SIZE=N [SIZE=N ...]")
	os.Exit(1)
}

func main() {
	page := flag.Int("page", 1, "Page to show")
	limit := flag.Int("limit", 10, "Orders per page")
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
	}

	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx := context.Background()
	if !a.Session.IsAdmin(ctx) {
		fmt.Fprintln(os.Stderr, "Sign in with an admin account first")
		os.Exit(1)
	}
	admin := service.NewAdminService(a.Client, a.Logger)
	args := flag.Args()[1:]

	switch flag.Arg(0) {
	case "orders":
		var status domain.OrderStatus
		if len(args) > 0 {
			status = domain.ParseOrderStatus(args[0])
		}
		res, err := admin.Orders(ctx, *page, *limit, status)
		if err != nil {
			fail(err)
		}
		for _, o := range res.Orders {
			fmt.Printf("%s  %-10s  %-20s %-14s %d items  %.2f\n",
				o.ID, o.Status, o.ShippingAddress.Name, o.ShippingAddress.ContactNumber, itemCount(o), o.TotalAmount)
		}
		p := res.Pagination
		fmt.Printf("Page %d of %d (%d orders)\n", p.Page, p.TotalPages, p.Total)
	case "status":
		if len(args) < 2 {
			usage()
		}
		order, err := admin.FindOrder(ctx, args[0])
		if err != nil {
			fail(err)
		}
		updated, err := admin.UpdateStatus(ctx, order, domain.ParseOrderStatus(args[1]))
		if err != nil {
			fail(err)
		}
		fmt.Printf("Order %s is now %s\n", updated.ID, updated.Status)
	case "users":
		users, err := admin.Users(ctx)
		if err != nil {
			fail(err)
		}
		for _, u := range users {
			fmt.Printf("%s  %-24s %-32s %s\n", u.ID, u.Name, u.Email, u.Role)
		}
	case "message":
		if len(args) < 3 {
			usage()
		}
		msg, err := admin.SendMessage(ctx, args[0], strings.Join(args[2:], " "), domain.MessageType(args[1]))
		if err != nil {
			fail(err)
		}
		fmt.Printf("Message %s sent\n", msg.ID)
	case "broadcast":
		if len(args) < 2 {
			usage()
		}
		n, err := admin.Broadcast(ctx, strings.Join(args[1:], " "), domain.MessageType(args[0]))
		if err != nil {
			fail(err)
		}
		fmt.Printf("Broadcast sent to %d users\n", n)
	case "history":
		groups, err := admin.BroadcastHistory(ctx)
		if err != nil {
			fail(err)
		}
		for _, g := range groups {
			fmt.Printf("%s  [%s] %d/%d read  %s\n", g.Day, g.Type, g.ReadCount, g.Recipients, g.Message)
		}
	case "stock":
		if len(args) < 2 {
			usage()
		}
		stock, err := parseStock(args[1:])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		entry, err := admin.SetStock(ctx, args[0], stock)
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s: %v\n", entry.ProductID, entry.Stock)
	default:
		usage()
	}
}

func parseStock(pairs []string) (map[string]int, error) {
	stock := make(map[string]int, len(pairs))
	for _, p := range pairs {
		size, n, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("expected SIZE=N, got %q", p)
		}
		qty, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("stock for %s is not a number: %q", size, n)
		}
		stock[strings.ToUpper(strings.TrimSpace(size))] = qty
	}
	return stock, nil
}

func itemCount(o domain.Order) int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errors.UserMessage(err))
	os.Exit(1)
}
