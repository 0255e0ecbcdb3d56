package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jerseyshop/storefront/internal/app"
	"github.com/jerseyshop/storefront/internal/service"
	"github.com/jerseyshop/storefront/pkg/errors"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx := context.Background()
	inbox := service.NewInboxService(a.Client, a.Logger)

	cmd := "list"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "list":
		msgs, err := inbox.Messages(ctx)
		if err != nil {
			fail(err)
		}
		if len(msgs) == 0 {
			fmt.Println("No messages")
			return
		}
		for _, m := range msgs {
			mark := " "
			if !m.Read {
				mark = "•"
			}
			fmt.Printf("%s %s  [%s] %s\n   %s\n", mark, m.CreatedAt.Local().Format("02 Jan 15:04"), m.Type, m.ID, m.Message)
		}
	case "read":
		if len(os.Args) < 3 {
			fmt.Println("Usage: inbox read <message_id|all>")
			os.Exit(1)
		}
		if os.Args[2] == "all" {
			n, err := inbox.MarkAllRead(ctx)
			if err != nil {
				fail(err)
			}
			fmt.Printf("Marked %d messages read\n", n)
			return
		}
		if err := inbox.MarkRead(ctx, os.Args[2]); err != nil {
			fail(err)
		}
		fmt.Println("Marked read")
	case "unread":
		n, err := inbox.Unread(ctx)
		if err != nil {
			fail(err)
		}
		fmt.Println(n)
	default:
		fmt.Println("Usage: inbox [list | unread | read <message_id|all>]")
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errors.UserMessage(err))
	os.Exit(1)
}
