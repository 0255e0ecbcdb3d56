package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jerseyshop/storefront/internal/app"
	"github.com/jerseyshop/storefront/internal/service"
	"github.com/jerseyshop/storefront/pkg/errors"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  signin signin <email> <password>")
	fmt.Println("  signin signup <name> <email> <password>")
	fmt.Println("  signin signout")
	fmt.Println("  signin whoami")
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
	auth := service.NewAuthService(a.Client, a.Session, a.Logger)
	args := os.Args[2:]

	switch os.Args[1] {
	case "signin":
		if len(args) < 2 {
			usage()
		}
		user, err := auth.SignIn(ctx, args[0], args[1])
		if err != nil {
			fail(err)
		}
		fmt.Printf("Welcome back, %s!\n", user.Name)
	case "signup":
		if len(args) < 3 {
			usage()
		}
		user, err := auth.SignUp(ctx, args[0], args[1], args[2])
		if err != nil {
			fail(err)
		}
		fmt.Printf("Account created. Welcome, %s!\n", user.Name)
	case "signout":
		if err := auth.SignOut(ctx); err != nil {
			fail(err)
		}
		fmt.Println("Signed out")
	case "whoami":
		user, ok := a.Session.User(ctx)
		if !ok || !a.Session.IsAuthenticated(ctx) {
			fmt.Println("Not signed in")
			return
		}
		fmt.Printf("%s <%s> (%s)\n", user.Name, user.Email, user.Role)
	default:
		usage()
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errors.UserMessage(err))
	os.Exit(1)
}
