package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/jerseyshop/storefront/internal/app"
	"github.com/jerseyshop/storefront/internal/cart"
	"github.com/jerseyshop/storefront/internal/checkout"
	"github.com/jerseyshop/storefront/pkg/errors"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  checkout show")
	fmt.Println("  checkout set <field> <value>")
	fmt.Println("  checkout submit")
	fmt.Println()
	fmt.Println("Fields:", checkout.FieldOrder())
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
		fmt.Fprintf(os.Stderr, "Stock unavailable: %v\n", err)
	}

	c, err := cart.New(ctx, a.Store, a.Catalog, a.Logger)
	if err != nil {
		fail(err)
	}
	defer c.Close()

	ctrl, err := checkout.NewController(ctx, a.Store, c, a.Client, a.Session, a.Logger)
	if err != nil {
		fail(err)
	}

	switch os.Args[1] {
	case "show":
		ctrl.TouchAll()
		show(ctrl)
	case "set":
		if len(os.Args) < 4 {
			usage()
		}
		if err := ctrl.Set(ctx, os.Args[2], os.Args[3]); err != nil {
			fail(err)
		}
		show(ctrl)
	case "submit":
		order, err := ctrl.Submit(ctx, "/checkout")
		if err != nil {
			var authErr *errors.ErrAuthRequired
			if stderrors.As(err, &authErr) {
				fmt.Fprintln(os.Stderr, "Please sign in to continue (run: signin signin <email> <password>). Your details were saved.")
				os.Exit(1)
			}
			var validation *errors.ErrValidation
			if stderrors.As(err, &validation) {
				for _, f := range checkout.SortedFields(validation.Fields) {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", f, validation.Fields[f])
				}
			}
			fail(err)
		}
		fmt.Printf("Order placed! Order ID: %s\n", order.ID)
		fmt.Printf("Total %.2f (%s)\n", order.TotalAmount, order.PaymentMethod)
	default:
		usage()
	}
}

func show(ctrl *checkout.Controller) {
	form := ctrl.Form()
	errs := ctrl.Errors()
	values := map[string]string{
		checkout.FieldName:          form.Name,
		checkout.FieldEmail:         form.Email,
		checkout.FieldContactNumber: form.ContactNumber,
		checkout.FieldAddress:       form.Address,
		checkout.FieldCity:          form.City,
		checkout.FieldDistrict:      form.District,
		checkout.FieldState:         form.State,
		checkout.FieldPincode:       form.Pincode,
		checkout.FieldPostOffice:    form.PostOffice,
		checkout.FieldNotes:         form.Notes,
	}
	for _, f := range checkout.FieldOrder() {
		line := fmt.Sprintf("%-14s %s", f, values[f])
		if msg, ok := errs[f]; ok {
			line += "   ! " + msg
		}
		fmt.Println(line)
	}

	preview := ctrl.Preview()
	fmt.Printf("\n%d items  subtotal %.2f  delivery %d  total %.2f\n",
		preview.ItemCount(), preview.Subtotal, preview.DeliveryCharge, preview.TotalAmount)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, errors.UserMessage(err))
	os.Exit(1)
}
