package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerseyshop/storefront/internal/cart"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/storage"
	"github.com/jerseyshop/storefront/pkg/errors"
)

type fakeOrders struct {
	calls []domain.OrderRequest
	keys  []string
	err   error
}

func (f *fakeOrders) CreateOrder(ctx context.Context, order domain.OrderRequest, key string) (domain.Order, error) {
	f.calls = append(f.calls, order)
	f.keys = append(f.keys, key)
	if f.err != nil {
		return domain.Order{}, f.err
	}
	return domain.Order{
		ID:          "ord-1",
		Items:       order.Items,
		TotalAmount: order.TotalAmount,
		Status:      domain.OrderStatusPending,
	}, nil
}

type fakeAuth bool

func (a fakeAuth) IsAuthenticated(ctx context.Context) bool { return bool(a) }

type ceilings map[string]int

func (c ceilings) StockCeiling(productID, size string) int {
	return c[domain.LineID(productID, size)]
}

var (
	home = domain.Product{ID: "rm-home-24", Name: "Real Madrid Home", Type: "home", Price: 50, Images: []string{"rm.jpg"}}
	away = domain.Product{ID: "rm-away-24", Name: "Real Madrid Away", Type: "away", Price: 50, FullSleeve: true}
)

type fixture struct {
	store  *storage.MemoryStore
	cart   *cart.Cart
	orders *fakeOrders
	ctrl   *Controller
}

func newFixture(t *testing.T, signedIn bool) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStore()
	c, err := cart.New(ctx, store, ceilings{"rm-home-24-M": 5, "rm-away-24-L": 5}, nil)
	require.NoError(t, err)
	t.Cleanup(c.Close)

	orders := &fakeOrders{}
	ctrl, err := NewController(ctx, store, c, orders, fakeAuth(signedIn), nil)
	require.NoError(t, err)
	return &fixture{store: store, cart: c, orders: orders, ctrl: ctrl}
}

func (f *fixture) fillValid(t *testing.T) {
	t.Helper()
	form := validForm()
	require.NoError(t, f.ctrl.Fill(context.Background(), map[string]string{
		FieldName:          form.Name,
		FieldEmail:         form.Email,
		FieldContactNumber: form.ContactNumber,
		FieldAddress:       form.Address,
		FieldCity:          form.City,
		FieldDistrict:      form.District,
		FieldState:         form.State,
		FieldPincode:       form.Pincode,
		FieldNotes:         "<b>Ring</b> twice",
	}))
}

func (f *fixture) fillCart(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.cart.Add(ctx, home, "M", 2)
	require.NoError(t, err)
	_, err = f.cart.Add(ctx, away, "L", 1)
	require.NoError(t, err)
}

func TestSubmit_EndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	f.fillCart(t)
	f.fillValid(t)

	_, err := f.store.Get(ctx, storage.KeyCheckoutDraft)
	require.NoError(t, err, "draft saved while editing")

	order, err := f.ctrl.Submit(ctx, "/checkout")
	require.NoError(t, err)
	assert.Equal(t, "ord-1", order.ID)

	require.Len(t, f.orders.calls, 1)
	req := f.orders.calls[0]
	assert.Equal(t, 150.0, req.Subtotal)
	assert.Equal(t, 70, req.DeliveryCharge)
	assert.Equal(t, 220.0, req.TotalAmount)
	assert.Equal(t, PaymentMethod, req.PaymentMethod)
	assert.Equal(t, "Ring twice", req.Notes)
	require.Len(t, req.Items, 2)
	assert.Equal(t, domain.OrderItem{
		ProductID: "rm-home-24", Name: "Real Madrid Home", Size: "M", Quantity: 2,
		Price: 50, Type: "home", Image: "rm.jpg",
	}, req.Items[0])
	assert.True(t, req.Items[1].FullSleeve)
	assert.Equal(t, "Kochi", req.ShippingAddress.City)
	assert.NotEmpty(t, f.orders.keys[0])

	assert.True(t, f.cart.IsEmpty())
	assert.Equal(t, domain.CheckoutForm{}, f.ctrl.Form())
	_, err = f.store.Get(ctx, storage.KeyCheckoutDraft)
	assert.True(t, errors.IsNotFound(err), "draft removed after success")
}

func TestSubmit_FreshIdempotencyKeyPerAttempt(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	f.fillCart(t)
	f.fillValid(t)
	f.orders.err = &errors.ErrUnavailable{Op: "POST /api/orders/create"}

	_, err := f.ctrl.Submit(ctx, "/checkout")
	require.Error(t, err)
	_, err = f.ctrl.Submit(ctx, "/checkout")
	require.Error(t, err)

	require.Len(t, f.orders.keys, 2)
	assert.NotEqual(t, f.orders.keys[0], f.orders.keys[1])
}

func TestSubmit_RequiresSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, false)
	f.fillCart(t)
	require.NoError(t, f.ctrl.Set(ctx, FieldName, "Asha Menon"))
	require.NoError(t, f.store.Delete(ctx, storage.KeyCheckoutDraft))

	_, err := f.ctrl.Submit(ctx, "/checkout")
	var authErr *errors.ErrAuthRequired
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "/checkout", authErr.ReturnTo)
	assert.Empty(t, f.orders.calls)

	var draft domain.CheckoutForm
	require.NoError(t, storage.GetJSON(ctx, f.store, storage.KeyCheckoutDraft, &draft))
	assert.Equal(t, "Asha Menon", draft.Name, "draft persisted before redirect")
}

func TestSubmit_ShortPhoneIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	f.fillCart(t)
	f.fillValid(t)
	require.NoError(t, f.ctrl.Set(ctx, FieldContactNumber, "12345"))

	_, err := f.ctrl.Submit(ctx, "/checkout")
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields[FieldContactNumber], "must be exactly 10 digits")
	assert.Empty(t, f.orders.calls, "order endpoint not called")
	assert.False(t, f.cart.IsEmpty())
}

func TestSubmit_CommTypoIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	f.fillCart(t)
	f.fillValid(t)
	require.NoError(t, f.ctrl.Set(ctx, FieldEmail, "user@test.comm"))

	_, err := f.ctrl.Submit(ctx, "/checkout")
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, FieldEmail)
	assert.Empty(t, f.orders.calls)
}

func TestSubmit_EmptyCart(t *testing.T) {
	f := newFixture(t, true)
	f.fillValid(t)

	_, err := f.ctrl.Submit(context.Background(), "/checkout")
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, f.orders.calls)
}

func TestSubmit_BackendFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	f.fillCart(t)
	f.fillValid(t)
	f.orders.err = &errors.ErrBackend{StatusCode: 400, Message: "Insufficient stock for Real Madrid Home (M)"}

	_, err := f.ctrl.Submit(ctx, "/checkout")
	require.Error(t, err)
	assert.Equal(t, "Insufficient stock for Real Madrid Home (M)", errors.UserMessage(err))

	assert.Equal(t, 3, f.cart.Count())
	assert.Equal(t, "Asha Menon", f.ctrl.Form().Name)
	_, err = f.store.Get(ctx, storage.KeyCheckoutDraft)
	assert.NoError(t, err)
}

func TestErrors_OnlyTouchedFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	assert.Empty(t, f.ctrl.Errors())

	require.NoError(t, f.ctrl.Set(ctx, FieldPincode, "12"))
	errs := f.ctrl.Errors()
	assert.Len(t, errs, 1)
	assert.Contains(t, errs, FieldPincode)

	f.ctrl.Touch(FieldName)
	assert.Len(t, f.ctrl.Errors(), 2)

	f.ctrl.TouchAll()
	assert.Len(t, f.ctrl.Errors(), 8)
}

func TestSet_UnknownField(t *testing.T) {
	f := newFixture(t, true)
	err := f.ctrl.Set(context.Background(), "shoeSize", "9")
	var verr *errors.ErrValidation
	assert.ErrorAs(t, err, &verr)
}

func TestDraftRestoredOnNewController(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)
	require.NoError(t, f.ctrl.Set(ctx, FieldCity, "Kochi"))
	require.NoError(t, f.ctrl.Set(ctx, FieldContactNumber, "98765 43210"))

	again, err := NewController(ctx, f.store, f.cart, f.orders, fakeAuth(true), nil)
	require.NoError(t, err)
	assert.Equal(t, "Kochi", again.Form().City)
	assert.Equal(t, "9876543210", again.Form().ContactNumber)
}

func TestPreview(t *testing.T) {
	f := newFixture(t, true)
	f.fillCart(t)
	p := f.ctrl.Preview()
	assert.Equal(t, 3, p.ItemCount())
	assert.Equal(t, 220.0, p.TotalAmount)
}
