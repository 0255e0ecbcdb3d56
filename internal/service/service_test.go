package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jerseyshop/storefront/internal/backend"
	"github.com/jerseyshop/storefront/internal/domain"
	"github.com/jerseyshop/storefront/internal/session"
	"github.com/jerseyshop/storefront/internal/storage"
	"github.com/jerseyshop/storefront/pkg/errors"
)

type fakeBackend struct {
	auth      domain.AuthResult
	authErr   error
	orders    []domain.Order
	cancelled []string
	messages  []domain.Message
	read      []string
	statusTo  []domain.OrderStatus
	stock     map[string]map[string]int
	sent      int
}

func (f *fakeBackend) SignIn(ctx context.Context, email, password string) (domain.AuthResult, error) {
	return f.auth, f.authErr
}

func (f *fakeBackend) SignUp(ctx context.Context, name, email, password string) (domain.AuthResult, error) {
	return f.auth, f.authErr
}

func (f *fakeBackend) MyOrders(ctx context.Context, page, limit int) (domain.OrderPage, error) {
	return f.page(page, limit), nil
}

func (f *fakeBackend) page(page, limit int) domain.OrderPage {
	start := (page - 1) * limit
	if start > len(f.orders) {
		start = len(f.orders)
	}
	end := min(start+limit, len(f.orders))
	total := len(f.orders)
	return domain.OrderPage{
		Orders: f.orders[start:end],
		Pagination: domain.Pagination{
			Page: page, Limit: limit, Total: total,
			TotalPages: (total + limit - 1) / limit,
		},
	}
}

func (f *fakeBackend) CancelOrder(ctx context.Context, orderID string) error {
	f.cancelled = append(f.cancelled, orderID)
	return nil
}

func (f *fakeBackend) MyMessages(ctx context.Context) ([]domain.Message, error) {
	return append([]domain.Message(nil), f.messages...), nil
}

func (f *fakeBackend) MarkMessageRead(ctx context.Context, id string) error {
	f.read = append(f.read, id)
	return nil
}

func (f *fakeBackend) AdminListOrders(ctx context.Context, page, limit int, status domain.OrderStatus) (domain.OrderPage, error) {
	return f.page(page, limit), nil
}

func (f *fakeBackend) AdminUpdateOrderStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	f.statusTo = append(f.statusTo, status)
	return domain.Order{ID: id, Status: status}, nil
}

func (f *fakeBackend) AdminListUsers(ctx context.Context) ([]domain.User, error) {
	return []domain.User{{ID: "u1"}}, nil
}

func (f *fakeBackend) AdminSendMessage(ctx context.Context, userID, message string, typ domain.MessageType) (domain.Message, error) {
	return domain.Message{ID: "m1", UserID: userID, Message: message, Type: typ}, nil
}

func (f *fakeBackend) AdminBroadcast(ctx context.Context, message string, typ domain.MessageType) (backend.BroadcastResult, error) {
	return backend.BroadcastResult{Sent: f.sent}, nil
}

func (f *fakeBackend) AdminListMessages(ctx context.Context) ([]domain.Message, error) {
	return f.messages, nil
}

func (f *fakeBackend) AdminSetStock(ctx context.Context, productID string, stock map[string]int) (domain.StockEntry, error) {
	if f.stock == nil {
		f.stock = make(map[string]map[string]int)
	}
	f.stock[productID] = stock
	return domain.StockEntry{ProductID: productID, Stock: stock}, nil
}

func TestAuthService_SignInStoresSession(t *testing.T) {
	ctx := context.Background()
	sess := session.New(storage.NewMemoryStore(), nil)
	fb := &fakeBackend{auth: domain.AuthResult{Token: "tok", User: domain.User{ID: "u1", Role: domain.RoleUser}}}
	svc := NewAuthService(fb, sess, nil)

	user, err := svc.SignIn(ctx, " asha@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "tok", sess.Token(ctx))

	require.NoError(t, svc.SignOut(ctx))
	assert.False(t, sess.IsAuthenticated(ctx))
}

func TestAuthService_ValidatesBeforeCalling(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{authErr: &errors.ErrBackend{StatusCode: 500}}
	svc := NewAuthService(fb, session.New(storage.NewMemoryStore(), nil), nil)

	_, err := svc.SignIn(ctx, "asha@example.comm", "")
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "password")

	_, err = svc.SignUp(ctx, "A1", "asha@example.com", "123")
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "password")
	assert.NotContains(t, verr.Fields, "email")
}

func TestAuthService_BackendRejection(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{authErr: &errors.ErrBackend{StatusCode: 401, Message: "Invalid credentials"}}
	sess := session.New(storage.NewMemoryStore(), nil)
	svc := NewAuthService(fb, sess, nil)

	_, err := svc.SignIn(ctx, "asha@example.com", "wrong")
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", errors.UserMessage(err))
	assert.False(t, sess.IsAuthenticated(ctx))
}

func TestOrderService_Cancel(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{}
	svc := NewOrderService(fb, nil)

	tests := []struct {
		status  domain.OrderStatus
		allowed bool
	}{
		{domain.OrderStatusPending, true},
		{domain.OrderStatusConfirmed, true},
		{domain.OrderStatusShipped, false},
		{domain.OrderStatusDelivered, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			err := svc.Cancel(ctx, domain.Order{ID: "o-" + string(tt.status), Status: tt.status})
			if tt.allowed {
				assert.NoError(t, err)
				assert.Contains(t, fb.cancelled, "o-"+string(tt.status))
			} else {
				var te *errors.ErrInvalidStateTransition
				assert.ErrorAs(t, err, &te)
				assert.NotContains(t, fb.cancelled, "o-"+string(tt.status))
			}
		})
	}

	require.NoError(t, svc.Cancel(ctx, domain.Order{ID: "done", Status: domain.OrderStatusCancelled}))
	assert.NotContains(t, fb.cancelled, "done")
}

func TestOrderService_FindPages(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{}
	for i := 0; i < 120; i++ {
		fb.orders = append(fb.orders, domain.Order{ID: string(rune('a'+i%26)) + string(rune('0'+i/26))})
	}
	svc := NewOrderService(fb, nil)

	o, err := svc.Find(ctx, fb.orders[110].ID)
	require.NoError(t, err)
	assert.Equal(t, fb.orders[110].ID, o.ID)

	_, err = svc.Find(ctx, "missing")
	assert.True(t, errors.IsNotFound(err))

	page, err := svc.MyOrders(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Orders, defaultLimit)
}

func TestInboxService(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	fb := &fakeBackend{messages: []domain.Message{
		{ID: "old", CreatedAt: now.Add(-time.Hour), Read: true},
		{ID: "new", CreatedAt: now},
		{ID: "mid", CreatedAt: now.Add(-time.Minute)},
	}}
	svc := NewInboxService(fb, nil)

	msgs, err := svc.Messages(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{msgs[0].ID, msgs[1].ID, msgs[2].ID})

	n, err := svc.Unread(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	marked, err := svc.MarkAllRead(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)
	assert.ElementsMatch(t, []string{"new", "mid"}, fb.read)
}

func TestAdminService_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{}
	svc := NewAdminService(fb, nil)

	updated, err := svc.UpdateStatus(ctx, domain.Order{ID: "o1", Status: domain.OrderStatusPending}, domain.OrderStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusConfirmed, updated.Status)

	_, err = svc.UpdateStatus(ctx, domain.Order{ID: "o1", Status: domain.OrderStatusDelivered}, domain.OrderStatusPending)
	var te *errors.ErrInvalidStateTransition
	require.ErrorAs(t, err, &te)

	same, err := svc.UpdateStatus(ctx, domain.Order{ID: "o1", Status: domain.OrderStatusShipped}, domain.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusShipped, same.Status)

	_, err = svc.UpdateStatus(ctx, domain.Order{ID: "o1"}, "lost")
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)

	assert.Equal(t, []domain.OrderStatus{domain.OrderStatusConfirmed}, fb.statusTo)
}

func TestAdminService_Messaging(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{sent: 4}
	svc := NewAdminService(fb, nil)

	_, err := svc.SendMessage(ctx, "u1", "  ", domain.MessageTypeInfo)
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)

	_, err = svc.SendMessage(ctx, "", "hello", domain.MessageTypeInfo)
	require.ErrorAs(t, err, &verr)

	msg, err := svc.SendMessage(ctx, "u1", " hello ", domain.MessageTypeOrder)
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Message)

	_, err = svc.Broadcast(ctx, "sale", "spam")
	require.ErrorAs(t, err, &verr)

	n, err := svc.Broadcast(ctx, "sale", domain.MessageTypePromotion)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestAdminService_SetStock(t *testing.T) {
	ctx := context.Background()
	fb := &fakeBackend{}
	svc := NewAdminService(fb, nil)

	_, err := svc.SetStock(ctx, "rm-home-24", map[string]int{"M": -1})
	var verr *errors.ErrValidation
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "M")

	entry, err := svc.SetStock(ctx, "rm-home-24", map[string]int{"M": 4})
	require.NoError(t, err)
	assert.Equal(t, 4, entry.Stock["M"])
	assert.Equal(t, 4, fb.stock["rm-home-24"]["M"])
}

func TestGroupBroadcasts(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	msgs := []domain.Message{
		{ID: "1", UserID: "a", Message: "Sale!", Type: domain.MessageTypePromotion, Broadcast: true, CreatedAt: day1},
		{ID: "2", UserID: "b", Message: "Sale!", Type: domain.MessageTypePromotion, Broadcast: true, CreatedAt: day1.Add(time.Second), Read: true},
		{ID: "3", UserID: "a", Message: "Sale!", Type: domain.MessageTypeInfo, Broadcast: true, CreatedAt: day1},
		{ID: "4", UserID: "a", Message: "Sale!", Type: domain.MessageTypePromotion, Broadcast: true, CreatedAt: day2},
		{ID: "5", UserID: "a", Message: "Your order shipped", Type: domain.MessageTypeOrder, CreatedAt: day2},
	}

	groups := GroupBroadcasts(msgs)
	require.Len(t, groups, 3)

	assert.Equal(t, "2026-03-02", groups[0].Day)
	assert.Equal(t, 1, groups[0].Recipients)

	var promo BroadcastGroup
	for _, g := range groups {
		if g.Day == "2026-03-01" && g.Type == domain.MessageTypePromotion {
			promo = g
		}
	}
	assert.Equal(t, 2, promo.Recipients)
	assert.Equal(t, 1, promo.ReadCount)
	assert.Equal(t, day1, promo.FirstSentAt)

	assert.Empty(t, GroupBroadcasts(nil))
}
