package service

import (
	"context"
	"testing"
	"time"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type dashboardFixture struct {
	svc    DashboardService
	orders *fakeOrderRepo
	convs  *fakeConvRepo
	codes  *fakeCodeRepo
	now    time.Time
}

func newDashboardFixture() *dashboardFixture {
	orders := newFakeOrderRepo()
	convs := newFakeConvRepo()
	codes := newFakeCodeRepo()
	users := newFakeUserRepo(
		&model.User{ID: "u-1", Role: "user", IsActive: true, CreatedAt: time.Now().Add(-48 * time.Hour)},
		&model.User{ID: "u-2", Role: "user", IsActive: true, CreatedAt: time.Now().Add(-49 * time.Hour)},
		&model.User{ID: "a-1", Role: "admin", IsActive: true, CreatedAt: time.Now().Add(-50 * time.Hour)},
	)
	cars := newFakeCarRepo()
	store := NewVerificationCodeStore(codes, orders)
	svc := NewDashboardService(orders, convs, users, cars, store)

	f := &dashboardFixture{svc: svc, orders: orders, convs: convs, codes: codes, now: time.Now()}
	svc.(*dashboardService).now = func() time.Time { return f.now }
	return f
}

func (f *dashboardFixture) addOrder(id string, status model.OrderStatus, age time.Duration) {
	_ = f.orders.Create(context.Background(), &model.Order{
		ID:        id,
		UserID:    "u-1",
		CarID:     "car-1",
		Status:    status,
		CreatedAt: f.now.Add(-age),
	})
}

func TestSnapshotKPI(t *testing.T) {
	f := newDashboardFixture()
	ctx := context.Background()

	f.addOrder("o-1", model.OrderStatusPending, 10*time.Minute)
	f.addOrder("o-2", model.OrderStatusConfirmed, 2*time.Hour)
	f.addOrder("o-3", model.OrderStatusConfirmed, 3*time.Hour)
	f.addOrder("o-4", model.OrderStatusCancelled, 4*time.Hour)

	cv, err := f.convs.FindOrCreate(ctx, "u-1", "v-1", "car-1")
	require.NoError(t, err)
	require.NoError(t, f.convs.CreateMessage(ctx, &model.Message{ConversationID: cv.ID, Sender: model.SenderUser, Content: "hi"}))
	require.NoError(t, f.convs.CreateMessage(ctx, &model.Message{ConversationID: cv.ID, Sender: model.SenderVendor, Content: "hello"}))

	snap, err := f.svc.Snapshot(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(1), snap.KPI.PendingOrders)
	assert.Equal(t, int64(2), snap.KPI.ActiveUsers)
	assert.Equal(t, int64(1), snap.KPI.UnreadMessages)
	assert.Equal(t, 50, snap.KPI.ConversionRate, "2 confirmed of 4 orders")
	assert.Equal(t, 100, snap.KPI.SupportRate, "the only conversation has a vendor reply")
	assert.Equal(t, 99.9, snap.KPI.UptimeRate)
}

func TestSnapshotBackfillsMissingCodeSets(t *testing.T) {
	f := newDashboardFixture()
	f.addOrder("o-1", model.OrderStatusPending, time.Minute)
	f.orders.missingCodeIDs = []string{"o-1"}

	snap, err := f.svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.True(t, f.codes.get("o-1").IsActive)
	require.Len(t, snap.VerificationCodes, 1)
	assert.Equal(t, "o-1", snap.VerificationCodes[0].OrderID)
}

func TestSnapshotRecentActivity(t *testing.T) {
	f := newDashboardFixture()
	f.addOrder("aaaabbbb-0000", model.OrderStatusConfirmed, 5*time.Minute)
	f.addOrder("ccccdddd-1111", model.OrderStatusPending, 30*time.Second)

	snap, err := f.svc.Snapshot(context.Background())
	require.NoError(t, err)

	// Two orders plus the fixture's two user registrations, newest first.
	require.Len(t, snap.RecentActivity, 4)
	assert.Equal(t, "Order #CCCCDDDD received", snap.RecentActivity[0].Text)
	assert.Equal(t, "warn", snap.RecentActivity[0].Tone)
	assert.Equal(t, "Just now", snap.RecentActivity[0].Time)
	assert.Equal(t, "Order #AAAABBBB confirmed", snap.RecentActivity[1].Text)
	assert.Equal(t, "ok", snap.RecentActivity[1].Tone)
	assert.Equal(t, "5 min ago", snap.RecentActivity[1].Time)
	assert.Equal(t, "New user registered", snap.RecentActivity[2].Text)
}

func TestSnapshotActivityCapped(t *testing.T) {
	f := newDashboardFixture()
	for i := 0; i < 12; i++ {
		f.addOrder(string(rune('a'+i))+"-order", model.OrderStatusPending, time.Duration(i)*time.Minute)
	}

	snap, err := f.svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.RecentActivity, recentActivityLimit)
}

func TestSnapshotEmptyDatabase(t *testing.T) {
	f := newDashboardFixture()

	snap, err := f.svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snap.KPI.ConversionRate)
	assert.Zero(t, snap.KPI.SupportRate)
	assert.NotNil(t, snap.VerificationCodes, "serializes as [] not null")
	// Only the fixture's registered users show up.
	assert.Len(t, snap.RecentActivity, 2)
}

func TestTimeAgo(t *testing.T) {
	f := newDashboardFixture()
	s := f.svc.(*dashboardService)

	tests := []struct {
		age  time.Duration
		want string
	}{
		{30 * time.Second, "Just now"},
		{90 * time.Second, "1 min ago"},
		{59 * time.Minute, "59 min ago"},
		{2 * time.Hour, "2 h ago"},
		{26 * time.Hour, "1 d ago"},
	}
	for _, tt := range tests {
		got := s.timeAgo(f.now.Add(-tt.age))
		if got != tt.want {
			t.Fatalf("timeAgo(%v)=%q want %q", tt.age, got, tt.want)
		}
	}
}
