package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/Ro-otman/vroomvtr/internal/repository"
)

const recentActivityLimit = 8

type KPI struct {
	SalesToday     int64   `json:"salesToday"`
	PendingOrders  int64   `json:"pendingOrders"`
	UnreadMessages int64   `json:"unreadMessages"`
	ActiveUsers    int64   `json:"activeUsers"`
	ConversionRate int     `json:"conversionRate"`
	SupportRate    int     `json:"supportRate"`
	UptimeRate     float64 `json:"uptimeRate"`
}

type ActivityItem struct {
	Text string `json:"text"`
	Tone string `json:"tone"`
	Time string `json:"time"`
}

// DashboardSnapshot is the deduplicated payload pushed to the admin room.
type DashboardSnapshot struct {
	KPI               KPI                       `json:"kpi"`
	RecentActivity    []ActivityItem            `json:"recentActivity"`
	VerificationCodes []repository.AdminCodeRow `json:"verificationCodes"`
}

type DashboardService interface {
	Snapshot(ctx context.Context) (*DashboardSnapshot, error)
}

type dashboardService struct {
	orders repository.OrderRepository
	convs  repository.ConversationRepository
	users  repository.UserRepository
	cars   repository.CarRepository
	codes  VerificationCodeStore
	now    func() time.Time
}

func NewDashboardService(
	orders repository.OrderRepository,
	convs repository.ConversationRepository,
	users repository.UserRepository,
	cars repository.CarRepository,
	codes VerificationCodeStore,
) DashboardService {
	return &dashboardService{
		orders: orders,
		convs:  convs,
		users:  users,
		cars:   cars,
		codes:  codes,
		now:    time.Now,
	}
}

func (s *dashboardService) Snapshot(ctx context.Context) (*DashboardSnapshot, error) {
	// Self-heal: pending orders created by older code paths may lack a
	// code set.
	if _, err := s.codes.EnsureForPendingOrders(ctx); err != nil {
		return nil, err
	}

	salesToday, err := s.orders.CountConfirmedToday(ctx)
	if err != nil {
		return nil, err
	}
	pending, err := s.orders.CountPending(ctx)
	if err != nil {
		return nil, err
	}
	unread, err := s.convs.TotalUnreadForAdmin(ctx)
	if err != nil {
		return nil, err
	}
	activeUsers, err := s.users.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	totalOrders, err := s.orders.CountTotal(ctx)
	if err != nil {
		return nil, err
	}
	confirmed, err := s.orders.CountByStatus(ctx, model.OrderStatusConfirmed)
	if err != nil {
		return nil, err
	}
	replied, err := s.convs.CountWithVendorReply(ctx)
	if err != nil {
		return nil, err
	}
	totalConvs, err := s.convs.CountTotal(ctx)
	if err != nil {
		return nil, err
	}

	kpi := KPI{
		SalesToday:     salesToday,
		PendingOrders:  pending,
		UnreadMessages: unread,
		ActiveUsers:    activeUsers,
		UptimeRate:     99.9,
	}
	if totalOrders > 0 {
		kpi.ConversionRate = int(float64(confirmed)/float64(totalOrders)*100 + 0.5)
	}
	if totalConvs > 0 {
		kpi.SupportRate = int(float64(replied)/float64(totalConvs)*100 + 0.5)
	}

	activity, err := s.recentActivity(ctx)
	if err != nil {
		return nil, err
	}
	codeRows, err := s.codes.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if codeRows == nil {
		codeRows = []repository.AdminCodeRow{}
	}

	return &DashboardSnapshot{
		KPI:               kpi,
		RecentActivity:    activity,
		VerificationCodes: codeRows,
	}, nil
}

type activityEvent struct {
	at   time.Time
	item ActivityItem
}

func (s *dashboardService) recentActivity(ctx context.Context) ([]ActivityItem, error) {
	orders, err := s.orders.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	cars, err := s.cars.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}
	users, err := s.users.ListRecent(ctx, recentActivityLimit)
	if err != nil {
		return nil, err
	}

	events := make([]activityEvent, 0, len(orders)+len(cars)+len(users))
	for _, o := range orders {
		ref := strings.ToUpper(o.ID)
		if len(ref) > 8 {
			ref = ref[:8]
		}
		item := ActivityItem{
			Text: fmt.Sprintf("Order #%s received", ref),
			Tone: "warn",
			Time: s.timeAgo(o.CreatedAt),
		}
		if o.Status == model.OrderStatusConfirmed {
			item.Text = fmt.Sprintf("Order #%s confirmed", ref)
			item.Tone = "ok"
		}
		events = append(events, activityEvent{at: o.CreatedAt, item: item})
	}
	for _, c := range cars {
		events = append(events, activityEvent{at: c.CreatedAt, item: ActivityItem{
			Text: "New vehicle added to Products",
			Time: s.timeAgo(c.CreatedAt),
		}})
	}
	for _, u := range users {
		events = append(events, activityEvent{at: u.CreatedAt, item: ActivityItem{
			Text: "New user registered",
			Time: s.timeAgo(u.CreatedAt),
		}})
	}

	sort.Slice(events, func(i, j int) bool { return events[i].at.After(events[j].at) })
	if len(events) > recentActivityLimit {
		events = events[:recentActivityLimit]
	}
	items := make([]ActivityItem, 0, len(events))
	for _, ev := range events {
		items = append(items, ev.item)
	}
	return items, nil
}

func (s *dashboardService) timeAgo(t time.Time) string {
	mins := int(s.now().Sub(t).Minutes())
	if mins < 1 {
		return "Just now"
	}
	if mins < 60 {
		return fmt.Sprintf("%d min ago", mins)
	}
	hours := mins / 60
	if hours < 24 {
		return fmt.Sprintf("%d h ago", hours)
	}
	return fmt.Sprintf("%d d ago", hours/24)
}
