package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Ro-otman/vroomvtr/internal/model"
	"github.com/Ro-otman/vroomvtr/internal/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeCodeRepo struct {
	mu   sync.Mutex
	sets map[string]*model.VerificationCodeSet

	ensureErr error
}

func newFakeCodeRepo() *fakeCodeRepo {
	return &fakeCodeRepo{sets: make(map[string]*model.VerificationCodeSet)}
}

func (r *fakeCodeRepo) EnsureActive(_ context.Context, orderID, code1 string) (*model.VerificationCodeSet, error) {
	if r.ensureErr != nil {
		return nil, r.ensureErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.sets[orderID]; ok {
		if set.IsActive {
			cp := *set
			return &cp, nil
		}
		resetSet(set, code1)
		cp := *set
		return &cp, nil
	}
	set := &model.VerificationCodeSet{
		ID:         uuid.NewString(),
		OrderID:    orderID,
		Code1:      code1,
		ResumeStep: 1,
		IsActive:   true,
		CreatedAt:  time.Now(),
	}
	r.sets[orderID] = set
	cp := *set
	return &cp, nil
}

func resetSet(set *model.VerificationCodeSet, code1 string) {
	set.Code1 = code1
	set.Code2 = ""
	set.Code3 = ""
	set.Step1Verified = false
	set.Step2Verified = false
	set.Step3Verified = false
	set.Step4Verified = false
	set.ResumeStep = 1
	set.IsActive = true
}

func (r *fakeCodeRepo) Find(_ context.Context, orderID string) (*model.VerificationCodeSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[orderID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *set
	return &cp, nil
}

func (r *fakeCodeRepo) MarkStepVerified(_ context.Context, orderID string, step int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[orderID]
	if !ok || !set.IsActive {
		return nil
	}
	switch step {
	case 1:
		set.Step1Verified = true
	case 2:
		set.Step2Verified = true
	case 3:
		set.Step3Verified = true
	case 4:
		set.Step4Verified = true
	}
	if step+1 > set.ResumeStep {
		set.ResumeStep = step + 1
	}
	return nil
}

func (r *fakeCodeRepo) SetCode2IfEmpty(_ context.Context, orderID, code string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[orderID]
	if !ok || !set.IsActive || set.Code2 != "" {
		return 0, nil
	}
	set.Code2 = code
	return 1, nil
}

func (r *fakeCodeRepo) SetCode3IfEmpty(_ context.Context, orderID, code string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[orderID]
	if !ok || !set.IsActive || set.Code3 != "" {
		return 0, nil
	}
	set.Code3 = code
	return 1, nil
}

func (r *fakeCodeRepo) Reset(_ context.Context, orderID, code1 string) (*model.VerificationCodeSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[orderID]
	if !ok {
		set = &model.VerificationCodeSet{ID: uuid.NewString(), OrderID: orderID}
		r.sets[orderID] = set
	}
	resetSet(set, code1)
	cp := *set
	return &cp, nil
}

func (r *fakeCodeRepo) Deactivate(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if set, ok := r.sets[orderID]; ok {
		set.IsActive = false
		set.ResumeStep = 1
	}
	return nil
}

func (r *fakeCodeRepo) ListActiveForPendingOrders(_ context.Context) ([]repository.AdminCodeRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []repository.AdminCodeRow
	for _, set := range r.sets {
		if !set.IsActive {
			continue
		}
		rows = append(rows, repository.AdminCodeRow{
			OrderID:    set.OrderID,
			Code1:      set.Code1,
			Code2:      set.Code2,
			Code3:      set.Code3,
			ResumeStep: set.ResumeStep,
		})
	}
	return rows, nil
}

func (r *fakeCodeRepo) get(orderID string) model.VerificationCodeSet {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.sets[orderID]
}

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[string]*model.Order

	missingCodeIDs []string
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*model.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

func (r *fakeOrderRepo) FindByIDForUser(_ context.Context, orderID, userID string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) FindPendingByUserCar(_ context.Context, userID, carID string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.UserID == userID && o.CarID == carID && o.Status == model.OrderStatusPending {
			cp := *o
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeOrderRepo) FindCurrentByUser(_ context.Context, userID string) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.Order
	for _, o := range r.orders {
		if o.UserID != userID || o.Status != model.OrderStatusPending {
			continue
		}
		if latest == nil || o.CreatedAt.After(latest.CreatedAt) {
			latest = o
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeOrderRepo) ConfirmIfPending(_ context.Context, orderID, userID string) (int64, error) {
	return r.transition(orderID, userID, model.OrderStatusConfirmed, "")
}

func (r *fakeOrderRepo) RefundIfPending(_ context.Context, orderID, userID string) (int64, error) {
	return r.transition(orderID, userID, model.OrderStatusCancelled, model.PaymentStatusRefunded)
}

func (r *fakeOrderRepo) transition(orderID, userID string, status model.OrderStatus, pay model.PaymentStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok || o.UserID != userID || o.Status != model.OrderStatusPending {
		return 0, nil
	}
	o.Status = status
	if pay != "" {
		o.PaymentStatus = pay
	}
	return 1, nil
}

func (r *fakeOrderRepo) ListAllForAdmin(_ context.Context) ([]repository.AdminOrderRow, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var rows []repository.AdminOrderRow
	for _, o := range r.orders {
		rows = append(rows, repository.AdminOrderRow{Order: *o})
	}
	return rows, nil
}

func (r *fakeOrderRepo) ListPendingIDsWithoutCodes(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.missingCodeIDs...), nil
}

func (r *fakeOrderRepo) CountPending(_ context.Context) (int64, error) {
	return r.countStatus(model.OrderStatusPending), nil
}

func (r *fakeOrderRepo) CountConfirmedToday(_ context.Context) (int64, error) {
	return r.countStatus(model.OrderStatusConfirmed), nil
}

func (r *fakeOrderRepo) CountByStatus(_ context.Context, status model.OrderStatus) (int64, error) {
	return r.countStatus(status), nil
}

func (r *fakeOrderRepo) countStatus(status model.OrderStatus) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, o := range r.orders {
		if o.Status == status {
			n++
		}
	}
	return n
}

func (r *fakeOrderRepo) CountTotal(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.orders)), nil
}

func (r *fakeOrderRepo) ListRecent(_ context.Context, limit int) ([]model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := make([]model.Order, 0, len(r.orders))
	for _, o := range r.orders {
		list = append(list, *o)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (r *fakeOrderRepo) get(orderID string) model.Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.orders[orderID]
}

type fakeConvRepo struct {
	mu       sync.Mutex
	convs    map[string]*model.Conversation
	messages []model.Message
}

func newFakeConvRepo() *fakeConvRepo {
	return &fakeConvRepo{convs: make(map[string]*model.Conversation)}
}

func (r *fakeConvRepo) FindOrCreate(_ context.Context, userID, vendorID, carID string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, cv := range r.convs {
		if cv.UserID == userID && cv.VendorID == vendorID && cv.CarID == carID {
			cp := *cv
			return &cp, nil
		}
	}
	cv := &model.Conversation{
		ID:        uuid.NewString(),
		UserID:    userID,
		VendorID:  vendorID,
		CarID:     carID,
		CreatedAt: time.Now(),
	}
	r.convs[cv.ID] = cv
	cp := *cv
	return &cp, nil
}

func (r *fakeConvRepo) FindByID(_ context.Context, id string) (*model.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv, ok := r.convs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *cv
	return &cp, nil
}

func (r *fakeConvRepo) CreateMessage(_ context.Context, msg *model.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeConvRepo) ListMessages(_ context.Context, convID string) ([]model.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Message
	for _, m := range r.messages {
		if m.ConversationID == convID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeConvRepo) UnreadCountForUser(_ context.Context, convID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv := r.convs[convID]
	return r.unreadLocked(cv, model.SenderVendor, cv.UserLastReadAt), nil
}

func (r *fakeConvRepo) UnreadCountForAdmin(_ context.Context, convID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cv := r.convs[convID]
	return r.unreadLocked(cv, model.SenderUser, cv.AdminLastReadAt), nil
}

func (r *fakeConvRepo) unreadLocked(cv *model.Conversation, sender model.SenderRole, lastRead *time.Time) int64 {
	var n int64
	for _, m := range r.messages {
		if m.ConversationID != cv.ID || m.Sender != sender {
			continue
		}
		if lastRead == nil || m.CreatedAt.After(*lastRead) {
			n++
		}
	}
	return n
}

func (r *fakeConvRepo) TotalUnreadForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, cv := range r.convs {
		if cv.UserID == userID {
			total += r.unreadLocked(cv, model.SenderVendor, cv.UserLastReadAt)
		}
	}
	return total, nil
}

func (r *fakeConvRepo) TotalUnreadForAdmin(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, cv := range r.convs {
		total += r.unreadLocked(cv, model.SenderUser, cv.AdminLastReadAt)
	}
	return total, nil
}

func (r *fakeConvRepo) MarkReadByUser(_ context.Context, convID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cv, ok := r.convs[convID]; ok && cv.UserID == userID {
		now := time.Now()
		cv.UserLastReadAt = &now
	}
	return nil
}

func (r *fakeConvRepo) MarkReadByAdmin(_ context.Context, convID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cv, ok := r.convs[convID]; ok {
		now := time.Now()
		cv.AdminLastReadAt = &now
	}
	return nil
}

func (r *fakeConvRepo) ListForUser(_ context.Context, userID string) ([]repository.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.ConversationSummary
	for _, cv := range r.convs {
		if cv.UserID != userID {
			continue
		}
		out = append(out, repository.ConversationSummary{
			Conversation: *cv,
			UnreadCount:  r.unreadLocked(cv, model.SenderVendor, cv.UserLastReadAt),
		})
	}
	return out, nil
}

func (r *fakeConvRepo) ListForAdmin(_ context.Context) ([]repository.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.ConversationSummary
	for _, cv := range r.convs {
		out = append(out, repository.ConversationSummary{
			Conversation: *cv,
			UnreadCount:  r.unreadLocked(cv, model.SenderUser, cv.AdminLastReadAt),
		})
	}
	return out, nil
}

func (r *fakeConvRepo) CountTotal(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.convs)), nil
}

func (r *fakeConvRepo) CountWithVendorReply(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[string]struct{})
	for _, m := range r.messages {
		if m.Sender == model.SenderVendor {
			seen[m.ConversationID] = struct{}{}
		}
	}
	return int64(len(seen)), nil
}

type fakeCarRepo struct {
	cars map[string]*model.Car
}

func newFakeCarRepo(cars ...*model.Car) *fakeCarRepo {
	r := &fakeCarRepo{cars: make(map[string]*model.Car)}
	for _, c := range cars {
		r.cars[c.ID] = c
	}
	return r
}

func (r *fakeCarRepo) FindByID(_ context.Context, id string) (*model.Car, error) {
	c, ok := r.cars[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCarRepo) ListRecent(_ context.Context, limit int) ([]model.Car, error) {
	list := make([]model.Car, 0, len(r.cars))
	for _, c := range r.cars {
		list = append(list, *c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

type fakeUserRepo struct {
	users map[string]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) CountActive(_ context.Context) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == "user" && u.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) ListRecent(_ context.Context, limit int) ([]model.User, error) {
	var list []model.User
	for _, u := range r.users {
		if u.Role == "user" {
			list = append(list, *u)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}
