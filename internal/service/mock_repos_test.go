package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
	"github.com/resitasrav/BookLab-System/pkg/mailer"
	pkgerrors "github.com/resitasrav/BookLab-System/pkg/errors"
)

// ── 内存数据库 ──
// 所有 mock repo 共享一把锁，读取返回副本，行为上接近真实数据库

type memDB struct {
	mu  sync.Mutex
	seq int

	users         map[string]*model.User
	profiles      map[string]*model.Profile
	labs          map[string]*model.Lab
	devices       map[string]*model.Device
	reservations  map[string]*model.Reservation
	faults        map[string]*model.FaultReport
	announcements map[string]*model.Announcement

	// deleteErr 非空时 Device.Delete / Lab.Delete 返回该错误
	deleteErr error
}

func newMemDB() *memDB {
	return &memDB{
		users:         make(map[string]*model.User),
		profiles:      make(map[string]*model.Profile),
		labs:          make(map[string]*model.Lab),
		devices:       make(map[string]*model.Device),
		reservations:  make(map[string]*model.Reservation),
		faults:        make(map[string]*model.FaultReport),
		announcements: make(map[string]*model.Announcement),
	}
}

func (db *memDB) repository() *repository.Repository {
	return &repository.Repository{
		User:         &mockUserRepo{db},
		Profile:      &mockProfileRepo{db},
		Lab:          &mockLabRepo{db},
		Device:       &mockDeviceRepo{db},
		Reservation:  &mockReservationRepo{db},
		Fault:        &mockFaultRepo{db},
		Announcement: &mockAnnouncementRepo{db},
	}
}

// nextID 调用方需持有锁；带 new 前缀，避免与 seed 的 lab-1 / dev-1 等固定 ID 撞车
func (db *memDB) nextID(prefix string) string {
	db.seq++
	return fmt.Sprintf("%s-new-%d", prefix, db.seq)
}

func (db *memDB) userCopy(id string) *model.User {
	u, ok := db.users[id]
	if !ok {
		return nil
	}
	cp := *u
	return &cp
}

func (db *memDB) deviceCopy(id string) *model.Device {
	d, ok := db.devices[id]
	if !ok {
		return nil
	}
	cp := *d
	if lab, ok := db.labs[d.LabID]; ok {
		l := *lab
		l.Devices = nil
		cp.Lab = &l
	}
	return &cp
}

func (db *memDB) reservationCopy(r *model.Reservation) model.Reservation {
	cp := *r
	cp.User = db.userCopy(r.UserID)
	cp.Device = db.deviceCopy(r.DeviceID)
	cp.Approver = nil
	if r.ApprovedBy != nil {
		cp.Approver = db.userCopy(*r.ApprovedBy)
	}
	return cp
}

// ── seed 辅助 ──

func (db *memDB) addUser(id, username, email, role string, active bool) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &model.User{
		UserID:    id,
		Username:  username,
		FirstName: username,
		Email:     email,
		Role:      role,
		IsActive:  active,
	}
	db.users[id] = u
	return u
}

func (db *memDB) addLab(id, name string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.labs[id] = &model.Lab{LabID: id, Name: name}
}

func (db *memDB) addDevice(id, labID, name string, active bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.devices[id] = &model.Device{DeviceID: id, LabID: labID, Name: name, IsActive: active}
}

func (db *memDB) addReservation(id, userID, deviceID, date, start, end string, status booking.Status) {
	db.mu.Lock()
	defer db.mu.Unlock()
	d, err := booking.ParseDate(date)
	if err != nil {
		panic(err)
	}
	db.reservations[id] = &model.Reservation{
		ReservationID: id,
		UserID:        userID,
		DeviceID:      deviceID,
		Date:          d,
		StartTime:     start,
		EndTime:       end,
		Status:        string(status),
		Version:       1,
	}
}

func (db *memDB) reservationStatus(id string) string {
	db.mu.Lock()
	defer db.mu.Unlock()
	if r, ok := db.reservations[id]; ok {
		return r.Status
	}
	return ""
}

func (db *memDB) countReservations() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.reservations)
}

// ── Mock UserRepository ──

type mockUserRepo struct{ db *memDB }

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, u := range m.db.users {
		if u.Username == user.Username || u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		user.UserID = m.db.nextID("user")
	}
	if _, ok := m.db.users[user.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	user.CreatedAt = time.Now()
	cp := *user
	m.db.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if u := m.db.userCopy(id); u != nil {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.User, error) {
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, u := range m.db.users {
		if u.Username == username {
			return m.db.userCopy(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for id, u := range m.db.users {
		if strings.EqualFold(u.Email, email) {
			return m.db.userCopy(id), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var result []model.User
	for _, id := range ids {
		if u := m.db.userCopy(id); u != nil {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) SetActive(_ context.Context, id string, active bool) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if u, ok := m.db.users[id]; ok {
		u.IsActive = active
	}
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *user
	m.db.users[user.UserID] = &cp
	return nil
}

// ── Mock ProfileRepository ──

type mockProfileRepo struct{ db *memDB }

func (m *mockProfileRepo) Create(_ context.Context, p *model.Profile) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.profiles[p.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *p
	cp.User = nil
	m.db.profiles[p.UserID] = &cp
	return nil
}

func (m *mockProfileRepo) get(userID string, withUser bool) (*model.Profile, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.profiles[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	if withUser {
		cp.User = m.db.userCopy(userID)
	}
	return &cp, nil
}

func (m *mockProfileRepo) GetByUserID(_ context.Context, userID string) (*model.Profile, error) {
	return m.get(userID, true)
}

func (m *mockProfileRepo) GetByUserIDForUpdate(_ context.Context, userID string) (*model.Profile, error) {
	return m.get(userID, false)
}

func (m *mockProfileRepo) Update(_ context.Context, p *model.Profile) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *p
	cp.User = nil
	m.db.profiles[p.UserID] = &cp
	return nil
}

func (m *mockProfileRepo) List(_ context.Context, status string, offset, limit int) ([]model.Profile, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var result []model.Profile
	for id, p := range m.db.profiles {
		if status != "" && p.Status != status {
			continue
		}
		cp := *p
		cp.User = m.db.userCopy(id)
		result = append(result, cp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockProfileRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, p := range m.db.profiles {
		if p.Status == status {
			n++
		}
	}
	return n, nil
}

// ── Mock LabRepository ──

type mockLabRepo struct{ db *memDB }

func (m *mockLabRepo) Create(_ context.Context, lab *model.Lab) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if lab.LabID == "" {
		lab.LabID = m.db.nextID("lab")
	}
	if _, ok := m.db.labs[lab.LabID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *lab
	m.db.labs[lab.LabID] = &cp
	return nil
}

func (m *mockLabRepo) GetByID(_ context.Context, id string) (*model.Lab, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if l, ok := m.db.labs[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLabRepo) List(_ context.Context) ([]model.Lab, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var result []model.Lab
	for _, l := range m.db.labs {
		result = append(result, *l)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockLabRepo) Update(_ context.Context, lab *model.Lab) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *lab
	m.db.labs[lab.LabID] = &cp
	return nil
}

func (m *mockLabRepo) Delete(_ context.Context, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.deleteErr != nil {
		return m.db.deleteErr
	}
	delete(m.db.labs, id)
	return nil
}

// ── Mock DeviceRepository ──

type mockDeviceRepo struct{ db *memDB }

func (m *mockDeviceRepo) Create(_ context.Context, d *model.Device) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if d.DeviceID == "" {
		d.DeviceID = m.db.nextID("dev")
	}
	if _, ok := m.db.devices[d.DeviceID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *d
	cp.Lab = nil
	m.db.devices[d.DeviceID] = &cp
	return nil
}

func (m *mockDeviceRepo) GetByID(_ context.Context, id string) (*model.Device, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if d := m.db.deviceCopy(id); d != nil {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDeviceRepo) GetByIDForUpdate(ctx context.Context, id string) (*model.Device, error) {
	return m.GetByID(ctx, id)
}

func (m *mockDeviceRepo) List(_ context.Context, labID string, includeInactive bool) ([]model.Device, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var result []model.Device
	for id, d := range m.db.devices {
		if labID != "" && d.LabID != labID {
			continue
		}
		if !includeInactive && !d.IsActive {
			continue
		}
		result = append(result, *m.db.deviceCopy(id))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockDeviceRepo) CountByLab(_ context.Context, labID string) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, d := range m.db.devices {
		if d.LabID == labID {
			n++
		}
	}
	return n, nil
}

func (m *mockDeviceRepo) Update(_ context.Context, d *model.Device) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *d
	cp.Lab = nil
	m.db.devices[d.DeviceID] = &cp
	return nil
}

func (m *mockDeviceRepo) SetActive(_ context.Context, id string, active bool) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if d, ok := m.db.devices[id]; ok {
		d.IsActive = active
	}
	return nil
}

func (m *mockDeviceRepo) Delete(_ context.Context, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.deleteErr != nil {
		return m.db.deleteErr
	}
	delete(m.db.devices, id)
	return nil
}

// ── Mock ReservationRepository ──

type mockReservationRepo struct{ db *memDB }

func (m *mockReservationRepo) Create(_ context.Context, res *model.Reservation) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if res.ReservationID == "" {
		res.ReservationID = m.db.nextID("res")
	}
	if _, ok := m.db.reservations[res.ReservationID]; ok {
		return gorm.ErrDuplicatedKey
	}
	res.CreatedAt = time.Now()
	cp := *res
	cp.User, cp.Device, cp.Approver = nil, nil, nil
	m.db.reservations[res.ReservationID] = &cp
	return nil
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	r, ok := m.db.reservations[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := m.db.reservationCopy(r)
	return &cp, nil
}

func (m *mockReservationRepo) CountOverlapping(_ context.Context, q repository.OverlapQuery) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	qs, qe := booking.MustParseClock(q.Start), booking.MustParseClock(q.End)
	var n int64
	for _, r := range m.db.reservations {
		if r.Date.Format(booking.DateLayout) != q.Date || !containsString(q.Statuses, r.Status) {
			continue
		}
		if q.DeviceID != "" && r.DeviceID != q.DeviceID {
			continue
		}
		if q.UserID != "" && r.UserID != q.UserID {
			continue
		}
		if q.ExcludeID != "" && r.ReservationID == q.ExcludeID {
			continue
		}
		if booking.Overlaps(booking.MustParseClock(r.StartTime), booking.MustParseClock(r.EndTime), qs, qe) {
			n++
		}
	}
	return n, nil
}

func (m *mockReservationRepo) UpdateStatus(_ context.Context, res *model.Reservation) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	stored, ok := m.db.reservations[res.ReservationID]
	if !ok || stored.Version != res.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = res.Status
	stored.ApprovedBy = res.ApprovedBy
	stored.Version++
	res.Version = stored.Version
	return nil
}

func (m *mockReservationRepo) filter(f repository.ReservationFilter) []model.Reservation {
	var result []model.Reservation
	for _, r := range m.db.reservations {
		date := r.Date.Format(booking.DateLayout)
		switch {
		case f.UserID != "" && r.UserID != f.UserID,
			f.DeviceID != "" && r.DeviceID != f.DeviceID,
			len(f.Statuses) > 0 && !containsString(f.Statuses, r.Status),
			f.DateFrom != "" && date < f.DateFrom,
			f.DateTo != "" && date > f.DateTo:
			continue
		}
		if f.LabID != "" {
			if d, ok := m.db.devices[r.DeviceID]; !ok || d.LabID != f.LabID {
				continue
			}
		}
		result = append(result, m.db.reservationCopy(r))
	}
	return result
}

func (m *mockReservationRepo) ListSchedule(_ context.Context, f repository.ReservationFilter) ([]model.Reservation, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	result := m.filter(f)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return booking.MustParseClock(result[i].StartTime) < booking.MustParseClock(result[j].StartTime)
	})
	return result, nil
}

func (m *mockReservationRepo) List(_ context.Context, f repository.ReservationFilter, offset, limit int) ([]model.Reservation, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	result := m.filter(f)
	sort.Slice(result, func(i, j int) bool {
		pi, pj := result[i].Status == string(booking.StatusPending), result[j].Status == string(booking.StatusPending)
		if pi != pj {
			return pi
		}
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.After(result[j].Date)
		}
		return booking.MustParseClock(result[i].StartTime) > booking.MustParseClock(result[j].StartTime)
	})
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockReservationRepo) CountByStatus(_ context.Context, status string) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, r := range m.db.reservations {
		if r.Status == status {
			n++
		}
	}
	return n, nil
}

func (m *mockReservationRepo) ExistsByDevice(_ context.Context, deviceID string) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, r := range m.db.reservations {
		if r.DeviceID == deviceID {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock FaultReportRepository ──

type mockFaultRepo struct{ db *memDB }

func (m *mockFaultRepo) Create(_ context.Context, f *model.FaultReport) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if f.FaultID == "" {
		f.FaultID = m.db.nextID("fault")
	}
	if _, ok := m.db.faults[f.FaultID]; ok {
		return gorm.ErrDuplicatedKey
	}
	// seq 保证创建时间严格递增
	f.CreatedAt = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(m.db.seq) * time.Minute)
	cp := *f
	cp.Device, cp.Reporter = nil, nil
	m.db.faults[f.FaultID] = &cp
	return nil
}

func (m *mockFaultRepo) GetByID(_ context.Context, id string) (*model.FaultReport, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	f, ok := m.db.faults[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *f
	cp.Device = m.db.deviceCopy(f.DeviceID)
	cp.Reporter = m.db.userCopy(f.UserID)
	return &cp, nil
}

func (m *mockFaultRepo) List(_ context.Context, filter repository.FaultFilter, offset, limit int) ([]model.FaultReport, int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var result []model.FaultReport
	for _, f := range m.db.faults {
		if filter.DeviceID != "" && f.DeviceID != filter.DeviceID {
			continue
		}
		if filter.Resolved != nil && f.Resolved != *filter.Resolved {
			continue
		}
		result = append(result, *f)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Resolved != result[j].Resolved {
			return !result[i].Resolved
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return page(result, offset, limit), int64(len(result)), nil
}

func (m *mockFaultRepo) ListOpenByDevices(_ context.Context, deviceIDs []string) ([]model.FaultReport, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var result []model.FaultReport
	for _, f := range m.db.faults {
		if !f.Resolved && containsString(deviceIDs, f.DeviceID) {
			result = append(result, *f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *mockFaultRepo) Update(_ context.Context, f *model.FaultReport) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *f
	cp.Device, cp.Reporter = nil, nil
	m.db.faults[f.FaultID] = &cp
	return nil
}

func (m *mockFaultRepo) ResolveOpenByDevice(_ context.Context, deviceID, staffID string, at time.Time) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, f := range m.db.faults {
		if f.DeviceID == deviceID && !f.Resolved {
			f.Resolved = true
			resolvedAt := at
			f.ResolvedAt = &resolvedAt
			by := staffID
			f.ResolvedBy = &by
			n++
		}
	}
	return n, nil
}

func (m *mockFaultRepo) CountOpen(_ context.Context) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var n int64
	for _, f := range m.db.faults {
		if !f.Resolved {
			n++
		}
	}
	return n, nil
}

// ── Mock AnnouncementRepository ──

type mockAnnouncementRepo struct{ db *memDB }

func (m *mockAnnouncementRepo) Create(_ context.Context, a *model.Announcement) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if a.AnnouncementID == "" {
		a.AnnouncementID = m.db.nextID("ann")
	}
	if _, ok := m.db.announcements[a.AnnouncementID]; ok {
		return gorm.ErrDuplicatedKey
	}
	cp := *a
	m.db.announcements[a.AnnouncementID] = &cp
	return nil
}

func (m *mockAnnouncementRepo) GetByID(_ context.Context, id string) (*model.Announcement, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if a, ok := m.db.announcements[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAnnouncementRepo) List(_ context.Context, activeOnly bool) ([]model.Announcement, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var result []model.Announcement
	for _, a := range m.db.announcements {
		if activeOnly && !a.IsActive {
			continue
		}
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AnnouncementID < result[j].AnnouncementID })
	return result, nil
}

func (m *mockAnnouncementRepo) Update(_ context.Context, a *model.Announcement) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cp := *a
	m.db.announcements[a.AnnouncementID] = &cp
	return nil
}

func (m *mockAnnouncementRepo) Delete(_ context.Context, id string) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	delete(m.db.announcements, id)
	return nil
}

// ── Mock Notifier ──

type mockNotifier struct {
	mu      sync.Mutex
	sent    []mailer.Message
	sendErr error
	// failFor 指定地址投递失败
	failFor map[string]bool
}

func (n *mockNotifier) Send(_ context.Context, msg mailer.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil || n.failFor[msg.To] {
		return fmt.Errorf("smtp: 投递失败")
	}
	n.sent = append(n.sent, msg)
	return nil
}

// Dispatch 同步记录，便于断言；失败与真实实现一样被吞掉
func (n *mockNotifier) Dispatch(msg mailer.Message) {
	_ = n.Send(context.Background(), msg)
}

func (n *mockNotifier) messages() []mailer.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]mailer.Message(nil), n.sent...)
}

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	mu   sync.Mutex
	jtis map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{jtis: make(map[string]time.Duration)}
}

func (b *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.jtis[jti] = ttl
	return nil
}

func (b *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.jtis[jti]
	return ok, nil
}

// ── 工具函数 ──

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func page[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return nil
	}
	end := offset + limit
	if end > len(list) {
		end = len(list)
	}
	return list[offset:end]
}
