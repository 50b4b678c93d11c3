package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
)

// ── 日历查询业务错误 ──

var (
	ErrInvalidDateRange = errors.New("日期区间无效")
	ErrInvalidScope     = errors.New("无效的查询范围")
)

// ScheduleScope 日历查询范围
type ScheduleScope string

const (
	ScopeDevice ScheduleScope = "device"
	ScopeLab    ScheduleScope = "lab"
	ScopeAll    ScheduleScope = "all"
)

const defaultRangeDays = 7

// ScheduleQuery 日历查询条件
// Visible 为空时按日期套用默认可见规则
type ScheduleQuery struct {
	Scope   ScheduleScope
	ID      string
	From    time.Time
	To      time.Time
	Visible []booking.Status
}

// ScheduleService 只读的日历查询
type ScheduleService interface {
	Query(ctx context.Context, q ScheduleQuery) ([]dto.CalendarEvent, error)
	DeviceDay(ctx context.Context, deviceID string, req *dto.DeviceDayRequest) ([]dto.CalendarEvent, error)
	LabRange(ctx context.Context, labID string, req *dto.RangeRequest) ([]dto.CalendarEvent, error)
	AllRange(ctx context.Context, req *dto.RangeRequest) ([]dto.CalendarEvent, error)
}

type scheduleService struct {
	repo         *repository.Repository
	rules        *booking.RuleEngine
	maxRangeDays int
	logger       *zap.Logger
	now          func() time.Time
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, rules *booking.RuleEngine, maxRangeDays int, logger *zap.Logger) ScheduleService {
	if maxRangeDays <= 0 {
		maxRangeDays = 62
	}
	return &scheduleService{
		repo:         repo,
		rules:        rules,
		maxRangeDays: maxRangeDays,
		logger:       logger,
		now:          time.Now,
	}
}

// ────────────────────── 入口 ──────────────────────

func (s *scheduleService) DeviceDay(ctx context.Context, deviceID string, req *dto.DeviceDayRequest) ([]dto.CalendarEvent, error) {
	date, err := booking.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	visible, err := parseVisible(req.Status)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, ScheduleQuery{Scope: ScopeDevice, ID: deviceID, From: date, To: date, Visible: visible})
}

func (s *scheduleService) LabRange(ctx context.Context, labID string, req *dto.RangeRequest) ([]dto.CalendarEvent, error) {
	q, err := s.rangeQuery(ScopeLab, labID, req)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, q)
}

func (s *scheduleService) AllRange(ctx context.Context, req *dto.RangeRequest) ([]dto.CalendarEvent, error) {
	q, err := s.rangeQuery(ScopeAll, "", req)
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, q)
}

func (s *scheduleService) rangeQuery(scope ScheduleScope, id string, req *dto.RangeRequest) (ScheduleQuery, error) {
	from, err := booking.ParseDate(req.From)
	if err != nil {
		return ScheduleQuery{}, err
	}
	to := from.AddDate(0, 0, defaultRangeDays-1)
	if req.To != "" {
		if to, err = booking.ParseDate(req.To); err != nil {
			return ScheduleQuery{}, err
		}
	}
	visible, err := parseVisible(req.Status)
	if err != nil {
		return ScheduleQuery{}, err
	}
	return ScheduleQuery{Scope: scope, ID: id, From: from, To: to, Visible: visible}, nil
}

func parseVisible(raw []string) ([]booking.Status, error) {
	out := make([]booking.Status, 0, len(raw))
	for _, r := range raw {
		st, ok := booking.ParseStatus(r)
		if !ok {
			return nil, ErrInvalidStatusFilter
		}
		out = append(out, st)
	}
	return out, nil
}

// ────────────────────── Query ──────────────────────

func (s *scheduleService) Query(ctx context.Context, q ScheduleQuery) ([]dto.CalendarEvent, error) {
	if q.To.Before(q.From) {
		return nil, ErrInvalidDateRange
	}
	if days := int(q.To.Sub(q.From).Hours()/24) + 1; days > s.maxRangeDays {
		return nil, ErrInvalidDateRange
	}

	filter := repository.ReservationFilter{
		DateFrom: q.From.Format(booking.DateLayout),
		DateTo:   q.To.Format(booking.DateLayout),
	}
	switch q.Scope {
	case ScopeDevice:
		if err := s.ensureDevice(ctx, q.ID); err != nil {
			return nil, err
		}
		filter.DeviceID = q.ID
	case ScopeLab:
		if err := s.ensureLab(ctx, q.ID); err != nil {
			return nil, err
		}
		filter.LabID = q.ID
	case ScopeAll:
	default:
		return nil, ErrInvalidScope
	}

	// 默认规则下按日期逐条过滤，先取可能出现的全部状态
	useDefault := len(q.Visible) == 0
	if useDefault {
		filter.Statuses = booking.Strings([]booking.Status{
			booking.StatusPending, booking.StatusApproved, booking.StatusAttended, booking.StatusNoShow,
		})
	} else {
		filter.Statuses = booking.Strings(q.Visible)
	}

	list, err := s.repo.Reservation.ListSchedule(ctx, filter)
	if err != nil {
		s.logger.Error("查询日历失败", zap.String("scope", string(q.Scope)), zap.String("id", q.ID), zap.Error(err))
		return nil, err
	}

	today := s.rules.Today(s.now())
	events := make([]dto.CalendarEvent, 0, len(list))
	for i := range list {
		r := &list[i]
		slot, err := r.Slot()
		if err != nil {
			s.logger.Warn("跳过时间数据损坏的预约", zap.String("id", r.ReservationID), zap.Error(err))
			continue
		}
		st := booking.Status(r.Status)
		if useDefault && !st.In(booking.DefaultVisibility(slot.Date, today)) {
			continue
		}
		events = append(events, s.toEvent(r, slot))
	}
	return events, nil
}

const eventTimeLayout = "2006-01-02T15:04:05"

func (s *scheduleService) toEvent(r *model.Reservation, slot booking.Slot) dto.CalendarEvent {
	loc := s.rules.Policy().Location
	st := booking.Status(r.Status)

	ev := dto.CalendarEvent{
		ReservationID: r.ReservationID,
		DeviceID:      r.DeviceID,
		Date:          slot.DateString(),
		Start:         booking.At(slot.Date, slot.Start, loc).Format(eventTimeLayout),
		End:           booking.At(slot.Date, slot.End, loc).Format(eventTimeLayout),
		StartTime:     slot.Start.String(),
		EndTime:       slot.End.String(),
		OwnerName:     r.User.DisplayName(),
		Status:        r.Status,
		StatusLabel:   st.Label(),
		Color:         st.Color(),
	}
	if r.Device != nil {
		ev.DeviceName = r.Device.Name
		if r.Device.Lab != nil {
			ev.LabName = r.Device.Lab.Name
		}
	}
	ev.Title = booking.EventTitle(ev.DeviceName, slot.Start, slot.End)
	return ev
}

func (s *scheduleService) ensureDevice(ctx context.Context, id string) error {
	if _, err := s.repo.Device.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDeviceNotFound
		}
		s.logger.Error("查询设备失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *scheduleService) ensureLab(ctx context.Context, id string) error {
	if _, err := s.repo.Lab.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLabNotFound
		}
		s.logger.Error("查询实验室失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}
