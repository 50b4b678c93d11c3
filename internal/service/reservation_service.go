package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
	"github.com/resitasrav/BookLab-System/pkg/mailer"
)

// ── 预约模块业务错误 ──

var (
	ErrReservationNotFound = errors.New("预约不存在")
	ErrSlotTaken           = errors.New("该时段已被预约，请选择其他时间")
	ErrUserDoubleBooked    = errors.New("您在该时段已有其他预约")
	ErrSlotBusy            = errors.New("该时段正在被其他请求处理，请稍后重试")
	ErrNotReservationOwner = errors.New("只能取消自己的预约")
	ErrInvalidStatusFilter = errors.New("无效的状态筛选条件")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrUserInactive        = errors.New("账户已停用，无法预约")
)

// ReservationService 预约业务接口
type ReservationService interface {
	// Create 规整时间 → 规则校验 → 加锁事务内检查冲突并写入，初始状态为待审批
	Create(ctx context.Context, userID string, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)
	// Cancel 预约人取消
	Cancel(ctx context.Context, userID, reservationID string) (*dto.ReservationResponse, error)
	// Transition 工作人员审批、拒绝、标记到场或未到场
	Transition(ctx context.Context, staffID, reservationID, action string) (*dto.ReservationResponse, error)
	// HasConflict 检查时段是否与占用中的预约重叠，excludeID 用于复核已有记录
	HasConflict(ctx context.Context, deviceID string, slot booking.Slot, excludeID string) (bool, error)
	// Availability 预约前查询规整后的时段是否可用
	Availability(ctx context.Context, deviceID string, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ReservationResponse, error)
	ListMine(ctx context.Context, userID string) (*dto.MyReservationsResponse, error)
	Summary(ctx context.Context, userID string) (*dto.ReservationSummaryResponse, error)
	List(ctx context.Context, req *dto.ReservationListRequest) ([]dto.ReservationResponse, int64, error)
}

type reservationService struct {
	repo     *repository.Repository
	rules    *booking.RuleEngine
	locker   SlotLocker
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewReservationService 创建 ReservationService 实例
func NewReservationService(
	repo *repository.Repository,
	rules *booking.RuleEngine,
	locker SlotLocker,
	notifier Notifier,
	logger *zap.Logger,
) ReservationService {
	if locker == nil {
		locker = NewLocalSlotLocker()
	}
	return &reservationService{
		repo:     repo,
		rules:    rules,
		locker:   locker,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// ────────────────────── Create ──────────────────────

func (s *reservationService) Create(ctx context.Context, userID string, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	slot, err := booking.Normalize(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	device, err := s.repo.Device.GetByID(ctx, req.DeviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		s.logger.Error("查询设备失败", zap.String("device_id", req.DeviceID), zap.Error(err))
		return nil, err
	}

	if err := s.rules.Check(device.IsActive, slot, s.now()); err != nil {
		return nil, err
	}

	release, err := s.locker.Lock(ctx, slotLockKey(device.DeviceID, slot.DateString()))
	if err != nil {
		if !errors.Is(err, ErrSlotBusy) {
			s.logger.Error("获取时段锁失败", zap.String("device_id", device.DeviceID), zap.Error(err))
		}
		return nil, err
	}
	defer release()

	res := &model.Reservation{
		UserID:   userID,
		DeviceID: device.DeviceID,
		Status:   string(booking.StatusPending),
		Version:  1,
	}
	res.SetSlot(slot)

	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		locked, err := tx.Device.GetByIDForUpdate(ctx, device.DeviceID)
		if err != nil {
			return fmt.Errorf("锁定设备失败: %w", err)
		}
		// 加锁期间设备可能已被停用
		if !locked.IsActive {
			return booking.ErrDeviceUnavailable
		}
		u, err := tx.User.GetByIDForUpdate(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("锁定用户失败: %w", err)
		}
		// 账户停用后未过期的 access token 仍可能到达这里
		if !u.IsActive {
			return ErrUserInactive
		}

		if err := s.checkConflicts(ctx, tx, userID, device.DeviceID, slot, ""); err != nil {
			return err
		}
		return tx.Reservation.Create(ctx, res)
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("创建预约失败",
				zap.String("user_id", userID),
				zap.String("device_id", device.DeviceID),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("预约已创建",
		zap.String("reservation_id", res.ReservationID),
		zap.String("device_id", res.DeviceID),
		zap.String("date", slot.DateString()),
		zap.String("start", res.StartTime),
		zap.String("end", res.EndTime),
	)

	return s.loadResponse(ctx, res)
}

// checkConflicts 设备时段冲突与同一用户跨设备重复预约
func (s *reservationService) checkConflicts(ctx context.Context, repo *repository.Repository, userID, deviceID string, slot booking.Slot, excludeID string) error {
	n, err := repo.Reservation.CountOverlapping(ctx, overlapQuery(slot, excludeID, booking.ConflictStatuses, deviceID, ""))
	if err != nil {
		return fmt.Errorf("检查时段冲突失败: %w", err)
	}
	if n > 0 {
		return ErrSlotTaken
	}

	n, err = repo.Reservation.CountOverlapping(ctx, overlapQuery(slot, excludeID, booking.ActiveStatuses, "", userID))
	if err != nil {
		return fmt.Errorf("检查用户重复预约失败: %w", err)
	}
	if n > 0 {
		return ErrUserDoubleBooked
	}
	return nil
}

func overlapQuery(slot booking.Slot, excludeID string, statuses []booking.Status, deviceID, userID string) repository.OverlapQuery {
	return repository.OverlapQuery{
		DeviceID:  deviceID,
		UserID:    userID,
		Date:      slot.DateString(),
		Start:     slot.Start.String(),
		End:       slot.End.String(),
		Statuses:  booking.Strings(statuses),
		ExcludeID: excludeID,
	}
}

// ────────────────────── HasConflict ──────────────────────

func (s *reservationService) HasConflict(ctx context.Context, deviceID string, slot booking.Slot, excludeID string) (bool, error) {
	n, err := s.repo.Reservation.CountOverlapping(ctx, overlapQuery(slot, excludeID, booking.ConflictStatuses, deviceID, ""))
	if err != nil {
		s.logger.Error("检查时段冲突失败", zap.String("device_id", deviceID), zap.Error(err))
		return false, err
	}
	return n > 0, nil
}

func (s *reservationService) Availability(ctx context.Context, deviceID string, req *dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	slot, err := booking.Normalize(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	device, err := s.repo.Device.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDeviceNotFound
		}
		s.logger.Error("查询设备失败", zap.String("device_id", deviceID), zap.Error(err))
		return nil, err
	}

	taken, err := s.HasConflict(ctx, device.DeviceID, slot, "")
	if err != nil {
		return nil, err
	}

	return &dto.AvailabilityResponse{
		DeviceID:     device.DeviceID,
		Date:         slot.DateString(),
		StartTime:    slot.Start.String(),
		EndTime:      slot.End.String(),
		DeviceActive: device.IsActive,
		Conflict:     taken,
		Available:    device.IsActive && !taken,
	}, nil
}

// ────────────────────── Cancel ──────────────────────

func (s *reservationService) Cancel(ctx context.Context, userID, reservationID string) (*dto.ReservationResponse, error) {
	res, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if res.UserID != userID {
		return nil, ErrNotReservationOwner
	}

	next, err := booking.Next(booking.Status(res.Status), booking.ActionCancel)
	if err != nil {
		return nil, err
	}
	slot, err := res.Slot()
	if err != nil {
		s.logger.Error("预约时间数据损坏", zap.String("id", reservationID), zap.Error(err))
		return nil, err
	}
	if err := s.rules.CheckCancellation(slot, s.now()); err != nil {
		return nil, err
	}

	updated := *res
	updated.Status = string(next)
	if err := s.repo.Reservation.UpdateStatus(ctx, &updated); err != nil {
		if !isBusinessError(err) {
			s.logger.Error("取消预约失败", zap.String("id", reservationID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("预约已取消", zap.String("reservation_id", reservationID), zap.String("user_id", userID))
	s.notifyOwner(&updated, booking.ActionCancel)
	return toReservationResponse(&updated), nil
}

// ────────────────────── Transition ──────────────────────

func (s *reservationService) Transition(ctx context.Context, staffID, reservationID, action string) (*dto.ReservationResponse, error) {
	act, err := booking.ParseStaffAction(action)
	if err != nil {
		return nil, err
	}

	res, err := s.getReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	next, err := booking.Next(booking.Status(res.Status), act)
	if err != nil {
		return nil, err
	}

	updated := *res
	updated.Status = string(next)
	if act.RecordsStaff() {
		staff := staffID
		updated.ApprovedBy = &staff
		updated.Approver = nil
	}

	if err := s.repo.Reservation.UpdateStatus(ctx, &updated); err != nil {
		if !isBusinessError(err) {
			s.logger.Error("更新预约状态失败",
				zap.String("id", reservationID),
				zap.String("action", action),
				zap.Error(err),
			)
		}
		return nil, err
	}

	s.logger.Info("预约状态已变更",
		zap.String("reservation_id", reservationID),
		zap.String("staff_id", staffID),
		zap.String("from", res.Status),
		zap.String("to", updated.Status),
	)

	if act.Notifies() {
		s.notifyOwner(&updated, act)
	}

	if act.RecordsStaff() {
		if staff, err := s.repo.User.GetByID(ctx, staffID); err == nil {
			updated.Approver = staff
		}
	}
	return toReservationResponse(&updated), nil
}

// ────────────────────── 查询 ──────────────────────

func (s *reservationService) GetByID(ctx context.Context, id string) (*dto.ReservationResponse, error) {
	res, err := s.getReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	return toReservationResponse(res), nil
}

func (s *reservationService) ListMine(ctx context.Context, userID string) (*dto.MyReservationsResponse, error) {
	list, err := s.repo.Reservation.ListSchedule(ctx, repository.ReservationFilter{UserID: userID})
	if err != nil {
		s.logger.Error("查询本人预约失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	active, past := s.splitByActivity(list)
	out := &dto.MyReservationsResponse{
		Active: make([]dto.ReservationResponse, 0, len(active)),
		Past:   make([]dto.ReservationResponse, 0, len(past)),
	}
	for _, r := range active {
		out.Active = append(out.Active, *toReservationResponse(r))
	}
	// 历史记录最近的在前
	for i := len(past) - 1; i >= 0; i-- {
		out.Past = append(out.Past, *toReservationResponse(past[i]))
	}
	return out, nil
}

func (s *reservationService) Summary(ctx context.Context, userID string) (*dto.ReservationSummaryResponse, error) {
	list, err := s.repo.Reservation.ListSchedule(ctx, repository.ReservationFilter{
		UserID:   userID,
		Statuses: booking.Strings(booking.ActiveStatuses),
		DateFrom: s.rules.Today(s.now()).Format(booking.DateLayout),
	})
	if err != nil {
		s.logger.Error("查询预约摘要失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	active, _ := s.splitByActivity(list)
	out := &dto.ReservationSummaryResponse{ActiveCount: len(active)}
	if len(active) > 0 {
		out.Next = toReservationResponse(active[0])
	}
	return out, nil
}

// splitByActivity 有效：开始时间未到且待审批或已批准；其余归为历史
// 输入按日期、开始时间升序，输出保持该顺序
func (s *reservationService) splitByActivity(list []model.Reservation) (active, past []*model.Reservation) {
	now := s.now()
	loc := s.rules.Policy().Location
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].Date.Equal(list[j].Date) {
			return list[i].Date.Before(list[j].Date)
		}
		return clockText(list[i].StartTime) < clockText(list[j].StartTime)
	})

	for i := range list {
		r := &list[i]
		slot, err := r.Slot()
		if err != nil {
			past = append(past, r)
			continue
		}
		upcoming := !slot.StartAt(loc).Before(now)
		if upcoming && booking.Status(r.Status).In(booking.ActiveStatuses) {
			active = append(active, r)
		} else {
			past = append(past, r)
		}
	}
	return active, past
}

func (s *reservationService) List(ctx context.Context, req *dto.ReservationListRequest) ([]dto.ReservationResponse, int64, error) {
	filter := repository.ReservationFilter{
		UserID:   req.UserID,
		DeviceID: req.DeviceID,
		LabID:    req.LabID,
	}
	if req.Status != "" {
		st, ok := booking.ParseStatus(req.Status)
		if !ok {
			return nil, 0, ErrInvalidStatusFilter
		}
		filter.Statuses = []string{string(st)}
	}
	var err error
	if filter.DateFrom, err = normalizeDateParam(req.DateFrom); err != nil {
		return nil, 0, err
	}
	if filter.DateTo, err = normalizeDateParam(req.DateTo); err != nil {
		return nil, 0, err
	}

	list, total, err := s.repo.Reservation.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询预约列表失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.ReservationResponse, 0, len(list))
	for i := range list {
		out = append(out, *toReservationResponse(&list[i]))
	}
	return out, total, nil
}

// ────────────────────── 内部方法 ──────────────────────

func (s *reservationService) getReservation(ctx context.Context, id string) (*model.Reservation, error) {
	res, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		s.logger.Error("查询预约失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return res, nil
}

func (s *reservationService) loadResponse(ctx context.Context, res *model.Reservation) (*dto.ReservationResponse, error) {
	full, err := s.repo.Reservation.GetByID(ctx, res.ReservationID)
	if err != nil {
		// 记录已提交，关联信息缺失不影响结果
		s.logger.Warn("读取新建预约失败", zap.String("id", res.ReservationID), zap.Error(err))
		return toReservationResponse(res), nil
	}
	return toReservationResponse(full), nil
}

var statusMailSubjects = map[booking.Action]string{
	booking.ActionApprove: "您的设备预约已批准",
	booking.ActionReject:  "您的设备预约未通过",
	booking.ActionCancel:  "您的设备预约已取消",
}

// notifyOwner 通知失败只记录日志，不影响状态变更
func (s *reservationService) notifyOwner(res *model.Reservation, act booking.Action) {
	if s.notifier == nil {
		return
	}
	to, ok := res.ContactEmail()
	if !ok {
		s.logger.Debug("预约人无联系邮箱，跳过通知", zap.String("reservation_id", res.ReservationID))
		return
	}

	deviceName := res.DeviceID
	if res.Device != nil {
		deviceName = res.Device.Name
	}
	body := fmt.Sprintf("%s 您好：\n\n您在 %s %s-%s 对设备「%s」的预约当前状态为：%s。\n\nBookLab",
		res.User.DisplayName(),
		res.Date.Format(booking.DateLayout),
		clockText(res.StartTime),
		clockText(res.EndTime),
		deviceName,
		booking.Status(res.Status).Label(),
	)
	s.notifier.Dispatch(mailer.Message{To: to, Subject: statusMailSubjects[act], Body: body})
}
