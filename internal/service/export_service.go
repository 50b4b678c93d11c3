package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
	"github.com/resitasrav/BookLab-System/internal/repository"
)

// ── 导出模块业务错误 ──

var ErrExportGenerateFail = errors.New("生成导出文件失败")

const calendarProductID = "-//BookLab//Reservations//TR"

// ExportFile 导出结果，由 Handler 层设置响应头后写出
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService 导出业务接口
type ExportService interface {
	// ExportReservations 工作人员导出预约表
	ExportReservations(ctx context.Context, req *dto.ExportRequest) (*ExportFile, error)
	// ExportMine 本人预约记录文档
	ExportMine(ctx context.Context, userID string) (*ExportFile, error)
	// CalendarFeed 本人有效预约的 iCalendar 订阅
	CalendarFeed(ctx context.Context, userID string) (*ExportFile, error)
}

type exportService struct {
	repo     *repository.Repository
	renderer DocumentRenderer
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService 创建 ExportService 实例；loc 为预约所在时区
func NewExportService(repo *repository.Repository, renderer DocumentRenderer, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &exportService{repo: repo, renderer: renderer, loc: loc, logger: logger, now: time.Now}
}

var reservationHeaders = []string{"日期", "开始", "结束", "实验室", "设备", "预约人", "邮箱", "状态", "审批人"}

func (s *exportService) ExportReservations(ctx context.Context, req *dto.ExportRequest) (*ExportFile, error) {
	filter := repository.ReservationFilter{LabID: req.LabID}
	if req.Status != "" {
		st, ok := booking.ParseStatus(req.Status)
		if !ok {
			return nil, ErrInvalidStatusFilter
		}
		filter.Statuses = []string{string(st)}
	}
	var err error
	if filter.DateFrom, err = normalizeDateParam(req.DateFrom); err != nil {
		return nil, err
	}
	if filter.DateTo, err = normalizeDateParam(req.DateTo); err != nil {
		return nil, err
	}

	list, err := s.repo.Reservation.ListSchedule(ctx, filter)
	if err != nil {
		s.logger.Error("查询导出预约失败", zap.Error(err))
		return nil, err
	}

	doc := &Document{
		Title:   "设备预约记录",
		Sheet:   "预约",
		Headers: reservationHeaders,
	}
	for i := range list {
		doc.Rows = append(doc.Rows, reservationRow(&list[i]))
	}
	return s.render(doc, "reservations_"+s.now().In(s.loc).Format("20060102"))
}

func (s *exportService) ExportMine(ctx context.Context, userID string) (*ExportFile, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	list, err := s.repo.Reservation.ListSchedule(ctx, repository.ReservationFilter{UserID: userID})
	if err != nil {
		s.logger.Error("查询本人预约失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	doc := &Document{
		Title:   fmt.Sprintf("%s 的预约记录", user.DisplayName()),
		Sheet:   "我的预约",
		Headers: reservationHeaders,
	}
	for i := range list {
		doc.Rows = append(doc.Rows, reservationRow(&list[i]))
	}
	return s.render(doc, "my_reservations_"+user.Username)
}

// CalendarFeed 包含待审批与已批准的预约；已取消的以 CANCELLED 状态保留，客户端据此删除
func (s *exportService) CalendarFeed(ctx context.Context, userID string) (*ExportFile, error) {
	list, err := s.repo.Reservation.ListSchedule(ctx, repository.ReservationFilter{
		UserID:   userID,
		Statuses: booking.Strings([]booking.Status{booking.StatusPending, booking.StatusApproved, booking.StatusCancelled}),
	})
	if err != nil {
		s.logger.Error("查询日历订阅预约失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)
	cal.SetXWRCalName("BookLab")
	cal.SetXWRTimezone(s.loc.String())

	stamp := s.now().UTC()
	for i := range list {
		r := &list[i]
		slot, err := r.Slot()
		if err != nil {
			s.logger.Warn("跳过时段损坏的预约", zap.String("reservation_id", r.ReservationID), zap.Error(err))
			continue
		}
		start := slot.StartAt(s.loc)

		evt := cal.AddEvent(r.ReservationID + "@booklab")
		evt.SetDtStampTime(stamp)
		evt.SetStartAt(start)
		evt.SetEndAt(start.Add(slot.Duration()))
		evt.SetSummary(booking.EventTitle(deviceName(r), slot.Start, slot.End))
		if r.Device != nil && r.Device.Lab != nil {
			evt.SetLocation(r.Device.Lab.Name)
		}
		evt.SetDescription(booking.Status(r.Status).Label())
		evt.SetStatus(icsStatus(booking.Status(r.Status)))
	}

	return &ExportFile{
		Filename:    "booklab.ics",
		ContentType: "text/calendar; charset=utf-8",
		Data:        []byte(cal.Serialize()),
	}, nil
}

func (s *exportService) render(doc *Document, basename string) (*ExportFile, error) {
	data, err := s.renderer.Render(doc)
	if err != nil {
		s.logger.Error("渲染导出文档失败", zap.String("title", doc.Title), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return &ExportFile{
		Filename:    basename + s.renderer.Extension(),
		ContentType: s.renderer.ContentType(),
		Data:        data,
	}, nil
}

func reservationRow(r *model.Reservation) []string {
	row := []string{
		r.Date.Format(booking.DateLayout),
		clockText(r.StartTime),
		clockText(r.EndTime),
		"",
		deviceName(r),
		r.User.DisplayName(),
		"",
		booking.Status(r.Status).Label(),
		r.Approver.DisplayName(),
	}
	if r.Device != nil && r.Device.Lab != nil {
		row[3] = r.Device.Lab.Name
	}
	if r.User != nil {
		row[6] = r.User.Email
	}
	return row
}

func deviceName(r *model.Reservation) string {
	if r.Device != nil {
		return r.Device.Name
	}
	return r.DeviceID
}

func icsStatus(st booking.Status) ics.ObjectStatus {
	switch st {
	case booking.StatusApproved:
		return ics.ObjectStatusConfirmed
	case booking.StatusCancelled:
		return ics.ObjectStatusCancelled
	default:
		return ics.ObjectStatusTentative
	}
}
