package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/dto"
)

// ── 测试辅助 ──

func setupScheduleService() (ScheduleService, *memDB) {
	db := newMemDB()
	seedBookingData(db)
	db.addLab("lab-2", "化学实验室")
	db.addDevice("dev-3", "lab-2", "离心机", true)

	rules := booking.NewRuleEngine(booking.DefaultPolicy(testLoc))
	svc := NewScheduleService(db.repository(), rules, 62, zap.NewNop())
	svc.(*scheduleService).now = func() time.Time { return baseNow }
	return svc, db
}

func eventIDs(events []dto.CalendarEvent) map[string]bool {
	out := make(map[string]bool, len(events))
	for _, e := range events {
		out[e.ReservationID] = true
	}
	return out
}

// ────────────────────── DeviceDay ──────────────────────

func TestScheduleService_DeviceDay_TodayShowsAllOccupying(t *testing.T) {
	svc, db := setupScheduleService()
	db.addReservation("r-p", "u-1", "dev-1", "2025-01-10", "09:00", "10:00", booking.StatusPending)
	db.addReservation("r-a", "u-2", "dev-1", "2025-01-10", "10:00", "11:00", booking.StatusApproved)
	db.addReservation("r-t", "u-1", "dev-1", "2025-01-10", "06:00", "07:00", booking.StatusAttended)
	db.addReservation("r-n", "u-2", "dev-1", "2025-01-10", "07:00", "08:00", booking.StatusNoShow)
	db.addReservation("r-r", "u-1", "dev-1", "2025-01-10", "12:00", "13:00", booking.StatusRejected)
	db.addReservation("r-c", "u-2", "dev-1", "2025-01-10", "13:00", "14:00", booking.StatusCancelled)
	db.addReservation("r-x", "u-2", "dev-2", "2025-01-10", "10:00", "11:00", booking.StatusApproved)

	events, err := svc.DeviceDay(context.Background(), "dev-1", &dto.DeviceDayRequest{Date: "2025-01-10"})
	if err != nil {
		t.Fatalf("DeviceDay 应成功: %v", err)
	}
	ids := eventIDs(events)
	for _, id := range []string{"r-p", "r-a", "r-t", "r-n"} {
		if !ids[id] {
			t.Errorf("当天应显示 %s", id)
		}
	}
	for _, id := range []string{"r-r", "r-c", "r-x"} {
		if ids[id] {
			t.Errorf("不应显示 %s", id)
		}
	}
	// 按开始时间升序
	if events[0].ReservationID != "r-t" {
		t.Errorf("期望首条为 r-t, 实际=%s", events[0].ReservationID)
	}
}

func TestScheduleService_DeviceDay_EventFields(t *testing.T) {
	svc, db := setupScheduleService()
	db.addReservation("r-a", "u-1", "dev-1", "2025-01-10", "10:00", "11:00", booking.StatusApproved)

	events, err := svc.DeviceDay(context.Background(), "dev-1", &dto.DeviceDayRequest{Date: "2025-01-10"})
	if err != nil || len(events) != 1 {
		t.Fatalf("期望 1 个事件, 实际=%d err=%v", len(events), err)
	}
	ev := events[0]
	if ev.Title != "示波器 • 10:00-11:00" {
		t.Errorf("标题不符: %s", ev.Title)
	}
	if ev.Start != "2025-01-10T10:00:00" || ev.End != "2025-01-10T11:00:00" {
		t.Errorf("起止时间不符: %s ~ %s", ev.Start, ev.End)
	}
	if ev.Color != "#28a745" || ev.StatusLabel != "已批准" {
		t.Errorf("颜色或标签不符: %s %s", ev.Color, ev.StatusLabel)
	}
	if ev.OwnerName != "alice" || ev.LabName != "电子实验室" {
		t.Errorf("预约人或实验室不符: %s %s", ev.OwnerName, ev.LabName)
	}
}

func TestScheduleService_DeviceDay_ExplicitStatus(t *testing.T) {
	svc, db := setupScheduleService()
	db.addReservation("r-c", "u-1", "dev-1", "2025-01-11", "10:00", "11:00", booking.StatusCancelled)
	db.addReservation("r-p", "u-2", "dev-1", "2025-01-11", "12:00", "13:00", booking.StatusPending)

	events, err := svc.DeviceDay(context.Background(), "dev-1", &dto.DeviceDayRequest{
		Date:   "2025-01-11",
		Status: []string{"cancelled"},
	})
	if err != nil {
		t.Fatalf("DeviceDay 应成功: %v", err)
	}
	if len(events) != 1 || events[0].ReservationID != "r-c" {
		t.Errorf("显式状态筛选只应返回 r-c, 实际=%v", eventIDs(events))
	}
}

func TestScheduleService_DeviceDay_Errors(t *testing.T) {
	svc, _ := setupScheduleService()
	ctx := context.Background()

	if _, err := svc.DeviceDay(ctx, "dev-x", &dto.DeviceDayRequest{Date: "2025-01-10"}); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("期望 ErrDeviceNotFound, 实际=%v", err)
	}
	if _, err := svc.DeviceDay(ctx, "dev-1", &dto.DeviceDayRequest{Date: "01/10/2025"}); !errors.Is(err, booking.ErrMalformedTimeInput) {
		t.Errorf("期望 ErrMalformedTimeInput, 实际=%v", err)
	}
	if _, err := svc.DeviceDay(ctx, "dev-1", &dto.DeviceDayRequest{Date: "2025-01-10", Status: []string{"done"}}); !errors.Is(err, ErrInvalidStatusFilter) {
		t.Errorf("期望 ErrInvalidStatusFilter, 实际=%v", err)
	}
}

// ────────────────────── 区间查询 ──────────────────────

func TestScheduleService_LabRange_DefaultVisibilityByDate(t *testing.T) {
	svc, db := setupScheduleService()
	// 过去
	db.addReservation("past-p", "u-1", "dev-1", "2025-01-09", "10:00", "11:00", booking.StatusPending)
	db.addReservation("past-t", "u-1", "dev-2", "2025-01-09", "12:00", "13:00", booking.StatusAttended)
	// 未来
	db.addReservation("fut-a", "u-2", "dev-1", "2025-01-11", "10:00", "11:00", booking.StatusApproved)
	db.addReservation("fut-n", "u-2", "dev-2", "2025-01-11", "12:00", "13:00", booking.StatusNoShow)
	// 其他实验室
	db.addReservation("other", "u-2", "dev-3", "2025-01-11", "10:00", "11:00", booking.StatusApproved)

	events, err := svc.LabRange(context.Background(), "lab-1", &dto.RangeRequest{From: "2025-01-09", To: "2025-01-12"})
	if err != nil {
		t.Fatalf("LabRange 应成功: %v", err)
	}
	ids := eventIDs(events)
	if !ids["past-t"] || !ids["fut-a"] {
		t.Errorf("期望显示 past-t 与 fut-a, 实际=%v", ids)
	}
	if ids["past-p"] || ids["fut-n"] || ids["other"] {
		t.Errorf("不应显示 past-p、fut-n、other, 实际=%v", ids)
	}
}

func TestScheduleService_AllRange_DefaultsToOneWeek(t *testing.T) {
	svc, db := setupScheduleService()
	db.addReservation("in", "u-1", "dev-1", "2025-01-16", "10:00", "11:00", booking.StatusPending)
	db.addReservation("out", "u-1", "dev-1", "2025-01-17", "10:00", "11:00", booking.StatusPending)
	db.addReservation("lab2", "u-2", "dev-3", "2025-01-12", "10:00", "11:00", booking.StatusApproved)

	events, err := svc.AllRange(context.Background(), &dto.RangeRequest{From: "2025-01-10"})
	if err != nil {
		t.Fatalf("AllRange 应成功: %v", err)
	}
	ids := eventIDs(events)
	if !ids["in"] || !ids["lab2"] || ids["out"] {
		t.Errorf("默认区间应为 7 天, 实际=%v", ids)
	}
}

func TestScheduleService_Range_Errors(t *testing.T) {
	svc, _ := setupScheduleService()
	ctx := context.Background()

	if _, err := svc.AllRange(ctx, &dto.RangeRequest{From: "2025-01-10", To: "2025-01-09"}); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("结束早于开始, 期望 ErrInvalidDateRange, 实际=%v", err)
	}
	if _, err := svc.AllRange(ctx, &dto.RangeRequest{From: "2025-01-01", To: "2025-04-01"}); !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("区间超长, 期望 ErrInvalidDateRange, 实际=%v", err)
	}
	if _, err := svc.LabRange(ctx, "lab-x", &dto.RangeRequest{From: "2025-01-10"}); !errors.Is(err, ErrLabNotFound) {
		t.Errorf("期望 ErrLabNotFound, 实际=%v", err)
	}
	if _, err := svc.Query(ctx, ScheduleQuery{Scope: "room", From: baseNow, To: baseNow}); !errors.Is(err, ErrInvalidScope) {
		t.Errorf("期望 ErrInvalidScope, 实际=%v", err)
	}
}
