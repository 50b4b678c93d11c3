package booking

import (
	"errors"
	"testing"
	"time"
)

func TestNext_AllowedTransitions(t *testing.T) {
	cases := []struct {
		from Status
		act  Action
		to   Status
	}{
		{StatusPending, ActionApprove, StatusApproved},
		{StatusPending, ActionReject, StatusRejected},
		{StatusApproved, ActionAttended, StatusAttended},
		{StatusApproved, ActionNoShow, StatusNoShow},
		{StatusPending, ActionCancel, StatusCancelled},
		{StatusApproved, ActionCancel, StatusCancelled},
	}
	for _, tc := range cases {
		got, err := Next(tc.from, tc.act)
		if err != nil {
			t.Errorf("%s --%s--> 应成功: %v", tc.from, tc.act, err)
			continue
		}
		if got != tc.to {
			t.Errorf("%s --%s--> 期望 %s，实际=%s", tc.from, tc.act, tc.to, got)
		}
	}
}

func TestNext_InvalidSources(t *testing.T) {
	cases := []struct {
		from Status
		act  Action
	}{
		{StatusApproved, ActionApprove},
		{StatusApproved, ActionReject},
		{StatusPending, ActionAttended},
		{StatusPending, ActionNoShow},
	}
	for _, tc := range cases {
		if _, err := Next(tc.from, tc.act); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("%s --%s--> 期望 ErrInvalidTransition，实际: %v", tc.from, tc.act, err)
		}
	}
}

func TestNext_TerminalStatesRejectEverything(t *testing.T) {
	actions := []Action{ActionApprove, ActionReject, ActionAttended, ActionNoShow, ActionCancel}
	for _, s := range AllStatuses {
		if !s.IsTerminal() {
			continue
		}
		for _, a := range actions {
			if _, err := Next(s, a); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("终态 %s 执行 %s 期望 ErrInvalidTransition，实际: %v", s, a, err)
			}
		}
	}
}

func TestParseStaffAction(t *testing.T) {
	for _, s := range []string{"approve", "reject", "attended", "no_show"} {
		if _, err := ParseStaffAction(s); err != nil {
			t.Errorf("ParseStaffAction(%q) 应成功: %v", s, err)
		}
	}
	for _, s := range []string{"cancel", "delete", ""} {
		if _, err := ParseStaffAction(s); !errors.Is(err, ErrUnknownAction) {
			t.Errorf("ParseStaffAction(%q) 期望 ErrUnknownAction，实际: %v", s, err)
		}
	}
}

func TestActionFlags(t *testing.T) {
	if !ActionApprove.RecordsStaff() || !ActionReject.RecordsStaff() {
		t.Error("审批与拒绝应记录工作人员")
	}
	if ActionAttended.RecordsStaff() || ActionCancel.RecordsStaff() {
		t.Error("到场与取消不应改写审批人")
	}
	if !ActionCancel.Notifies() || ActionNoShow.Notifies() {
		t.Error("通知标记不符")
	}
}

func TestOverlaps(t *testing.T) {
	c := MustParseClock
	if !Overlaps(c("10:00"), c("11:00"), c("10:30"), c("11:30")) {
		t.Error("部分重叠应判定冲突")
	}
	if !Overlaps(c("10:00"), c("12:00"), c("10:30"), c("11:00")) {
		t.Error("包含关系应判定冲突")
	}
	if Overlaps(c("10:00"), c("11:00"), c("11:00"), c("12:00")) {
		t.Error("首尾相接不应判定冲突")
	}
	if Overlaps(c("11:00"), c("12:00"), c("10:00"), c("11:00")) {
		t.Error("首尾相接不应判定冲突")
	}
}

func TestDefaultVisibility(t *testing.T) {
	today := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	future := DefaultVisibility(today.AddDate(0, 0, 1), today)
	if !StatusPending.In(future) || StatusAttended.In(future) {
		t.Errorf("未来日期可见集不符: %v", future)
	}
	past := DefaultVisibility(today.AddDate(0, 0, -1), today)
	if StatusPending.In(past) || !StatusNoShow.In(past) {
		t.Errorf("过去日期可见集不符: %v", past)
	}
	for _, s := range DefaultVisibility(today, today) {
		if s == StatusCancelled || s == StatusRejected {
			t.Errorf("当天不应显示 %s", s)
		}
	}
}

func TestStatusPresentation(t *testing.T) {
	if StatusPending.Color() != "#ffc107" || StatusApproved.Color() != "#28a745" {
		t.Error("状态颜色不符")
	}
	if Status("unknown").Color() != "#3788d8" {
		t.Error("未知状态应使用默认颜色")
	}
	if EventTitle("显微镜", NewClock(10, 0), NewClock(11, 0)) != "显微镜 • 10:00-11:00" {
		t.Error("事件标题格式不符")
	}
}
