package booking

import "fmt"

// Action 状态操作
type Action string

const (
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionAttended Action = "attended"
	ActionNoShow   Action = "no_show"
	ActionCancel   Action = "cancel"
)

type transition struct {
	from []Status
	to   Status
	// recordsStaff 是否记录操作的工作人员
	recordsStaff bool
	// notifies 是否通知预约人
	notifies bool
}

var transitions = map[Action]transition{
	ActionApprove:  {from: []Status{StatusPending}, to: StatusApproved, recordsStaff: true, notifies: true},
	ActionReject:   {from: []Status{StatusPending}, to: StatusRejected, recordsStaff: true, notifies: true},
	ActionAttended: {from: []Status{StatusApproved}, to: StatusAttended},
	ActionNoShow:   {from: []Status{StatusApproved}, to: StatusNoShow},
	ActionCancel:   {from: []Status{StatusPending, StatusApproved}, to: StatusCancelled, notifies: true},
}

// ParseStaffAction 解析工作人员可执行的操作，取消只能由预约人发起
func ParseStaffAction(s string) (Action, error) {
	a := Action(s)
	if a == ActionCancel {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	if _, ok := transitions[a]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
	return a, nil
}

// Next 计算目标状态，源状态不允许时返回 ErrInvalidTransition
func Next(from Status, a Action) (Status, error) {
	t, ok := transitions[a]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, a)
	}
	if !from.In(t.from) {
		return "", fmt.Errorf("%w: %s 状态不能执行 %s", ErrInvalidTransition, from.Label(), a)
	}
	return t.to, nil
}

// RecordsStaff 该操作是否记录审批人
func (a Action) RecordsStaff() bool { return transitions[a].recordsStaff }

// Notifies 该操作完成后是否通知预约人
func (a Action) Notifies() bool { return transitions[a].notifies }
