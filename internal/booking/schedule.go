package booking

import "time"

// Overlaps 半开区间 [aStart,aEnd) 与 [bStart,bEnd) 是否相交，首尾相接不算
func Overlaps(aStart, aEnd, bStart, bEnd Clock) bool {
	return aStart < bEnd && aEnd > bStart
}

// DefaultVisibility 未指定可见状态时的日历规则：
// 未来日期显示待审批、已批准；过去日期显示已到场、未到场；当天都显示
func DefaultVisibility(date, today time.Time) []Status {
	switch {
	case date.After(today):
		return []Status{StatusPending, StatusApproved}
	case date.Before(today):
		return []Status{StatusAttended, StatusNoShow}
	default:
		return []Status{StatusPending, StatusApproved, StatusAttended, StatusNoShow}
	}
}

// EventTitle 日历事件标题，例如 "显微镜 • 10:00-11:00"
func EventTitle(deviceName string, start, end Clock) string {
	return deviceName + " • " + start.String() + "-" + end.String()
}
