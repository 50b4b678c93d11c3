package booking

// Status 预约状态
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusAttended  Status = "attended"
	StatusNoShow    Status = "no_show"
	StatusCancelled Status = "cancelled"
)

// AllStatuses 全部状态，按生命周期顺序
var AllStatuses = []Status{
	StatusPending, StatusApproved, StatusRejected,
	StatusAttended, StatusNoShow, StatusCancelled,
}

// ConflictStatuses 占用时段的状态，参与冲突检测
var ConflictStatuses = []Status{StatusPending, StatusApproved, StatusAttended}

// ActiveStatuses 尚未发生的有效预约，用于同一用户重复预约检测
var ActiveStatuses = []Status{StatusPending, StatusApproved}

const defaultColor = "#3788d8"

var statusLabels = map[Status]string{
	StatusPending:   "待审批",
	StatusApproved:  "已批准",
	StatusRejected:  "已拒绝",
	StatusAttended:  "已到场",
	StatusNoShow:    "未到场",
	StatusCancelled: "已取消",
}

var statusColors = map[Status]string{
	StatusPending:   "#ffc107",
	StatusApproved:  "#28a745",
	StatusRejected:  "#dc3545",
	StatusAttended:  "#17a2b8",
	StatusNoShow:    "#6c757d",
	StatusCancelled: "#495057",
}

// ParseStatus 校验状态字符串
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	_, ok := statusLabels[st]
	return st, ok
}

// Label 状态显示名
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// Color 日历渲染颜色
func (s Status) Color() string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return defaultColor
}

// IsTerminal 终态不允许任何流转
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusAttended, StatusNoShow, StatusCancelled:
		return true
	}
	return false
}

// In 判断是否属于集合
func (s Status) In(set []Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// Strings 转换为字符串切片，便于拼接 SQL 参数
func Strings(set []Status) []string {
	out := make([]string, len(set))
	for i, s := range set {
		out[i] = string(s)
	}
	return out
}
