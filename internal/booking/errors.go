package booking

import "errors"

// 输入错误
var (
	ErrMalformedTimeInput = errors.New("日期或时间格式无效")
	ErrUnknownAction      = errors.New("未知的状态操作")
)

// 规则校验错误，按校验顺序排列
var (
	ErrDeviceUnavailable  = errors.New("设备维护中，暂不可预约")
	ErrPastTimeRejected   = errors.New("不能预约已经过去的时间")
	ErrLeadTimeTooShort   = errors.New("距离开始时间过近，无法预约")
	ErrInvalidInterval    = errors.New("结束时间必须晚于开始时间")
	ErrDurationOutOfRange = errors.New("预约时长超出允许范围")
)

// 状态流转错误
var (
	ErrInvalidTransition        = errors.New("当前状态不允许该操作")
	ErrCancellationWindowClosed = errors.New("距离开始时间过近，已无法取消")
)
