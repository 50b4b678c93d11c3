package booking

import (
	"fmt"
	"time"
)

// Policy 预约规则参数，启动时从配置构造后只读
type Policy struct {
	MinDuration time.Duration
	MaxDuration time.Duration
	// Cutoff 创建与取消共用的最短提前量
	Cutoff   time.Duration
	Location *time.Location
}

// DefaultPolicy 最短 1 小时、最长 3 小时、提前 1 小时
func DefaultPolicy(loc *time.Location) Policy {
	if loc == nil {
		loc = time.UTC
	}
	return Policy{
		MinDuration: time.Hour,
		MaxDuration: 3 * time.Hour,
		Cutoff:      time.Hour,
		Location:    loc,
	}
}

// RuleEngine 创建预约前的纯规则校验，不访问存储
type RuleEngine struct {
	policy Policy
}

// NewRuleEngine 创建规则引擎
func NewRuleEngine(p Policy) *RuleEngine {
	if p.Location == nil {
		p.Location = time.UTC
	}
	return &RuleEngine{policy: p}
}

// Policy 返回当前规则参数
func (e *RuleEngine) Policy() Policy { return e.policy }

// Check 按顺序校验，遇到第一个失败立即返回：
// 设备可用 → 非过去时间 → 提前量 → 区间有效 → 时长范围
func (e *RuleEngine) Check(deviceActive bool, slot Slot, now time.Time) error {
	if !deviceActive {
		return ErrDeviceUnavailable
	}

	startAt := slot.StartAt(e.policy.Location)
	if startAt.Before(now) {
		return ErrPastTimeRejected
	}
	if lead := startAt.Sub(now); lead < e.policy.Cutoff {
		return fmt.Errorf("%w: 需至少提前 %s", ErrLeadTimeTooShort, formatHours(e.policy.Cutoff))
	}

	d := slot.Duration()
	if d <= 0 {
		return ErrInvalidInterval
	}
	if d < e.policy.MinDuration || d > e.policy.MaxDuration {
		return fmt.Errorf("%w: 时长需在 %s 到 %s 之间",
			ErrDurationOutOfRange, formatHours(e.policy.MinDuration), formatHours(e.policy.MaxDuration))
	}
	return nil
}

// CheckCancellation 取消需在开始前超过 Cutoff
func (e *RuleEngine) CheckCancellation(slot Slot, now time.Time) error {
	if slot.StartAt(e.policy.Location).Sub(now) <= e.policy.Cutoff {
		return fmt.Errorf("%w: 需在开始前 %s 以上取消", ErrCancellationWindowClosed, formatHours(e.policy.Cutoff))
	}
	return nil
}

// Today 当前时间在预约时区下的日期
func (e *RuleEngine) Today(now time.Time) time.Time {
	return DateOf(now, e.policy.Location)
}

func formatHours(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d 小时", int(d/time.Hour))
	}
	return d.String()
}
