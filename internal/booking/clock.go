package booking

import (
	"fmt"
	"strings"
	"time"
)

// Clock 一天内的时刻，以分钟计，取值 [0, 1440]
// 1440 表示当天结束（24:00），只能作为结束时间出现
type Clock int

// EndOfDay 24:00
const EndOfDay Clock = 24 * 60

// NewClock 由时、分构造
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// Hour 小时部分
func (c Clock) Hour() int { return int(c) / 60 }

// Minute 分钟部分
func (c Clock) Minute() int { return int(c) % 60 }

// String 格式化为 HH:MM
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// Duration 转换为时长
func (c Clock) Duration() time.Duration {
	return time.Duration(c) * time.Minute
}

// ParseClock 解析 "HH:MM" 或 "HH:MM:SS"，秒被截断
// 数据库 time 列读出的值带秒，也走这里
func ParseClock(raw string) (Clock, error) {
	s := strings.TrimSpace(raw)
	if s == "24:00" || s == "24:00:00" {
		return EndOfDay, nil
	}

	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClock(t.Hour(), t.Minute()), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrMalformedTimeInput, raw)
}

// MustParseClock 解析失败时 panic，仅用于常量与测试
func MustParseClock(raw string) Clock {
	c, err := ParseClock(raw)
	if err != nil {
		panic(err)
	}
	return c
}

// DateLayout 日期格式
const DateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD，返回 UTC 零点
func ParseDate(raw string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimeInput, raw)
	}
	return d, nil
}

// DateOf 取某时刻在 loc 下的日历日期（UTC 零点表示）
func DateOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// At 将日历日期与时刻组合成 loc 下的绝对时间
func At(date time.Time, c Clock, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), 0, 0, loc)
}
