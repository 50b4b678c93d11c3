package booking

import "time"

// Slot 一个 (日期, 开始, 结束) 时段，日期为 UTC 零点
type Slot struct {
	Date  time.Time
	Start Clock
	End   Clock
}

// Duration 时段长度，结束早于开始时为负
func (s Slot) Duration() time.Duration {
	return (s.End - s.Start).Duration()
}

// StartAt 时段开始的绝对时间
func (s Slot) StartAt(loc *time.Location) time.Time {
	return At(s.Date, s.Start, loc)
}

// DateString YYYY-MM-DD
func (s Slot) DateString() string {
	return s.Date.Format(DateLayout)
}

// Round 将时刻对齐到半小时网格
//
//	分钟 < 15        → 整点
//	15 ≤ 分钟 < 45   → 半点
//	分钟 ≥ 45        → 下一个整点
func Round(c Clock) Clock {
	base := NewClock(c.Hour(), 0)
	switch m := c.Minute(); {
	case m < 15:
		return base
	case m < 45:
		return base + 30
	default:
		return base + 60
	}
}

// Normalize 解析原始输入并对齐开始、结束时间
// 开始时间进位到 24:00 时，时段顺延到次日 00:00 起算；
// 此时结束时间若未同样进位，时段收缩为空区间，由规则校验拒绝
func Normalize(rawDate, rawStart, rawEnd string) (Slot, error) {
	date, err := ParseDate(rawDate)
	if err != nil {
		return Slot{}, err
	}
	start, err := ParseClock(rawStart)
	if err != nil {
		return Slot{}, err
	}
	end, err := ParseClock(rawEnd)
	if err != nil {
		return Slot{}, err
	}
	return NormalizeSlot(Slot{Date: date, Start: start, End: end}), nil
}

// NormalizeSlot 对已解析的时段做对齐
func NormalizeSlot(s Slot) Slot {
	out := Slot{Date: s.Date, Start: Round(s.Start), End: Round(s.End)}
	if out.Start >= EndOfDay {
		out.Date = out.Date.AddDate(0, 0, 1)
		out.Start -= EndOfDay
		if out.End >= EndOfDay {
			out.End -= EndOfDay
		} else {
			out.End = out.Start
		}
	}
	return out
}
