package service

import (
	"errors"
	"strings"

	"github.com/resitasrav/BookLab-System/internal/booking"
	pkgerrors "github.com/resitasrav/BookLab-System/pkg/errors"
)

// businessErrors 调用方可预期的错误，不作为系统异常记录
var businessErrors = []error{
	booking.ErrMalformedTimeInput,
	booking.ErrUnknownAction,
	booking.ErrDeviceUnavailable,
	booking.ErrPastTimeRejected,
	booking.ErrLeadTimeTooShort,
	booking.ErrInvalidInterval,
	booking.ErrDurationOutOfRange,
	booking.ErrInvalidTransition,
	booking.ErrCancellationWindowClosed,
	ErrSlotTaken,
	ErrUserDoubleBooked,
	ErrSlotBusy,
	ErrUserNotFound,
	ErrUserInactive,
	pkgerrors.ErrOptimisticLock,
}

func isBusinessError(err error) bool {
	for _, target := range businessErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// normalizeDateParam 校验可选的 YYYY-MM-DD 查询参数
func normalizeDateParam(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	d, err := booking.ParseDate(raw)
	if err != nil {
		return "", err
	}
	return d.Format(booking.DateLayout), nil
}
