package service

import (
	"time"

	"github.com/resitasrav/BookLab-System/internal/booking"
	"github.com/resitasrav/BookLab-System/internal/dto"
	"github.com/resitasrav/BookLab-System/internal/model"
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dto.TimeLayout)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{
		ID:       u.UserID,
		Username: u.Username,
		Name:     u.DisplayName(),
		Email:    u.Email,
	}
}

// clockText 将数据库读出的 HH:MM:SS 统一成 HH:MM
func clockText(raw string) string {
	c, err := booking.ParseClock(raw)
	if err != nil {
		return raw
	}
	return c.String()
}

func toReservationResponse(r *model.Reservation) *dto.ReservationResponse {
	st := booking.Status(r.Status)
	resp := &dto.ReservationResponse{
		ID:          r.ReservationID,
		DeviceID:    r.DeviceID,
		User:        toUserBrief(r.User),
		Date:        r.Date.Format(booking.DateLayout),
		StartTime:   clockText(r.StartTime),
		EndTime:     clockText(r.EndTime),
		Status:      r.Status,
		StatusLabel: st.Label(),
		ApprovedBy:  toUserBrief(r.Approver),
		Version:     r.Version,
		CreatedAt:   formatTime(r.CreatedAt),
	}
	if r.Device != nil {
		resp.DeviceName = r.Device.Name
		if r.Device.Lab != nil {
			resp.LabName = r.Device.Lab.Name
		}
	}
	return resp
}

func toProfileResponse(u *model.User, p *model.Profile) *dto.ProfileResponse {
	resp := &dto.ProfileResponse{
		ID:        u.UserID,
		Username:  u.Username,
		Name:      u.DisplayName(),
		Email:     u.Email,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: formatTime(u.CreatedAt),
	}
	if p != nil {
		resp.SchoolNumber = p.SchoolNumber
		resp.Phone = p.Phone
		resp.PhotoURL = p.PhotoURL
		resp.Status = p.Status
		resp.EmailVerified = p.EmailVerified
		resp.EmailVerifiedAt = formatTimePtr(p.EmailVerifiedAt)
	}
	return resp
}

func toDeviceResponse(d *model.Device, openFaults []model.FaultReport) *dto.DeviceResponse {
	resp := &dto.DeviceResponse{
		ID:          d.DeviceID,
		LabID:       d.LabID,
		Name:        d.Name,
		IsActive:    d.IsActive,
		Description: d.Description,
		ImageURL:    d.ImageURL,
		OpenFaults:  len(openFaults),
	}
	if d.Lab != nil {
		resp.LabName = d.Lab.Name
	}
	// openFaults 已按时间倒序
	if len(openFaults) > 0 {
		resp.FaultNote = openFaults[0].Description
	}
	return resp
}

func toFaultReportResponse(f *model.FaultReport) *dto.FaultReportResponse {
	resp := &dto.FaultReportResponse{
		ID:          f.FaultID,
		DeviceID:    f.DeviceID,
		Reporter:    toUserBrief(f.Reporter),
		Description: f.Description,
		Resolved:    f.Resolved,
		ResolvedAt:  formatTimePtr(f.ResolvedAt),
		CreatedAt:   formatTime(f.CreatedAt),
	}
	if f.Device != nil {
		resp.DeviceName = f.Device.Name
		if f.Device.Lab != nil {
			resp.LabName = f.Device.Lab.Name
		}
	}
	return resp
}
