package handler

import (
	"github.com/resitasrav/BookLab-System/config"
	"github.com/resitasrav/BookLab-System/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	Profile      *ProfileHandler
	Lab          *LabHandler
	Device       *DeviceHandler
	Fault        *FaultHandler
	Reservation  *ReservationHandler
	Schedule     *ScheduleHandler
	Export       *ExportHandler
	Admin        *AdminHandler
	Announcement *AnnouncementHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, &cfg.Auth),
		Profile:      NewProfileHandler(svc.Profile),
		Lab:          NewLabHandler(svc.Lab),
		Device:       NewDeviceHandler(svc.Device),
		Fault:        NewFaultHandler(svc.Fault),
		Reservation:  NewReservationHandler(svc.Reservation),
		Schedule:     NewScheduleHandler(svc.Schedule),
		Export:       NewExportHandler(svc.Export),
		Admin:        NewAdminHandler(svc.Admin),
		Announcement: NewAnnouncementHandler(svc.Announcement),
	}
}
