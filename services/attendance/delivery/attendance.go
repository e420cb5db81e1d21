package delivery

import (
	"trainingportal/domain"
	"trainingportal/helpers"
	"trainingportal/middleware"

	"github.com/gofiber/fiber/v2"
)

type attendanceHandler struct {
	uc  domain.AttendanceUseCase
	cuc domain.CertificateUseCase
}

func NewAttendanceDelivery(app *fiber.App, uc domain.AttendanceUseCase, cuc domain.CertificateUseCase) {
	handler := &attendanceHandler{
		uc:  uc,
		cuc: cuc,
	}

	app.Put("/lessons/:id/attendance", handler.RecordAttendance)
	app.Get("/editions/:id/attendance-stats", handler.AttendanceStats)
	app.Post("/editions/:id/certificates/notify", handler.NotifyCertificates)
}

func NewAttendanceDeliveryDeploy(app *fiber.App, uc domain.AttendanceUseCase, cuc domain.CertificateUseCase) {
	handler := &attendanceHandler{
		uc:  uc,
		cuc: cuc,
	}

	admin := middleware.RoleRequired(domain.RoleAdmin)
	app.Put("/lessons/:id/attendance", middleware.AuthRequired(), admin, handler.RecordAttendance)
	app.Get("/editions/:id/attendance-stats", middleware.AuthRequired(), admin, handler.AttendanceStats)
	app.Post("/editions/:id/certificates/notify", middleware.AuthRequired(), admin, handler.NotifyCertificates)
}

func (ah *attendanceHandler) RecordAttendance(c *fiber.Ctx) error {
	id, err := helpers.ParamID(c, "id")
	if err != nil {
		return helpers.Fail(c, "RecordAttendance", "Invalid lesson id", err)
	}

	var req domain.AttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.BadRequest(c, "RecordAttendance", err.Error())
	}
	if errs := helpers.Validate(&req); errs != nil {
		return helpers.BadRequest(c, "RecordAttendance", errs)
	}
	for i := range req.Entries {
		if errs := helpers.Validate(&req.Entries[i]); errs != nil {
			return helpers.BadRequest(c, "RecordAttendance", errs)
		}
	}

	records, err := ah.uc.RecordAttendance(c.Context(), id, req.Entries)
	if err != nil {
		return helpers.Fail(c, "RecordAttendance", "Failed to record attendance", err)
	}
	return helpers.OK(c, fiber.StatusOK, "RecordAttendance", "Attendance recorded successfully", records)
}

func (ah *attendanceHandler) AttendanceStats(c *fiber.Ctx) error {
	id, err := helpers.ParamID(c, "id")
	if err != nil {
		return helpers.Fail(c, "AttendanceStats", "Invalid edition id", err)
	}

	stats, err := ah.uc.Stats(c.Context(), id)
	if err != nil {
		return helpers.Fail(c, "AttendanceStats", "Failed to compute attendance", err)
	}
	return helpers.OK(c, fiber.StatusOK, "AttendanceStats", "Attendance retrieved successfully", stats)
}

func (ah *attendanceHandler) NotifyCertificates(c *fiber.Ctx) error {
	id, err := helpers.ParamID(c, "id")
	if err != nil {
		return helpers.Fail(c, "NotifyCertificates", "Invalid edition id", err)
	}

	notice, err := ah.cuc.NotifyAvailable(c.Context(), id)
	if err != nil {
		return helpers.Fail(c, "NotifyCertificates", "Failed to announce certificates", err)
	}
	return helpers.OK(c, fiber.StatusOK, "NotifyCertificates", "Certificates announced successfully", notice)
}
