package delivery

import (
	"strings"

	"trainingportal/domain"
	"trainingportal/helpers"
	"trainingportal/middleware"

	"github.com/gofiber/fiber/v2"
)

type notificationHandler struct {
	nuc domain.NotificationUseCase
	euc domain.EmailLogUseCase
	puc domain.PreferenceUseCase
}

func NewNotificationDelivery(app *fiber.App, nuc domain.NotificationUseCase, euc domain.EmailLogUseCase, puc domain.PreferenceUseCase) {
	handler := &notificationHandler{
		nuc: nuc,
		euc: euc,
		puc: puc,
	}

	app.Get("/notifications", handler.ListNotifications)
	app.Get("/email-logs", handler.ListEmailLogs)
	app.Get("/notification-preferences", handler.ListPreferences)
	app.Put("/notification-preferences", handler.SetPreference)
}

func NewNotificationDeliveryDeploy(app *fiber.App, nuc domain.NotificationUseCase, euc domain.EmailLogUseCase, puc domain.PreferenceUseCase) {
	handler := &notificationHandler{
		nuc: nuc,
		euc: euc,
		puc: puc,
	}

	admin := middleware.RoleRequired(domain.RoleAdmin)
	app.Get("/notifications", middleware.AuthRequired(), middleware.RoleRequired(domain.RoleAdmin, domain.RoleClient), handler.ListNotifications)
	app.Get("/email-logs", middleware.AuthRequired(), admin, handler.ListEmailLogs)
	app.Get("/notification-preferences", middleware.AuthRequired(), admin, handler.ListPreferences)
	app.Put("/notification-preferences", middleware.AuthRequired(), admin, handler.SetPreference)
}

// ListNotifications scopes client users to their own and the global notifications.
func (nh *notificationHandler) ListNotifications(c *fiber.Ctx) error {
	var filter domain.NotificationFilter
	var err error

	if filter.ClientID, err = helpers.QueryID(c, "client_id"); err != nil {
		return helpers.Fail(c, "ListNotifications", "Invalid query", err)
	}
	if filter.EditionID, err = helpers.QueryID(c, "edition_id"); err != nil {
		return helpers.Fail(c, "ListNotifications", "Invalid query", err)
	}
	filter.Limit = c.QueryInt("limit", 0)

	if claims, ok := c.Locals("user").(*domain.Claims); ok && claims.Role == domain.RoleClient {
		if claims.ClientID == nil {
			return helpers.OK(c, fiber.StatusOK, "ListNotifications", "Notifications retrieved successfully", []domain.Notification{})
		}
		filter.ClientID = claims.ClientID
		filter.ClientView = true
	}

	notifications, err := nh.nuc.List(c.Context(), filter)
	if err != nil {
		return helpers.Fail(c, "ListNotifications", "Failed to retrieve notifications", err)
	}
	return helpers.OK(c, fiber.StatusOK, "ListNotifications", "Notifications retrieved successfully", notifications)
}

func (nh *notificationHandler) ListEmailLogs(c *fiber.Ctx) error {
	var filter domain.EmailLogFilter
	var err error

	if raw := c.Query("status"); raw != "" {
		status := domain.EmailStatus(strings.ToUpper(raw))
		switch status {
		case domain.EmailSent, domain.EmailFailed, domain.EmailPending:
		default:
			return helpers.Fail(c, "ListEmailLogs", "Invalid query", domain.NewValidationError("status", "unknown email status"))
		}
		filter.Status = &status
	}
	if filter.EditionID, err = helpers.QueryID(c, "edition_id"); err != nil {
		return helpers.Fail(c, "ListEmailLogs", "Invalid query", err)
	}
	filter.Limit = c.QueryInt("limit", 0)

	logs, err := nh.euc.List(c.Context(), filter)
	if err != nil {
		return helpers.Fail(c, "ListEmailLogs", "Failed to retrieve email logs", err)
	}
	return helpers.OK(c, fiber.StatusOK, "ListEmailLogs", "Email logs retrieved successfully", logs)
}

func (nh *notificationHandler) ListPreferences(c *fiber.Ctx) error {
	prefs, err := nh.puc.List(c.Context())
	if err != nil {
		return helpers.Fail(c, "ListPreferences", "Failed to retrieve preferences", err)
	}
	return helpers.OK(c, fiber.StatusOK, "ListPreferences", "Preferences retrieved successfully", prefs)
}

func (nh *notificationHandler) SetPreference(c *fiber.Ctx) error {
	var req domain.NotificationPreference
	if err := c.BodyParser(&req); err != nil {
		return helpers.BadRequest(c, "SetPreference", err.Error())
	}
	if errs := helpers.Validate(&req); errs != nil {
		return helpers.BadRequest(c, "SetPreference", errs)
	}

	if err := nh.puc.Set(c.Context(), &req); err != nil {
		return helpers.Fail(c, "SetPreference", "Failed to update preference", err)
	}
	return helpers.OK(c, fiber.StatusOK, "SetPreference", "Preference updated successfully", req)
}
