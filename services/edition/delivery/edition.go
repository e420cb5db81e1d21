package delivery

import (
	"trainingportal/domain"
	"trainingportal/helpers"
	"trainingportal/middleware"

	"github.com/gofiber/fiber/v2"
)

type editionHandler struct {
	uc  domain.EditionUseCase
	luc domain.LessonUseCase
}

func NewEditionDelivery(app *fiber.App, uc domain.EditionUseCase, luc domain.LessonUseCase) {
	handler := &editionHandler{
		uc:  uc,
		luc: luc,
	}

	route := app.Group("/editions")
	route.Post("/", handler.CreateEdition)
	route.Get("/:id", handler.GetEdition)
	route.Put("/:id", handler.UpdateEdition)
	route.Delete("/:id", handler.DeleteEdition)
	route.Post("/:id/lessons", handler.AddLesson)

	lessons := app.Group("/lessons")
	lessons.Put("/:id", handler.UpdateLesson)
	lessons.Delete("/:id", handler.DeleteLesson)
}

func NewEditionDeliveryDeploy(app *fiber.App, uc domain.EditionUseCase, luc domain.LessonUseCase) {
	handler := &editionHandler{
		uc:  uc,
		luc: luc,
	}

	admin := middleware.RoleRequired(domain.RoleAdmin)

	route := app.Group("/editions", middleware.AuthRequired())
	route.Post("/", admin, handler.CreateEdition)
	route.Get("/:id", middleware.RoleRequired(domain.RoleAdmin, domain.RoleClient), handler.GetEdition)
	route.Put("/:id", admin, handler.UpdateEdition)
	route.Delete("/:id", admin, handler.DeleteEdition)
	route.Post("/:id/lessons", admin, handler.AddLesson)

	lessons := app.Group("/lessons", middleware.AuthRequired())
	lessons.Put("/:id", admin, handler.UpdateLesson)
	lessons.Delete("/:id", admin, handler.DeleteLesson)
}

func (eh *editionHandler) CreateEdition(c *fiber.Ctx) error {
	var req domain.CreateEditionRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.BadRequest(c, "CreateEdition", err.Error())
	}
	if errs := helpers.Validate(&req); errs != nil {
		return helpers.BadRequest(c, "CreateEdition", errs)
	}

	edition, err := eh.uc.Create(c.Context(), &req)
	if err != nil {
		return helpers.Fail(c, "CreateEdition", "Failed to create edition", err)
	}
	return helpers.OK(c, fiber.StatusCreated, "CreateEdition", "Edition created successfully", edition)
}

func (eh *editionHandler) GetEdition(c *fiber.Ctx) error {
	id, err := helpers.ParamID(c, "id")
	if err != nil {
		return helpers.Fail(c, "GetEdition", "Invalid edition id", err)
	}

	edition, err := eh.uc.Get(c.Context(), id)
	if err != nil {
		return helpers.Fail(c, "GetEdition", "Failed to retrieve edition", err)
	}

	if claims, ok := c.Locals("user").(*domain.Claims); ok && claims.Role == domain.RoleClient {
		if edition.ClientID != nil && (claims.ClientID == nil || *claims.ClientID != *edition.ClientID) {
			return helpers.Fail(c, "GetEdition", "Failed to retrieve edition", domain.ErrEditionNotFound)
		}
	}
	return helpers.OK(c, fiber.StatusOK, "GetEdition", "Edition retrieved successfully", edition)
}

func (eh *editionHandler) UpdateEdition(c *fiber.Ctx) error {
	id, err := helpers.ParamID(c, "id")
	if err != nil {
		return helpers.Fail(c, "UpdateEdition", "Invalid edition id", err)
	}

	var req domain.UpdateEditionRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.BadRequest(c, "UpdateEdition", err.Error())
	}
	if errs := helpers.Validate(&req); errs != nil {
		return helpers.BadRequest(c, "UpdateEdition", errs)
	}

	patch, err := req.ToPatch()
	if err != nil {
		return helpers.Fail(c, "UpdateEdition", "Invalid request body", err)
	}

	result, err := eh.uc.Update(c.Context(), id, patch)
	if err != nil {
		return helpers.Fail(c, "UpdateEdition", "Failed to update edition", err)
	}
	return helpers.OK(c, fiber.StatusOK, "UpdateEdition", "Edition updated successfully", result)
}

func (eh *editionHandler) DeleteEdition(c *fiber.Ctx) error {
	id, err := helpers.ParamID(c, "id")
	if err != nil {
		return helpers.Fail(c, "DeleteEdition", "Invalid edition id", err)
	}

	notifications, err := eh.uc.Delete(c.Context(), id)
	if err != nil {
		return helpers.Fail(c, "DeleteEdition", "Failed to delete edition", err)
	}
	return helpers.OK(c, fiber.StatusOK, "DeleteEdition", "Edition deleted successfully", fiber.Map{
		"notifications": notifications,
	})
}

func (eh *editionHandler) AddLesson(c *fiber.Ctx) error {
	id, err := helpers.ParamID(c, "id")
	if err != nil {
		return helpers.Fail(c, "AddLesson", "Invalid edition id", err)
	}

	var req domain.LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.BadRequest(c, "AddLesson", err.Error())
	}
	if errs := helpers.Validate(&req); errs != nil {
		return helpers.BadRequest(c, "AddLesson", errs)
	}

	lesson, err := eh.luc.AddLesson(c.Context(), id, &req)
	if err != nil {
		return helpers.Fail(c, "AddLesson", "Failed to add lesson", err)
	}
	return helpers.OK(c, fiber.StatusCreated, "AddLesson", "Lesson added successfully", lesson)
}

func (eh *editionHandler) UpdateLesson(c *fiber.Ctx) error {
	id, err := helpers.ParamID(c, "id")
	if err != nil {
		return helpers.Fail(c, "UpdateLesson", "Invalid lesson id", err)
	}

	var req domain.LessonRequest
	if err := c.BodyParser(&req); err != nil {
		return helpers.BadRequest(c, "UpdateLesson", err.Error())
	}
	if errs := helpers.Validate(&req); errs != nil {
		return helpers.BadRequest(c, "UpdateLesson", errs)
	}

	lesson, err := eh.luc.UpdateLesson(c.Context(), id, &req)
	if err != nil {
		return helpers.Fail(c, "UpdateLesson", "Failed to update lesson", err)
	}
	return helpers.OK(c, fiber.StatusOK, "UpdateLesson", "Lesson updated successfully", lesson)
}

func (eh *editionHandler) DeleteLesson(c *fiber.Ctx) error {
	id, err := helpers.ParamID(c, "id")
	if err != nil {
		return helpers.Fail(c, "DeleteLesson", "Invalid lesson id", err)
	}

	if err := eh.luc.DeleteLesson(c.Context(), id); err != nil {
		return helpers.Fail(c, "DeleteLesson", "Failed to delete lesson", err)
	}
	return helpers.OK(c, fiber.StatusOK, "DeleteLesson", "Lesson deleted successfully", nil)
}
