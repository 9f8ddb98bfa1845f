package controller

import (
	"io"
	"path/filepath"

	"chatbot-creator-be/internal/dto"
	"chatbot-creator-be/internal/entity"
	"chatbot-creator-be/internal/pkg/apperror"
	"chatbot-creator-be/internal/pkg/serverutils"
	"chatbot-creator-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IBotController interface {
	RegisterRoutes(r fiber.Router)
	CreateDraft(ctx *fiber.Ctx) error
	ShowDraft(ctx *fiber.Ctx) error
	UpdateDraft(ctx *fiber.Ctx) error
	NextStep(ctx *fiber.Ctx) error
	BackStep(ctx *fiber.Ctx) error
	AttachFiles(ctx *fiber.Ctx) error
	Submit(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	UpdateTheme(ctx *fiber.Ctx) error
}

type botController struct {
	service service.IBotService
}

func NewBotController(service service.IBotService) IBotController {
	return &botController{service: service}
}

func (c *botController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/bot/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/drafts", c.CreateDraft)
	h.Get("/drafts/:id", c.ShowDraft)
	h.Put("/drafts/:id", c.UpdateDraft)
	h.Post("/drafts/:id/next", c.NextStep)
	h.Post("/drafts/:id/back", c.BackStep)
	h.Post("/drafts/:id/files", c.AttachFiles)
	h.Post("/drafts/:id/submit", c.Submit)
	h.Get("", c.GetAll)
	h.Get("/:id", c.Show)
	h.Put("/:id/theme", c.UpdateTheme)
}

func currentUserID(ctx *fiber.Ctx) uuid.UUID {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}

func parseIDParam(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, apperror.ValidationFailed("invalid id")
	}
	return id, nil
}

func (c *botController) CreateDraft(ctx *fiber.Ctx) error {
	res, err := c.service.CreateDraft(ctx.Context(), currentUserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Draft created", res))
}

func (c *botController) ShowDraft(ctx *fiber.Ctx) error {
	draftId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetDraft(ctx.Context(), currentUserID(ctx), draftId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get draft", res))
}

func (c *botController) UpdateDraft(ctx *fiber.Ctx) error {
	draftId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateDraftRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateDraft(ctx.Context(), currentUserID(ctx), draftId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Draft updated", res))
}

func (c *botController) NextStep(ctx *fiber.Ctx) error {
	draftId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Next(ctx.Context(), currentUserID(ctx), draftId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Moved to next step", res))
}

func (c *botController) BackStep(ctx *fiber.Ctx) error {
	draftId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Back(ctx.Context(), currentUserID(ctx), draftId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Moved to previous step", res))
}

func (c *botController) AttachFiles(ctx *fiber.Ctx) error {
	draftId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return apperror.ValidationFailed("multipart form required")
	}

	headers := form.File["files"]
	files := make([]entity.DraftFile, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			return apperror.ValidationFailed("unreadable file: " + header.Filename)
		}
		content, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return apperror.ValidationFailed("unreadable file: " + header.Filename)
		}
		// Client-supplied filenames become storage keys; strip any path.
		name := filepath.Base(header.Filename)
		if name == "." || name == string(filepath.Separator) {
			return apperror.ValidationFailed("invalid file name: " + header.Filename)
		}
		files = append(files, entity.DraftFile{Name: name, Content: content})
	}

	res, err := c.service.AttachFiles(ctx.Context(), currentUserID(ctx), draftId, files)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Files attached", res))
}

func (c *botController) Submit(ctx *fiber.Ctx) error {
	draftId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.Submit(ctx.Context(), currentUserID(ctx), draftId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Bot created", res))
}

func (c *botController) GetAll(ctx *fiber.Ctx) error {
	res, err := c.service.ListBots(ctx.Context(), currentUserID(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get all bots", res))
}

func (c *botController) Show(ctx *fiber.Ctx) error {
	botId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetBot(ctx.Context(), botId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get bot", res))
}

func (c *botController) UpdateTheme(ctx *fiber.Ctx) error {
	botId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	var req dto.UpdateThemeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.UpdateTheme(ctx.Context(), currentUserID(ctx), botId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Theme updated", res))
}
