package controller

import (
	"chatbot-creator-be/internal/dto"
	"chatbot-creator-be/internal/pkg/apperror"
	"chatbot-creator-be/internal/pkg/serverutils"
	"chatbot-creator-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	LoadBot(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	SwitchSession(ctx *fiber.Ctx) error
	SendTurn(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("/bots/:id", c.LoadBot)
	h.Get("/sessions", c.ListSessions)
	h.Get("/sessions/:id", c.SwitchSession)
	h.Post("/send", c.SendTurn)
}

func (c *chatController) LoadBot(ctx *fiber.Ctx) error {
	botId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.LoadBot(ctx.Context(), botId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success load bot", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	botId, err := uuid.Parse(ctx.Query("bot_id"))
	if err != nil {
		return apperror.ValidationFailed("bot_id query parameter is required")
	}

	res, err := c.service.ListSessions(ctx.Context(), currentUserID(ctx), botId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get sessions", res))
}

func (c *chatController) SwitchSession(ctx *fiber.Ctx) error {
	sessionId, err := parseIDParam(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.SwitchSession(ctx.Context(), currentUserID(ctx), sessionId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success switch session", res))
}

func (c *chatController) SendTurn(ctx *fiber.Ctx) error {
	var req dto.SendTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendTurn(ctx.Context(), currentUserID(ctx), &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Turn completed", res))
}
