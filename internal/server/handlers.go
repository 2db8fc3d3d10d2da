package server

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/diogo/dstchat/internal/conversation"
	"github.com/diogo/dstchat/internal/locale"
	"github.com/diogo/dstchat/internal/models"
)

type messageRequest struct {
	Content string      `json:"content"`
	Role    models.Role `json:"role"`
}

type messageResponse struct {
	Message models.Message  `json:"message"`
	Reply   *models.Message `json:"reply,omitempty"`
	Failed  bool            `json:"failed,omitempty"`
}

type languageRequest struct {
	Language string `json:"language"`
}

func (s *Server) getState(c *fiber.Ctx) error {
	return c.JSON(s.store.Snapshot())
}

// postMessage submits a draft. User drafts answer 202 with the stored
// question unless ?wait=true, in which case the reply is awaited.
func (s *Server) postMessage(c *fiber.Ctx) error {
	var req messageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if req.Role == "" {
		req.Role = models.RoleUser
	}

	task, err := s.store.AddMessage(conversation.Draft{Content: req.Content, Role: req.Role})
	if err != nil {
		return err
	}

	resp := messageResponse{Message: task.Submitted()}
	if req.Role == models.RoleSystem {
		return c.Status(fiber.StatusCreated).JSON(resp)
	}
	if !c.QueryBool("wait") {
		return c.Status(fiber.StatusAccepted).JSON(resp)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.waitTimeout)
	defer cancel()

	reply, err := task.Wait(ctx)
	if err != nil {
		return fiber.NewError(fiber.StatusGatewayTimeout, "timed out waiting for the reply")
	}
	resp.Reply = &reply
	resp.Failed = task.Failed()
	return c.JSON(resp)
}

func (s *Server) postClear(c *fiber.Ctx) error {
	s.store.ClearMessages()
	return c.JSON(s.store.Snapshot())
}

func (s *Server) putLanguage(c *fiber.Ctx) error {
	var req languageRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := s.store.SetLanguage(locale.Language(req.Language)); err != nil {
		return err
	}
	return c.JSON(s.store.Snapshot())
}

func (s *Server) postToggleCategory(c *fiber.Ctx) error {
	name := c.Params("name")
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "category name is required")
	}
	s.store.ToggleCategorySelection(name)
	return c.JSON(s.store.Snapshot())
}
