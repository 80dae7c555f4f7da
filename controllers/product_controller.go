package controllers

import (
	"agrimarket/apperrors"
	"agrimarket/logger"
	"agrimarket/middleware"
	"agrimarket/models"

	"github.com/gofiber/fiber/v2"
)

func (h *Handler) GetProducts(c *fiber.Ctx) error {
	page, err := h.prices.ListProducts(c.UserContext(), c.Queries())
	if err != nil {
		return err
	}
	return c.JSON(page)
}

func (h *Handler) GetProductStats(c *fiber.Ctx) error {
	stats, err := h.prices.ProductStats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(stats)
}

func (h *Handler) GetProductByID(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	product, err := h.prices.Product(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(product)
}

func (h *Handler) UpdateProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var in models.Product
	if err := c.BodyParser(&in); err != nil {
		return apperrors.BadRequest("invalid product body: " + err.Error())
	}

	product, err := h.dashboard.UpdateProduct(c.UserContext(), id, in)
	if err != nil {
		return err
	}
	h.log.WithFields(logger.Fields{"id": id, "admin": c.Locals(middleware.LocalUsername)}).Info("✅ product updated by admin")
	return c.JSON(product)
}

func (h *Handler) DeleteProduct(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.dashboard.DeleteProduct(c.UserContext(), id); err != nil {
		return err
	}
	h.log.WithFields(logger.Fields{"id": id, "admin": c.Locals(middleware.LocalUsername)}).Info("🗑️ product deleted by admin")
	return c.SendStatus(fiber.StatusNoContent)
}
