package controllers

import (
	"strings"

	"atlasfreight/backend/models"
	"atlasfreight/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const maxMessageLength = 5000

// ContactController backs the public contact-form endpoint. It is mounted
// without auth and kept self-contained (own CORS headers) so it can be split
// out and deployed on its own.
type ContactController struct {
	DB *gorm.DB
}

func NewContactController(db *gorm.DB) *ContactController {
	return &ContactController{DB: db}
}

func (cc *ContactController) Submit(c *fiber.Ctx) error {
	setPermissiveCORS(c)
	if c.Method() == fiber.MethodOptions {
		return c.SendStatus(fiber.StatusNoContent)
	}

	var input struct {
		Name      string `json:"name"`
		Phone     string `json:"phone"`
		Email     string `json:"email"`
		Subject   string `json:"subject"`
		Message   string `json:"message"`
		PageURL   string `json:"page_url"`
		UserAgent string `json:"user_agent"`
	}
	if err := c.BodyParser(&input); err != nil {
		return contactError(c, "Invalid request body")
	}

	input.Name = strings.TrimSpace(input.Name)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Email = strings.TrimSpace(input.Email)
	input.Subject = strings.TrimSpace(input.Subject)
	input.Message = strings.TrimSpace(input.Message)

	if input.Name == "" {
		return contactError(c, "Name is required")
	}
	if utils.DigitCount(input.Phone) < 6 {
		return contactError(c, "Phone is required")
	}
	if !utils.IsValidEmail(input.Email) {
		return contactError(c, "Invalid email")
	}
	if input.Subject == "" {
		return contactError(c, "Subject is required")
	}
	if input.Message == "" {
		return contactError(c, "Message is required")
	}
	if len(input.Message) > maxMessageLength {
		return contactError(c, "Message is too long")
	}

	userAgent := input.UserAgent
	if userAgent == "" {
		userAgent = c.Get("User-Agent")
	}

	submission := models.ContactSubmission{
		Name:      input.Name,
		Phone:     input.Phone,
		Email:     input.Email,
		Subject:   input.Subject,
		Message:   input.Message,
		PageURL:   input.PageURL,
		UserAgent: userAgent,
	}
	if err := cc.DB.Create(&submission).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"ok":    false,
			"error": "Could not save submission",
		})
	}

	return c.JSON(fiber.Map{"ok": true})
}

func contactError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"ok":    false,
		"error": message,
	})
}

func setPermissiveCORS(c *fiber.Ctx) {
	c.Set("Access-Control-Allow-Origin", "*")
	c.Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	c.Set("Access-Control-Allow-Headers", "Content-Type")
}
