package controllers

import (
	"errors"
	"time"

	"atlasfreight/backend/config"
	"atlasfreight/backend/middleware"
	"atlasfreight/backend/models"
	"atlasfreight/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

// Register godoc
// @Summary Register a new agent account
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if !utils.IsValidEmail(input.Email) {
		return utils.BadRequest(c, "Invalid email")
	}
	if len(input.Password) < 8 {
		return utils.BadRequest(c, "Password must be at least 8 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hashedPassword),
		Provider:     "local",
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	token, err := ac.createSession(user.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not create session")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userPayload(user),
	})
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid credentials")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid credentials")
	}

	token, err := ac.createSession(user.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not create session")
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  userPayload(user),
	})
}

// Session returns the signed-in user behind the current token.
func (ac *AuthController) Session(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	return c.JSON(fiber.Map{"user": userPayload(user)})
}

// SignOut deletes the session row behind the token, revoking it.
func (ac *AuthController) SignOut(c *fiber.Ctx) error {
	_, sessionID, err := utils.ExtractSessionFromToken(c, ac.Cfg)
	if err != nil {
		return utils.Unauthorized(c, "Unauthorized")
	}

	if err := ac.DB.Where("token_id = ?", sessionID).Delete(&models.UserSession{}).Error; err != nil {
		return utils.InternalServerError(c, "Could not delete session")
	}

	return c.JSON(fiber.Map{"message": "Signed out"})
}

func (ac *AuthController) createSession(userID uint) (string, error) {
	session := models.UserSession{
		UserID:    userID,
		TokenID:   uuid.NewString(),
		ExpiresAt: time.Now().Add(utils.SessionTTL),
	}
	if err := ac.DB.Create(&session).Error; err != nil {
		return "", err
	}
	return utils.GenerateSessionToken(userID, session.TokenID, ac.Cfg)
}

func userPayload(user models.User) fiber.Map {
	return fiber.Map{
		"id":       user.ID,
		"name":     user.Name,
		"email":    user.Email,
		"role":     user.Role,
		"provider": user.Provider,
	}
}
