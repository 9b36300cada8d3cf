package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"log"

	"atlasfreight/backend/config"
	"atlasfreight/backend/models"
	"atlasfreight/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const oauthState = "portal"

type OAuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Logger *log.Logger
	auth   *AuthController
	oauth  *oauth2.Config
}

func NewOAuthController(db *gorm.DB, cfg *config.Config, logger *log.Logger) *OAuthController {
	return &OAuthController{
		DB:     db,
		Cfg:    cfg,
		Logger: logger,
		auth:   NewAuthController(db, cfg),
		oauth: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
	}
}

// Login redirects the browser to the provider's consent page.
func (oc *OAuthController) Login(c *fiber.Ctx) error {
	return c.Redirect(oc.oauth.AuthCodeURL(oauthState), fiber.StatusTemporaryRedirect)
}

// Callback exchanges the authorization code for provider tokens, upserts the
// matching user and answers with a portal session token.
func (oc *OAuthController) Callback(c *fiber.Ctx) error {
	if c.Query("state") != oauthState {
		return utils.BadRequest(c, "Invalid OAuth state")
	}

	code := c.Query("code")
	if code == "" {
		return utils.BadRequest(c, "Missing authorization code")
	}

	token, err := oc.oauth.Exchange(c.Context(), code)
	if err != nil {
		oc.Logger.Printf("oauth code exchange failed: %v", err)
		return utils.Unauthorized(c, "Could not exchange authorization code")
	}

	email, name, err := oc.fetchUserInfo(c, token)
	if err != nil {
		oc.Logger.Printf("oauth userinfo fetch failed: %v", err)
		return utils.Unauthorized(c, "Could not fetch user info")
	}

	var user models.User
	if err := oc.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.InternalServerError(c, "Could not query database")
		}
		user = models.User{
			Name:     name,
			Email:    email,
			Provider: "oauth",
		}
		if err := oc.DB.Create(&user).Error; err != nil {
			return utils.InternalServerError(c, "Could not create user")
		}
	}

	sessionToken, err := oc.auth.createSession(user.ID)
	if err != nil {
		return utils.InternalServerError(c, "Could not create session")
	}

	return c.JSON(fiber.Map{
		"token": sessionToken,
		"user":  userPayload(user),
	})
}

func (oc *OAuthController) fetchUserInfo(c *fiber.Ctx, token *oauth2.Token) (string, string, error) {
	client := oc.oauth.Client(c.Context(), token)
	resp, err := client.Get(oc.Cfg.OAuthUserInfoURL)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", err
	}

	var info struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return "", "", err
	}
	if info.Email == "" {
		return "", "", errors.New("provider returned no email")
	}
	return info.Email, info.Name, nil
}
