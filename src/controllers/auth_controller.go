package controllers

import (
	"errors"
	"fmt"
	"log"
	"net/url"

	"staffclock/src/services/auth"
	"staffclock/src/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	google      *auth.GoogleService
	tokens      *utils.TokenStore
	frontendURL string
}

func NewAuthController(google *auth.GoogleService, tokens *utils.TokenStore, frontendURL string) *AuthController {
	return &AuthController{google: google, tokens: tokens, frontendURL: frontendURL}
}

func (ac *AuthController) redirect(c *fiber.Ctx, key, value string) error {
	return c.Redirect(fmt.Sprintf("%s/auth/callback?%s=%s", ac.frontendURL, key, url.QueryEscape(value)))
}

// GoogleLogin godoc
// @Summary      Google OAuth URL
// @Tags         auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /auth/google [get]
func (ac *AuthController) GoogleLogin(c *fiber.Ctx) error {
	state := utils.GenerateRandomString(32)
	if err := ac.tokens.SaveOAuthState(c.UserContext(), state); err != nil {
		log.Println("⚠️ Failed to store oauth state:", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to start login"})
	}
	return c.JSON(fiber.Map{"url": ac.google.AuthURL(state)})
}

// GoogleCallback godoc
// @Summary      Google OAuth callback
// @Description  Exchanges the code and redirects to the frontend with a JWT
// @Tags         auth
// @Param        code  query string true "authorization code"
// @Param        state query string true "state"
// @Success      302
// @Router       /auth/google/callback [get]
func (ac *AuthController) GoogleCallback(c *fiber.Ctx) error {
	if errParam := c.Query("error"); errParam != "" {
		log.Println("❌ Google OAuth error:", errParam)
		return ac.redirect(c, "error", errParam)
	}

	code := c.Query("code")
	if code == "" {
		return ac.redirect(c, "error", "missing_code")
	}

	ok, err := ac.tokens.ConsumeOAuthState(c.UserContext(), c.Query("state"))
	if err != nil || !ok {
		log.Println("❌ Invalid oauth state:", err)
		return ac.redirect(c, "error", "invalid_state")
	}

	_, token, err := ac.google.ProcessGoogleLogin(c.UserContext(), code)
	if err != nil {
		log.Println("❌ Google login failed:", err)
		if errors.Is(err, auth.ErrUnverifiedEmail) {
			return ac.redirect(c, "error", "unverified_email")
		}
		return ac.redirect(c, "error", "login_failed")
	}
	return ac.redirect(c, "token", token)
}

// Me godoc
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Router       /auth/me [get]
func (ac *AuthController) Me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"userId": c.Locals("userId"),
		"email":  c.Locals("email"),
		"name":   c.Locals("name"),
		"role":   c.Locals("role"),
	})
}

// Logout godoc
// @Summary      Logout
// @Description  Revoke the current token until it expires
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]interface{}
// @Router       /auth/logout [post]
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	token, _ := c.Locals("token").(string)
	claims, _ := c.Locals("claims").(*utils.JWTClaims)
	if token != "" && claims != nil {
		if err := ac.tokens.BlacklistToken(c.UserContext(), token, claims.RemainingTTL()); err != nil {
			log.Println("⚠️ Failed to blacklist token:", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to logout"})
		}
	}
	return c.JSON(fiber.Map{
		"message": "Logout successful",
		"success": true,
	})
}
