package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"staffclock/src/models"
	"staffclock/src/utils"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const DefaultUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

var ErrUnverifiedEmail = errors.New("google account email is not verified")

// GoogleUserInfo represents the user information from Google
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (u GoogleUserInfo) Identity() models.Identity {
	name := u.Name
	if name == "" {
		name = u.Email
	}
	return models.Identity{UID: u.ID, Email: u.Email, DisplayName: name, PhotoURL: u.Picture}
}

// UserEnsurer สร้าง/โหลดผู้ใช้จาก identity
type UserEnsurer interface {
	EnsureUser(ctx context.Context, id models.Identity) (*models.User, error)
}

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	JWTSecret    string
	// Endpoint / UserInfoURL ปล่อยว่าง = Google จริง
	Endpoint    oauth2.Endpoint
	UserInfoURL string
}

type GoogleService struct {
	oauth       *oauth2.Config
	userInfoURL string
	jwtSecret   string
	users       UserEnsurer
}

func NewGoogleService(cfg Config, users UserEnsurer) *GoogleService {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	if cfg.UserInfoURL == "" {
		cfg.UserInfoURL = DefaultUserInfoURL
	}
	return &GoogleService{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: endpoint,
		},
		userInfoURL: cfg.UserInfoURL,
		jwtSecret:   cfg.JWTSecret,
		users:       users,
	}
}

// AuthURL URL หน้า consent ของ Google
func (s *GoogleService) AuthURL(state string) string {
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// GetGoogleUserInfo retrieves user information from Google using the access token
func (s *GoogleService) GetGoogleUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	resp, err := s.oauth.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to get user info: status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var userInfo GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user info: %w", err)
	}
	return &userInfo, nil
}

// ProcessGoogleLogin แลก code เป็น token → ดึง userinfo → ensure user → ออก JWT
func (s *GoogleService) ProcessGoogleLogin(ctx context.Context, code string) (*models.User, string, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		log.Println("❌ Token exchange failed:", err)
		return nil, "", fmt.Errorf("failed to exchange code for token: %w", err)
	}

	info, err := s.GetGoogleUserInfo(ctx, token)
	if err != nil {
		log.Println("❌ Failed to get user info:", err)
		return nil, "", err
	}
	if !info.VerifiedEmail {
		return nil, "", ErrUnverifiedEmail
	}

	user, err := s.users.EnsureUser(ctx, info.Identity())
	if err != nil {
		return nil, "", err
	}

	jwtToken, err := utils.GenerateJWT(s.jwtSecret, user.UID, user.Email, user.Name, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	log.Printf("✅ User authenticated: %s (%s)", user.Email, user.Role)
	return user, jwtToken, nil
}
