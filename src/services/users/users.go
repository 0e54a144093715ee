package users

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"staffclock/src/models"
	"staffclock/src/repository"
)

type Repository interface {
	FindByUID(ctx context.Context, uid string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	SetRole(ctx context.Context, uid, role string) error
}

type Service struct {
	repo   Repository
	admins map[string]struct{}
}

func NewService(repo Repository, adminEmails []string) *Service {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			admins[e] = struct{}{}
		}
	}
	return &Service{repo: repo, admins: admins}
}

// RoleFor role สำหรับผู้ใช้ใหม่
func (s *Service) RoleFor(email string) string {
	if _, ok := s.admins[strings.ToLower(strings.TrimSpace(email))]; ok {
		return models.RoleAdmin
	}
	return models.RoleStaff
}

// EnsureUser สร้างผู้ใช้ตอน login ครั้งแรก; role เดิมไม่ถูกเปลี่ยน ยกเว้นว่าง
func (s *Service) EnsureUser(ctx context.Context, id models.Identity) (*models.User, error) {
	user, err := s.repo.FindByUID(ctx, id.UID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		user = &models.User{
			UID:       id.UID,
			Email:     id.Email,
			Name:      id.DisplayName,
			PhotoURL:  id.PhotoURL,
			Role:      s.RoleFor(id.Email),
			CreatedAt: time.Now(),
		}
		if err := s.repo.Create(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		log.Printf("✅ New user %s (%s) role=%s", user.Email, user.UID, user.Role)
		return user, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if user.Role == "" {
		user.Role = s.RoleFor(user.Email)
		if err := s.repo.SetRole(ctx, user.UID, user.Role); err != nil {
			return nil, fmt.Errorf("failed to set role: %w", err)
		}
	}
	return user, nil
}
