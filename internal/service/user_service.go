package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"filedrive/internal/domain"
	"filedrive/internal/repository"
)

// UserService es el directorio de usuarios: identidad externa -> perfil local y membresias.
type UserService struct {
	logger *zap.Logger
	users  repository.UserRepository
}

func NewUserService(logger *zap.Logger, users repository.UserRepository) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		logger: logger,
		users:  users,
	}
}

var errUserServiceNotConfigured = errors.New("user service not configured")

// GetUser busca por token identifier. Falla con domain.ErrUserNotFound si no existe.
func (s *UserService) GetUser(ctx context.Context, tokenIdentifier string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUserServiceNotConfigured
	}
	user, err := s.users.GetByTokenIdentifier(ctx, tokenIdentifier)
	if err != nil {
		return domain.User{}, fmt.Errorf("get user %s: %w", tokenIdentifier, err)
	}
	return user, nil
}

// CreateUser inserta un usuario nuevo sin membresias.
func (s *UserService) CreateUser(ctx context.Context, tokenIdentifier, name, image string) (domain.User, error) {
	if s.users == nil {
		return domain.User{}, errUserServiceNotConfigured
	}
	if strings.TrimSpace(tokenIdentifier) == "" {
		return domain.User{}, errors.New("token identifier is required")
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:              uuid.NewString(),
		TokenIdentifier: tokenIdentifier,
		Name:            name,
		Image:           image,
		OrgIDs:          []domain.OrgMembership{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}

	s.logger.Info("user created", zap.String("token_identifier", tokenIdentifier))
	return user, nil
}

// UpdateUser reemplaza nombre e imagen; no crea el usuario si falta.
func (s *UserService) UpdateUser(ctx context.Context, tokenIdentifier, name, image string) error {
	user, err := s.GetUser(ctx, tokenIdentifier)
	if err != nil {
		return err
	}
	return s.users.UpdateProfile(ctx, user.ID, name, image)
}

// AddOrgIDToUser agrega la membresia solo si la organizacion no estaba.
func (s *UserService) AddOrgIDToUser(ctx context.Context, tokenIdentifier, orgID string, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}
	return s.modifyOrgIDs(ctx, tokenIdentifier, func(user domain.User) ([]domain.OrgMembership, bool, error) {
		orgs, changed := user.WithOrg(orgID, role)
		if !changed {
			s.logger.Debug("membership already present",
				zap.String("token_identifier", tokenIdentifier),
				zap.String("org_id", orgID),
			)
		}
		return orgs, changed, nil
	})
}

// UpdateRoleInOrgForUser cambia el rol de una membresia existente; si no existe no hace nada.
func (s *UserService) UpdateRoleInOrgForUser(ctx context.Context, tokenIdentifier, orgID string, role domain.Role) error {
	if !role.Valid() {
		return domain.ErrInvalidRole
	}
	return s.modifyOrgIDs(ctx, tokenIdentifier, func(user domain.User) ([]domain.OrgMembership, bool, error) {
		orgs, changed := user.WithRole(orgID, role)
		return orgs, changed, nil
	})
}

// SyncUserOrgs reemplaza la lista completa de membresias (camino legacy).
func (s *UserService) SyncUserOrgs(ctx context.Context, tokenIdentifier string, orgIDs []domain.OrgMembership) error {
	seen := make(map[string]struct{}, len(orgIDs))
	for _, m := range orgIDs {
		if !m.Role.Valid() {
			return fmt.Errorf("org %s: %w", m.OrgID, domain.ErrInvalidRole)
		}
		if _, dup := seen[m.OrgID]; dup {
			return fmt.Errorf("org %s: %w", m.OrgID, domain.ErrDuplicateOrg)
		}
		seen[m.OrgID] = struct{}{}
	}
	if orgIDs == nil {
		orgIDs = []domain.OrgMembership{}
	}
	return s.modifyOrgIDs(ctx, tokenIdentifier, func(domain.User) ([]domain.OrgMembership, bool, error) {
		return orgIDs, true, nil
	})
}

func (s *UserService) modifyOrgIDs(ctx context.Context, tokenIdentifier string, fn repository.OrgIDsMutation) error {
	if s.users == nil {
		return errUserServiceNotConfigured
	}
	if err := s.users.ModifyOrgIDs(ctx, tokenIdentifier, fn); err != nil {
		return fmt.Errorf("modify org ids %s: %w", tokenIdentifier, err)
	}
	return nil
}

// GetMe resuelve al caller autenticado. Sin identidad devuelve nil.
// Un caller autenticado sin registro en el directorio es un error: el webhook
// user.created puede no haber llegado todavia.
func (s *UserService) GetMe(ctx context.Context, identity *domain.Identity) (*domain.User, error) {
	if identity == nil {
		return nil, nil
	}
	user, err := s.GetUser(ctx, identity.TokenIdentifier())
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserProfile busca por id primario y devuelve nil si no existe.
// TODO: definir control de acceso; hoy cualquier caller puede leer cualquier perfil.
func (s *UserService) GetUserProfile(ctx context.Context, userID string) (*domain.User, error) {
	if s.users == nil {
		return nil, errUserServiceNotConfigured
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
