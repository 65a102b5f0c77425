package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"filedrive/internal/domain"
	"filedrive/internal/webhook"
)

const deliveryTTL = 24 * time.Hour

// EventVerifier autentica un payload y lo decodifica.
type EventVerifier interface {
	Verify(payload []byte, headers webhook.Headers) (webhook.Event, error)
}

// WebhookService aplica los eventos del proveedor de identidad sobre el directorio.
type WebhookService struct {
	logger     *zap.Logger
	verifier   EventVerifier
	users      *UserService
	deliveries DeliveryLog
	provider   string
}

func NewWebhookService(logger *zap.Logger, verifier EventVerifier, users *UserService, deliveries DeliveryLog, provider string) *WebhookService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deliveries == nil {
		deliveries = NewMemoryDeliveryLog()
	}
	if provider == "" {
		provider = "clerk"
	}
	return &WebhookService{
		logger:     logger,
		verifier:   verifier,
		users:      users,
		deliveries: deliveries,
		provider:   provider,
	}
}

// Fulfill verifica la entrega y la aplica. Una entrega ya aplicada se reconoce sin
// volver a escribir; una fallida nunca se registra para que el reintento la aplique.
func (s *WebhookService) Fulfill(ctx context.Context, payload []byte, headers webhook.Headers) (webhook.Event, error) {
	if s.verifier == nil || s.users == nil {
		return nil, fmt.Errorf("webhook service not configured")
	}
	evt, err := s.verifier.Verify(payload, headers)
	if err != nil {
		return nil, err
	}

	seen, err := s.deliveries.Seen(ctx, headers.ID)
	if err != nil {
		s.logger.Warn("delivery log lookup failed", zap.Error(err), zap.String("svix_id", headers.ID))
	}
	if seen {
		s.logger.Info("duplicate delivery skipped", zap.String("svix_id", headers.ID), zap.String("type", evt.Type()))
		return evt, nil
	}

	if err := s.Dispatch(ctx, evt); err != nil {
		return evt, err
	}

	if err := s.deliveries.Record(ctx, headers.ID, deliveryTTL); err != nil {
		s.logger.Warn("delivery log record failed", zap.Error(err), zap.String("svix_id", headers.ID))
	}
	return evt, nil
}

// Dispatch ejecuta la escritura correspondiente a cada tipo de evento.
// Los tipos desconocidos no hacen nada.
func (s *WebhookService) Dispatch(ctx context.Context, evt webhook.Event) error {
	if evt == nil {
		return webhook.ErrMalformedEvent
	}
	switch e := evt.(type) {
	case webhook.UserCreated:
		_, err := s.users.CreateUser(ctx, s.tokenIdentifier(e.Data.ID), e.Data.FullName(), e.Data.Image())
		return err
	case webhook.UserUpdated:
		return s.users.UpdateUser(ctx, s.tokenIdentifier(e.Data.ID), e.Data.FullName(), e.Data.Image())
	case webhook.MembershipCreated:
		return s.users.AddOrgIDToUser(ctx,
			s.tokenIdentifier(e.Data.PublicUserData.UserID),
			e.Data.Organization.ID,
			domain.RoleFromProvider(e.Data.Role),
		)
	case webhook.MembershipUpdated:
		return s.users.UpdateRoleInOrgForUser(ctx,
			s.tokenIdentifier(e.Data.PublicUserData.UserID),
			e.Data.Organization.ID,
			domain.RoleFromProvider(e.Data.Role),
		)
	default:
		s.logger.Debug("ignoring webhook event", zap.String("type", evt.Type()))
		return nil
	}
}

func (s *WebhookService) tokenIdentifier(externalID string) string {
	return domain.TokenIdentifier(s.provider, externalID)
}
