package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const (
	TypeUserCreated       = "user.created"
	TypeUserUpdated       = "user.updated"
	TypeMembershipCreated = "organizationMembership.created"
	TypeMembershipUpdated = "organizationMembership.updated"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

// Event es la union de eventos soportados. Cada variante trae sus campos tipados.
type Event interface {
	Type() string
	isEvent()
}

// UserData son los campos de los eventos user.*.
type UserData struct {
	ID        string  `json:"id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	ImageURL  *string `json:"image_url"`
}

// FullName concatena nombre y apellido; vacio si faltan ambos.
func (d UserData) FullName() string {
	first := strings.TrimSpace(deref(d.FirstName))
	last := strings.TrimSpace(deref(d.LastName))
	return strings.TrimSpace(first + " " + last)
}

func (d UserData) Image() string {
	return deref(d.ImageURL)
}

// MembershipData son los campos de los eventos organizationMembership.*.
type MembershipData struct {
	Role         string `json:"role"`
	Organization struct {
		ID string `json:"id"`
	} `json:"organization"`
	PublicUserData struct {
		UserID string `json:"user_id"`
	} `json:"public_user_data"`
}

type UserCreated struct{ Data UserData }
type UserUpdated struct{ Data UserData }
type MembershipCreated struct{ Data MembershipData }
type MembershipUpdated struct{ Data MembershipData }

// UnknownEvent es un evento verificado de un tipo que no se procesa.
type UnknownEvent struct{ Kind string }

func (UserCreated) Type() string       { return TypeUserCreated }
func (UserUpdated) Type() string       { return TypeUserUpdated }
func (MembershipCreated) Type() string { return TypeMembershipCreated }
func (MembershipUpdated) Type() string { return TypeMembershipUpdated }
func (e UnknownEvent) Type() string    { return e.Kind }

func (UserCreated) isEvent()       {}
func (UserUpdated) isEvent()       {}
func (MembershipCreated) isEvent() {}
func (MembershipUpdated) isEvent() {}
func (UnknownEvent) isEvent()      {}

type envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Decode interpreta el sobre {type, data} una sola vez y valida los campos requeridos.
func Decode(payload []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if env.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedEvent)
	}

	switch env.Type {
	case TypeUserCreated, TypeUserUpdated:
		var data UserData
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.ID == "" {
			return nil, fmt.Errorf("%w: %s without data.id", ErrMalformedEvent, env.Type)
		}
		if env.Type == TypeUserCreated {
			return UserCreated{Data: data}, nil
		}
		return UserUpdated{Data: data}, nil
	case TypeMembershipCreated, TypeMembershipUpdated:
		var data MembershipData
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		if data.PublicUserData.UserID == "" || data.Organization.ID == "" {
			return nil, fmt.Errorf("%w: %s without user or organization id", ErrMalformedEvent, env.Type)
		}
		if env.Type == TypeMembershipCreated {
			return MembershipCreated{Data: data}, nil
		}
		return MembershipUpdated{Data: data}, nil
	default:
		return UnknownEvent{Kind: env.Type}, nil
	}
}

func decodeData(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
