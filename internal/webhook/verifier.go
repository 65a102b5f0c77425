// Package webhook verifica y decodifica los eventos firmados del proveedor de identidad.
package webhook

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	svix "github.com/svix/svix-webhooks/go"
)

const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"

	secretPrefix = "whsec_"
)

var (
	ErrMissingHeaders   = errors.New("missing required webhook headers")
	ErrInvalidSignature = errors.New("webhook verification failed")
	ErrInvalidSecret    = errors.New("invalid webhook secret")
)

// Headers son los tres headers de firma que acompañan cada entrega.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// HeadersFrom extrae los headers de firma de un request.
func HeadersFrom(h http.Header) Headers {
	return Headers{
		ID:        h.Get(HeaderID),
		Timestamp: h.Get(HeaderTimestamp),
		Signature: h.Get(HeaderSignature),
	}
}

func (h Headers) httpHeader() http.Header {
	out := http.Header{}
	out.Set(HeaderID, h.ID)
	out.Set(HeaderTimestamp, h.Timestamp)
	out.Set(HeaderSignature, h.Signature)
	return out
}

// Verifier valida las firmas svix (HMAC-SHA256, tolerancia de 5 minutos) con el secreto compartido.
type Verifier struct {
	wh *svix.Webhook
}

// NewVerifier acepta el secreto con o sin prefijo "whsec_".
func NewVerifier(secret string) (*Verifier, error) {
	secret = strings.TrimSpace(secret)
	if strings.TrimPrefix(secret, secretPrefix) == "" {
		return nil, ErrInvalidSecret
	}
	wh, err := svix.NewWebhook(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSecret, err)
	}
	return &Verifier{wh: wh}, nil
}

// Verify autentica el payload y lo decodifica a un Event tipado.
func (v *Verifier) Verify(payload []byte, headers Headers) (Event, error) {
	if headers.ID == "" || headers.Timestamp == "" || headers.Signature == "" {
		return nil, ErrMissingHeaders
	}
	if err := v.wh.Verify(payload, headers.httpHeader()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return Decode(payload)
}

// Sign genera los headers de firma para un payload. Se usa en pruebas y herramientas.
func (v *Verifier) Sign(id string, at time.Time, payload []byte) (Headers, error) {
	sig, err := v.wh.Sign(id, at, payload)
	if err != nil {
		return Headers{}, err
	}
	return Headers{
		ID:        id,
		Timestamp: strconv.FormatInt(at.Unix(), 10),
		Signature: sig,
	}, nil
}
