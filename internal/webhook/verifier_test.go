package webhook

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
	"time"
)

var testSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("test-signing-secret"))

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(testSecret)
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	return v
}

func mustSign(t *testing.T, v *Verifier, id string, at time.Time, payload []byte) Headers {
	t.Helper()
	h, err := v.Sign(id, at, payload)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return h
}

func TestVerifier_AcceptsValidSignature(t *testing.T) {
	v := newTestVerifier(t)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1","first_name":"Ada","last_name":"Lovelace"}}`)

	evt, err := v.Verify(payload, mustSign(t, v, "msg_1", time.Now(), payload))
	if err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
	created, ok := evt.(UserCreated)
	if !ok {
		t.Fatalf("expected UserCreated, got %T", evt)
	}
	if created.Data.ID != "user_1" || created.Data.FullName() != "Ada Lovelace" {
		t.Fatalf("unexpected data %+v", created.Data)
	}
}

func TestVerifier_AcceptsAnyMatchingSignatureInList(t *testing.T) {
	v := newTestVerifier(t)
	payload := []byte(`{"type":"session.created","data":{}}`)

	h := mustSign(t, v, "msg_1", time.Now(), payload)
	h.Signature = "v1,bm90LWEtc2lnbmF0dXJl " + h.Signature

	evt, err := v.Verify(payload, h)
	if err != nil {
		t.Fatalf("expected valid signature, got %v", err)
	}
	if evt.Type() != "session.created" {
		t.Fatalf("expected unknown event passthrough, got %s", evt.Type())
	}
}

func TestVerifier_RejectsTamperedPayload(t *testing.T) {
	v := newTestVerifier(t)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	h := mustSign(t, v, "msg_1", time.Now(), payload)

	_, err := v.Verify([]byte(`{"type":"user.created","data":{"id":"user_2"}}`), h)
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifier_RejectsWrongSecret(t *testing.T) {
	v := newTestVerifier(t)
	other, err := NewVerifier(base64.StdEncoding.EncodeToString([]byte("other")))
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	_, err = v.Verify(payload, mustSign(t, other, "msg_1", time.Now(), payload))
	if !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestVerifier_MissingHeaders(t *testing.T) {
	v := newTestVerifier(t)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	full := mustSign(t, v, "msg_1", time.Now(), payload)

	cases := map[string]Headers{
		"id":        {Timestamp: full.Timestamp, Signature: full.Signature},
		"timestamp": {ID: full.ID, Signature: full.Signature},
		"signature": {ID: full.ID, Timestamp: full.Timestamp},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(payload, h); !errors.Is(err, ErrMissingHeaders) {
				t.Fatalf("expected ErrMissingHeaders, got %v", err)
			}
		})
	}
}

func TestVerifier_RejectsStaleOrFutureTimestamp(t *testing.T) {
	v := newTestVerifier(t)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	for _, at := range []time.Time{time.Now().Add(-10 * time.Minute), time.Now().Add(10 * time.Minute)} {
		if _, err := v.Verify(payload, mustSign(t, v, "msg_1", at, payload)); !errors.Is(err, ErrInvalidSignature) {
			t.Fatalf("expected ErrInvalidSignature for %v, got %v", at, err)
		}
	}

	h := mustSign(t, v, "msg_1", time.Now(), payload)
	h.Timestamp = "not-a-number"
	if _, err := v.Verify(payload, h); !errors.Is(err, ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for bad timestamp, got %v", err)
	}
}

func TestNewVerifier_InvalidSecret(t *testing.T) {
	for _, secret := range []string{"", "whsec_", "whsec_***"} {
		if _, err := NewVerifier(secret); !errors.Is(err, ErrInvalidSecret) {
			t.Fatalf("expected ErrInvalidSecret for %q, got %v", secret, err)
		}
	}
}

func TestHeadersFrom(t *testing.T) {
	h := http.Header{}
	h.Set("Svix-Id", "msg_1")
	h.Set("Svix-Timestamp", "123")
	h.Set("Svix-Signature", "v1,abc")

	got := HeadersFrom(h)
	if got.ID != "msg_1" || got.Timestamp != "123" || got.Signature != "v1,abc" {
		t.Fatalf("unexpected headers %+v", got)
	}
}
