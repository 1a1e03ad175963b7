package handlers

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"resolveAPI/internal/pkg/logger"
	"resolveAPI/internal/types/clerk"
	"resolveAPI/services"
)

// webhookTolerance bounds the age of a signed webhook delivery.
const webhookTolerance = 5 * time.Minute

var errInvalidSignature = errors.New("invalid webhook signature")

type WebhookHandler struct {
	profileService *services.ProfileService
	secret         []byte
	now            func() time.Time
	log            *logger.Logger
}

// NewWebhookHandler takes the Clerk (Svix) signing secret, with or without
// its "whsec_" prefix. An empty secret disables verification.
func NewWebhookHandler(profileService *services.ProfileService, webhookSecret string, log *logger.Logger) (*WebhookHandler, error) {
	h := &WebhookHandler{
		profileService: profileService,
		now:            time.Now,
		log:            log.With("handler", "WebhookHandler"),
	}
	if webhookSecret != "" {
		key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(webhookSecret, "whsec_"))
		if err != nil {
			return nil, fmt.Errorf("invalid CLERK_WEBHOOK_SECRET: %w", err)
		}
		h.secret = key
	} else {
		h.log.Warn("CLERK_WEBHOOK_SECRET not set, webhook signatures will not be verified")
	}
	return h, nil
}

// POST /webhooks/clerk
func (h *WebhookHandler) HandleClerkWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		h.log.Warn("error reading webhook body", "error", err)
		respondWithError(w, http.StatusBadRequest, "Error reading body")
		return
	}

	if err := h.verifySignature(r.Header, body); err != nil {
		h.log.Warn("rejected webhook", "error", err)
		respondWithError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}

	var event clerk.ClerkWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		respondWithError(w, http.StatusBadRequest, "Error parsing webhook")
		return
	}

	h.log.Info("received webhook event", "type", event.Type)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	switch event.Type {
	case "user.created", "user.updated":
		if err := h.syncUser(ctx, event.Data); err != nil {
			h.log.Error("error handling webhook", "type", event.Type, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Error processing webhook")
			return
		}
	default:
		h.log.Debug("unhandled webhook event type", "type", event.Type)
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *WebhookHandler) syncUser(ctx context.Context, data json.RawMessage) error {
	var userData clerk.ClerkUserData
	if err := json.Unmarshal(data, &userData); err != nil {
		return fmt.Errorf("failed to unmarshal user data: %w", err)
	}

	p, err := h.profileService.SyncFromClerk(ctx, &userData)
	if err != nil {
		return fmt.Errorf("failed to sync profile: %w", err)
	}

	h.log.Info("synced profile from clerk", "user_id", p.ID)
	return nil
}

// verifySignature checks a Svix signature: base64 HMAC-SHA256 over
// "{svix-id}.{svix-timestamp}.{body}". The header may carry several
// space-separated "v1,<sig>" entries; any match is accepted.
func (h *WebhookHandler) verifySignature(header http.Header, body []byte) error {
	if h.secret == nil {
		return nil
	}

	svixID := header.Get("svix-id")
	svixTimestamp := header.Get("svix-timestamp")
	svixSignature := header.Get("svix-signature")
	if svixID == "" || svixTimestamp == "" || svixSignature == "" {
		return fmt.Errorf("%w: missing svix headers", errInvalidSignature)
	}

	ts, err := strconv.ParseInt(svixTimestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", errInvalidSignature)
	}
	sent := time.Unix(ts, 0)
	if age := h.now().Sub(sent); age > webhookTolerance || age < -webhookTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", errInvalidSignature)
	}

	expected := signWebhook(h.secret, svixID, svixTimestamp, body)
	for _, candidate := range strings.Fields(svixSignature) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return errInvalidSignature
}

func signWebhook(key []byte, id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + timestamp + "."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
