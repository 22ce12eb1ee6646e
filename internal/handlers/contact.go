package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"stockroom/internal/logger"
	"stockroom/internal/middleware"
	"stockroom/internal/utils/helpers"

	"go.uber.org/zap"
)

type contactMailer interface {
	SendContact(ctx context.Context, fromEmail, subject, message string)
}

type ContactHandler struct {
	mailer contactMailer
}

func NewContactHandler(mailer contactMailer) *ContactHandler {
	return &ContactHandler{mailer: mailer}
}

type contactRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// ContactUs godoc
// @Summary Send a support message from the authenticated user
// @Tags contact
// @Accept json
// @Produce json
// @Param input body contactRequest true "Subject and message"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "Validation error"
// @Router /contact-us [post]
func (h *ContactHandler) ContactUs(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	user, _ := middleware.UserFromContext(r.Context())

	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid JSON in ContactUs", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var missing []string
	if strings.TrimSpace(req.Subject) == "" {
		missing = append(missing, "subject")
	}
	if strings.TrimSpace(req.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		helpers.Error(w, http.StatusBadRequest, "missing required fields: "+strings.Join(missing, ", "))
		return
	}

	h.mailer.SendContact(r.Context(), user.Email, req.Subject, req.Message)

	log.Info("contact message queued", zap.Int64("user_id", user.ID))
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "email sent"})
}
