package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"stockroom/internal/config"
	"stockroom/internal/logger"
	"stockroom/internal/middleware"
	"stockroom/internal/models"
	"stockroom/internal/services"
	"stockroom/internal/utils"
	"stockroom/internal/utils/helpers"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type UserHandler struct {
	authService     *services.AuthService
	passwordService *services.PasswordService
	jwtSecret       string
	sessionTTL      time.Duration
	secureCookie    bool
}

func NewUserHandler(authService *services.AuthService, passwordService *services.PasswordService, cfg *config.Config) *UserHandler {
	ttl, err := time.ParseDuration(cfg.SessionTTL)
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &UserHandler{
		authService:     authService,
		passwordService: passwordService,
		jwtSecret:       cfg.JWTSecret,
		sessionTTL:      ttl,
		secureCookie:    cfg.Env == "prod",
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Password string `json:"password"`
}

// setSessionCookie issues the HTTP-only token cookie the auth gate reads.
// SameSite=None because the web client lives on another origin.
func (h *UserHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.sessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   h.secureCookie,
	})
}

func (h *UserHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
		Secure:   h.secureCookie,
	})
}

// Register godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param input body registerRequest true "Registration data"
// @Success 201 {object} models.User
// @Failure 400 {string} string "Validation error"
// @Router /users/register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid JSON in Register", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.authService.RegisterUser(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	token, err := utils.GenerateToken(h.jwtSecret, user.ID, h.sessionTTL)
	if err != nil {
		log.Error("token generation failed", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "could not issue session")
		return
	}

	h.setSessionCookie(w, token)
	helpers.JSON(w, http.StatusCreated, map[string]interface{}{"user": user, "token": token})
}

// Login godoc
// @Summary Log in with email and password
// @Tags users
// @Accept json
// @Produce json
// @Param input body loginRequest true "Credentials"
// @Success 200 {object} models.User
// @Failure 400 {string} string "Incorrect email or password"
// @Router /users/login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid JSON in Login", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.authService.LoginUser(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}

	token, err := utils.GenerateToken(h.jwtSecret, user.ID, h.sessionTTL)
	if err != nil {
		log.Error("token generation failed", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "could not issue session")
		return
	}

	h.setSessionCookie(w, token)
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"user": user, "token": token})
}

// Logout godoc
// @Summary Log out (clears the session cookie)
// @Tags users
// @Produce json
// @Success 200 {string} string "Logout successful"
// @Router /users/logout [get]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// No server-side state to drop: sessions are purely cryptographic.
	h.clearSessionCookie(w)
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// LoginStatus godoc
// @Summary Report whether the caller holds a valid session
// @Tags users
// @Produce json
// @Success 200 {object} map[string]bool
// @Router /users/loggedin [get]
func (h *UserHandler) LoginStatus(w http.ResponseWriter, r *http.Request) {
	loggedin := false
	if cookie, err := r.Cookie(middleware.CookieName); err == nil && cookie.Value != "" {
		if _, err := utils.ParseToken(h.jwtSecret, cookie.Value); err == nil {
			loggedin = true
		}
	}
	helpers.JSON(w, http.StatusOK, map[string]bool{"loggedin": loggedin})
}

// GetUsers godoc
// @Summary List all users
// @Tags users
// @Produce json
// @Success 200 {array} models.User
// @Failure 401 {string} string "Not authorized"
// @Router /users [get]
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	users, err := h.authService.GetAllUsers(r.Context())
	if err != nil {
		log.Error("list users failed", zap.Error(err))
		helpers.Error(w, http.StatusInternalServerError, "could not list users")
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"users": users})
}

// GetUser godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {string} string "Not authorized"
// @Router /users/getuser [get]
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// UpdateUser godoc
// @Summary Partially update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Param input body models.UpdateUserRequest true "Fields to change"
// @Success 200 {object} models.User
// @Failure 400 {string} string "Validation error"
// @Router /users/updateuser [patch]
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	user, _ := middleware.UserFromContext(r.Context())

	var input models.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		log.Warn("invalid JSON in UpdateUser", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	updated, err := h.authService.UpdateProfile(r.Context(), user.ID, &input)
	if err != nil {
		writeServiceError(w, log, err)
		return
	}
	helpers.JSON(w, http.StatusOK, map[string]interface{}{"user": updated})
}

// ChangePassword godoc
// @Summary Change password using the old one
// @Tags users
// @Accept json
// @Produce json
// @Param input body changePasswordRequest true "Old and new password"
// @Success 200 {string} string "Password changed"
// @Failure 400 {string} string "Validation error"
// @Router /users/changepassword [patch]
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	user, _ := middleware.UserFromContext(r.Context())

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid JSON in ChangePassword", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.authService.ChangePassword(r.Context(), user, req.OldPassword, req.NewPassword); err != nil {
		writeServiceError(w, log, err)
		return
	}

	log.Info("password changed", zap.Int64("user_id", user.ID))
	helpers.JSON(w, http.StatusOK, map[string]string{"message": "password changed"})
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Description Always answers 200 so account existence cannot be probed.
// @Tags users
// @Accept json
// @Produce json
// @Param input body forgotPasswordRequest true "Account email"
// @Success 200 {object} map[string]string
// @Router /users/forgotpassword [post]
func (h *UserHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())

	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		log.Warn("invalid payload in ForgotPassword")
		helpers.Error(w, http.StatusBadRequest, "email is required")
		return
	}

	if err := h.passwordService.RequestReset(r.Context(), req.Email); err != nil {
		log.Error("reset request failed", zap.String("email_masked", helpers.MaskEmail(req.Email)), zap.Error(err))
	}

	helpers.JSON(w, http.StatusOK, map[string]string{
		"message": "reset email requested, check your inbox",
	})
}

// ResetPassword godoc
// @Summary Set a new password using a reset token
// @Tags users
// @Accept json
// @Produce json
// @Param resetToken path string true "Raw reset token from the email link"
// @Param input body resetPasswordRequest true "New password"
// @Success 200 {object} map[string]string
// @Failure 404 {string} string "Invalid or expired reset token"
// @Router /users/resetpassword/{resetToken} [patch]
func (h *UserHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	log := logger.WithCtx(r.Context())
	rawToken := mux.Vars(r)["resetToken"]

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("invalid JSON in ResetPassword", zap.Error(err))
		helpers.Error(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := h.passwordService.ResetPassword(r.Context(), rawToken, req.Password); err != nil {
		writeServiceError(w, log, err)
		return
	}

	helpers.JSON(w, http.StatusOK, map[string]string{"message": "password updated successfully"})
}
