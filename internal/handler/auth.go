package handler

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/publicvoice/internal/middleware"
	"github.com/iliyamo/publicvoice/internal/service"
)

// defaultTimeout bounds the store work of a single request.
const defaultTimeout = 5 * time.Second

// AuthHandler bundles dependencies for the /api/auth endpoints.
type AuthHandler struct {
	Auth           *service.AuthService
	Log            *zap.Logger
	Timeout        time.Duration
	MaxUploadBytes int64
}

func NewAuthHandler(auth *service.AuthService, log *zap.Logger, maxUpload int64) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthHandler{Auth: auth, Log: log, Timeout: defaultTimeout, MaxUploadBytes: maxUpload}
}

func (h *AuthHandler) ctx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), h.Timeout)
}

// ----- DTOs -----

type registerReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
type loginResp struct {
	AccessToken      string   `json:"access_token"`
	TokenType        string   `json:"token_type"`
	ExpiresInMinutes int      `json:"expires_in_minutes"`
	User             userResp `json:"user"`
	IsAdmin          bool     `json:"is_admin"`
}

// Register creates a citizen account.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	u, err := h.Auth.Register(ctx, service.RegisterInput{FullName: req.FullName, Email: req.Email, Password: req.Password})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, toUser(u))
}

// Login verifies credentials and returns an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return badRequest(c, "email and password are required")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	minutes := int(time.Until(res.Token.Exp).Round(time.Minute) / time.Minute)
	return c.JSON(http.StatusOK, loginResp{
		AccessToken:      res.Token.Token,
		TokenType:        "bearer",
		ExpiresInMinutes: minutes,
		User:             toUser(res.User),
		IsAdmin:          res.User.IsAdmin(),
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return respondError(c, h.Log, service.ErrUnauthenticated)
	}
	return c.JSON(http.StatusOK, toUser(u))
}

// UpdateMe changes the name and/or avatar.  The body is multipart with
// optional full_name and profile_image parts.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return respondError(c, h.Log, service.ErrUnauthenticated)
	}
	if h.MaxUploadBytes > 0 {
		// Leave room for the other form parts around the image.
		c.Request().Body = http.MaxBytesReader(c.Response(), c.Request().Body, h.MaxUploadBytes+(1<<20))
	}

	var upd service.ProfileUpdate
	var fh *multipart.FileHeader
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				return badRequest(c, "profile image is too large")
			}
			return badRequest(c, "invalid multipart form")
		}
		if v := form.Value["full_name"]; len(v) > 0 {
			upd.FullName = &v[0]
		}
		if files := form.File["profile_image"]; len(files) > 0 {
			fh = files[0]
		}
	} else {
		params, err := c.FormParams()
		if err != nil {
			return badRequest(c, "invalid form")
		}
		if v, ok := params["full_name"]; ok && len(v) > 0 {
			upd.FullName = &v[0]
		}
	}

	if fh != nil {
		if h.MaxUploadBytes > 0 && fh.Size > h.MaxUploadBytes {
			return badRequest(c, "profile image is too large")
		}
		f, err := fh.Open()
		if err != nil {
			return badRequest(c, "invalid profile image")
		}
		defer f.Close()
		upd.Image = &service.Upload{Filename: fh.Filename, Body: f}
	}

	ctx, cancel := h.ctx(c)
	defer cancel()
	updated, err := h.Auth.UpdateProfile(ctx, u, upd)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, toUser(updated))
}

// ForgotPassword always answers with the same message.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	msg, err := h.Auth.ForgotPassword(ctx, req.Email)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": msg})
}

// ResetPassword consumes a reset token.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := h.ctx(c)
	defer cancel()

	if err := h.Auth.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password has been reset, you can now log in"})
}
