package http

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/freelance/core"
	"github.com/layer-3/freelance/service"
	"go.uber.org/zap"
)

const projectFilePrefix = "project_"

// AuthHandlers contains HTTP handlers for auth endpoints
type AuthHandlers struct {
	authService    *service.AuthService
	profiles       *service.ProfileService
	session        *SessionTransport
	logger         *zap.Logger
	maxUploadBytes int64
}

// NewAuthHandlers creates new auth handlers
func NewAuthHandlers(authService *service.AuthService, profiles *service.ProfileService, session *SessionTransport, logger *zap.Logger, maxUploadBytes int64) *AuthHandlers {
	return &AuthHandlers{
		authService:    authService,
		profiles:       profiles,
		session:        session,
		logger:         logger,
		maxUploadBytes: maxUploadBytes,
	}
}

// Nonce issues a challenge to sign
func (h *AuthHandlers) Nonce(c *gin.Context) {
	n, err := h.authService.RequestChallenge(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, NonceResponse{Nonce: n.Value})
}

// Login handles the login request
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, h.logger, core.NewError(core.KindValidation, service.MsgMissingFields, err))
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.input())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.session.AttachRefreshCookie(c.Writer, session.RefreshToken.Value)
	c.JSON(http.StatusOK, AuthResponse{
		AccessToken: session.AccessToken.Value,
		User:        newUserView(session.User),
	})
}

// Signup handles registration. Freelancers send multipart forms with the
// request JSON in the data field and images in project_<i> fields.
func (h *AuthHandlers) Signup(c *gin.Context) {
	var (
		req   SignupRequest
		files map[int][]service.FileInput
		err   error
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
		req, files, err = readMultipartSignup(c)
	} else {
		err = c.ShouldBindJSON(&req)
	}
	if err != nil {
		writeError(c, h.logger, core.NewError(core.KindValidation, "Richiesta non valida", err))
		return
	}

	session, err := h.authService.Signup(c.Request.Context(), req.input(files))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	h.session.AttachRefreshCookie(c.Writer, session.RefreshToken.Value)
	c.JSON(http.StatusCreated, AuthResponse{
		AccessToken: session.AccessToken.Value,
		User:        newUserView(session.User),
	})
}

// Refresh issues a new access token from the refresh cookie
func (h *AuthHandlers) Refresh(c *gin.Context) {
	token, ok := h.session.RefreshToken(c.Request)
	if !ok {
		writeError(c, h.logger, core.NewError(core.KindUnauthorized, service.MsgUnauthorized, nil))
		return
	}

	session, err := h.authService.Refresh(c.Request.Context(), token)
	if err != nil {
		// a cookie that can no longer be redeemed is dropped
		if kind := core.KindOf(err); kind == core.KindForbidden || kind == core.KindUnauthorized {
			h.session.ClearRefreshCookie(c.Writer)
		}
		writeError(c, h.logger, err)
		return
	}

	h.session.AttachRefreshCookie(c.Writer, session.RefreshToken.Value)
	c.JSON(http.StatusCreated, RefreshResponse{AccessToken: session.AccessToken.Value})
}

// Logout drops the session cookie. It succeeds with or without a cookie.
func (h *AuthHandlers) Logout(c *gin.Context) {
	if token, ok := h.session.RefreshToken(c.Request); ok {
		h.authService.Logout(c.Request.Context(), token)
		h.session.ClearRefreshCookie(c.Writer)
	}

	c.Status(http.StatusNoContent)
}

// Image serves a stored portfolio image
func (h *AuthHandlers) Image(c *gin.Context) {
	blob, err := h.profiles.Image(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, contentType, blob.Data)
}

// Me returns the account of the authenticated user
func (h *AuthHandlers) Me(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		writeError(c, h.logger, core.NewError(core.KindUnauthorized, service.MsgUnauthorized, nil))
		return
	}

	user, err := h.profiles.Me(c.Request.Context(), claims)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newAccountView(user))
}

// Profile returns the public profile for an address
func (h *AuthHandlers) Profile(c *gin.Context) {
	user, err := h.profiles.Profile(c.Request.Context(), c.Param("address"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, newProfileView(user))
}

// Health reports liveness
func (h *AuthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func readMultipartSignup(c *gin.Context) (SignupRequest, map[int][]service.FileInput, error) {
	var req SignupRequest

	form, err := c.MultipartForm()
	if err != nil {
		return req, nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	data := form.Value["data"]
	if len(data) == 0 {
		return req, nil, fmt.Errorf("missing data field")
	}
	if err := json.Unmarshal([]byte(data[0]), &req); err != nil {
		return req, nil, fmt.Errorf("failed to decode data field: %w", err)
	}

	files, err := projectFiles(form)
	if err != nil {
		return req, nil, err
	}
	return req, files, nil
}

// projectFiles groups uploads by the project index in their field name.
// Both project_<i> and <address>_project_<i> are accepted.
func projectFiles(form *multipart.Form) (map[int][]service.FileInput, error) {
	files := make(map[int][]service.FileInput)

	for field, headers := range form.File {
		at := strings.LastIndex(field, projectFilePrefix)
		if at < 0 {
			continue
		}
		index, err := strconv.Atoi(field[at+len(projectFilePrefix):])
		if err != nil || index < 0 {
			continue
		}

		for _, fh := range headers {
			data, err := readFile(fh)
			if err != nil {
				return nil, err
			}
			files[index] = append(files[index], service.FileInput{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Data:        data,
			})
		}
	}

	return files, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", fh.Filename, err)
	}
	return data, nil
}
