package handler

import (
	"errors"
	"net/http"

	"acharam/internal/domain/model"
	"acharam/internal/middleware"
	"acharam/internal/usecase"
	auth "acharam/internal/usecase/auth_usecase"
	"acharam/internal/util"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
	meUC       *auth.MeUsecase
	cartUC     *usecase.CartUsecase // ゲストカートの引き継ぎ
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	meUC *auth.MeUsecase,
	cartUC *usecase.CartUsecase,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		meUC:       meUC,
		cartUC:     cartUC,
	}
}

// /auth/register のリクエストボディ。roleは受け取らない
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// /auth/login のリクエストボディ。
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    int64      `json:"id"`
	Email string     `json:"email"`
	Name  string     `json:"name"`
	Role  model.Role `json:"role"`
}

type loginResponse struct {
	userResponse
	AccessToken string `json:"accessToken"`
}

func toUserResponse(u model.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (h *AuthHandler) RegisterRoutes(api *echo.Group, g Guards) {
	a := api.Group("/auth")
	a.POST("/register", h.register)
	a.POST("/login", h.login)
	a.POST("/logout", h.logout)
	a.GET("/me", h.me, g.Auth)
}

// POST /api/auth/register
func (h *AuthHandler) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	user, err := h.registerUC.Execute(c.Request().Context(), auth.RegisterUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrEmailAlreadyExists) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Email already in use"})
		}
		return writeError(c, err)
	}

	if err := h.startSession(c, user); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// POST /api/auth/login
func (h *AuthHandler) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	out, err := h.loginUC.Execute(c.Request().Context(), auth.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid credentials"})
		}
		return writeError(c, err)
	}

	if err := h.startSession(c, out.User); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, loginResponse{
		userResponse: toUserResponse(out.User),
		AccessToken:  out.AccessToken,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) logout(c echo.Context) error {
	if sess := middleware.GetSession(c); sess != nil {
		sess.Destroy()
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// GET /api/auth/me
func (h *AuthHandler) me(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
	}

	user, err := h.meUC.Execute(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Authentication required"})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// ゲストカートを引き継いでから、セッションIDを切り替えてuserIdを入れる
func (h *AuthHandler) startSession(c echo.Context, user model.User) error {
	sess := middleware.GetSession(c)
	if sess == nil {
		return nil
	}

	if token := sess.CartSessionID(); token != "" {
		if err := h.cartUC.MergeGuestCart(c.Request().Context(), user.ID, token); err != nil {
			// カートが引き継げなくてもログインは成功させる
			util.GetLogger().Warn("merge guest cart failed", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	if err := sess.Regenerate(); err != nil {
		return usecase.WrapHTTPError(http.StatusInternalServerError, "session error", err)
	}
	sess.SetUserID(user.ID)
	sess.SetCartSessionID("")
	return nil
}
