package middleware

import (
	"errors"
	"net/http"

	"acharam/internal/config"
	"acharam/internal/infra/session"
	"acharam/internal/util"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const CtxSessionKey = "session"

// リクエスト中のセッション。変更はレスポンスヘッダを書く直前に保存する
type Session struct {
	id    string
	data  session.Data
	isNew bool

	changed   bool
	destroyed bool
	// ログイン時のID切り替えで消す古いID
	staleID string
}

func (s *Session) ID() string { return s.id }

func (s *Session) UserID() int64 { return s.data.UserID }

func (s *Session) CartSessionID() string { return s.data.CartSessionID }

func (s *Session) SetUserID(id int64) {
	s.data.UserID = id
	s.changed = true
}

func (s *Session) SetCartSessionID(token string) {
	s.data.CartSessionID = token
	s.changed = true
}

// ログイン時に新しいIDへ切り替える（中身は引き継ぐ）
func (s *Session) Regenerate() error {
	id, err := session.NewID()
	if err != nil {
		return err
	}
	if !s.isNew && s.staleID == "" {
		s.staleID = s.id
	}
	s.id = id
	s.isNew = true
	s.changed = true
	return nil
}

// ログアウト
func (s *Session) Destroy() {
	s.data = session.Data{}
	s.destroyed = true
}

func GetSession(c echo.Context) *Session {
	s, _ := c.Get(CtxSessionKey).(*Session)
	return s
}

// SessionMiddleware はCookieのIDからセッションを読み込む。
// IDが無い・期限切れなら新しいIDを用意する（保存は変更があったときだけ）
func SessionMiddleware(store session.Store, cfg config.SessionConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			sess := &Session{}

			if cookie, err := c.Cookie(cfg.CookieName); err == nil && cookie.Value != "" {
				data, err := store.Load(ctx, cookie.Value)
				switch {
				case err == nil:
					sess.id = cookie.Value
					sess.data = data
				case errors.Is(err, session.ErrNotFound):
				default:
					util.GetLogger().Warn("session load failed", zap.Error(err))
				}
			}
			if sess.id == "" {
				id, err := session.NewID()
				if err != nil {
					return err
				}
				sess.id = id
				sess.isNew = true
			}

			c.Set(CtxSessionKey, sess)
			c.Response().Before(func() {
				persistSession(c, store, cfg, sess)
			})
			return next(c)
		}
	}
}

func persistSession(c echo.Context, store session.Store, cfg config.SessionConfig, sess *Session) {
	ctx := c.Request().Context()
	log := util.GetLogger()

	if sess.staleID != "" {
		if err := store.Delete(ctx, sess.staleID); err != nil {
			log.Warn("session delete failed", zap.Error(err))
		}
	}

	if sess.destroyed {
		if !sess.isNew {
			if err := store.Delete(ctx, sess.id); err != nil {
				log.Warn("session delete failed", zap.Error(err))
			}
		}
		c.SetCookie(&http.Cookie{
			Name:     cfg.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   cfg.Secure,
			SameSite: http.SameSiteLaxMode,
		})
		return
	}

	if !sess.changed {
		return
	}
	if err := store.Save(ctx, sess.id, sess.data, cfg.TTL); err != nil {
		log.Error("session save failed", zap.Error(err))
		return
	}
	c.SetCookie(&http.Cookie{
		Name:     cfg.CookieName,
		Value:    sess.id,
		Path:     "/",
		MaxAge:   int(cfg.TTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
