package internal

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	sessionCookie = "evote_session"
	tokenCookie   = "auth_token"
	roleCookie    = "user_role"
	sessionTTL    = 24 * time.Hour
)

var errNoUser = errors.New("session token without a user")

type sessionClaims struct {
	User  User   `json:"user"`
	Token string `json:"tok"`
	jwt.RegisteredClaims
}

// SessionManager is the single owner of session state. The signed session
// cookie is the durable storage; auth_token and user_role are mirrored as
// plain cookies for the route guard. After Issue or Clear the three cookies
// never diverge.
type SessionManager struct {
	secret []byte
	secure bool
}

func NewSessionManager(secret string, secure bool) *SessionManager {
	return &SessionManager{secret: []byte(secret), secure: secure}
}

func (m *SessionManager) Issue(c *gin.Context, user User, token string) error {
	if token == "" || user.ID == "" {
		return errNoUser
	}

	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, sessionClaims{
		User:  user,
		Token: token,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "evote-portal",
		},
	})
	signed, err := tok.SignedString(m.secret)
	if err != nil {
		return err
	}

	maxAge := int(sessionTTL / time.Second)
	c.SetCookie(sessionCookie, signed, maxAge, "/", "", m.secure, true)
	c.SetCookie(tokenCookie, token, maxAge, "/", "", m.secure, false)
	c.SetCookie(roleCookie, user.Role, maxAge, "/", "", m.secure, false)
	return nil
}

// Current returns the session carried by the request, or nil if the cookie
// is absent, expired, or fails verification.
func (m *SessionManager) Current(c *gin.Context) *Session {
	raw, err := c.Cookie(sessionCookie)
	if err != nil || raw == "" {
		return nil
	}
	tok, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil
	}
	cl, ok := tok.Claims.(*sessionClaims)
	if !ok || cl.Token == "" || cl.User.ID == "" {
		return nil
	}
	return &Session{User: cl.User, Token: cl.Token}
}

func (m *SessionManager) Clear(c *gin.Context) {
	c.SetCookie(sessionCookie, "", -1, "/", "", m.secure, true)
	c.SetCookie(tokenCookie, "", -1, "/", "", m.secure, false)
	c.SetCookie(roleCookie, "", -1, "/", "", m.secure, false)
}

func (m *SessionManager) IsAuthenticated(c *gin.Context) bool {
	return m.Current(c) != nil
}

func (m *SessionManager) IsAdmin(c *gin.Context) bool {
	s := m.Current(c)
	return s != nil && s.User.Role == RoleAdmin
}
