package internal

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// POST /portal/auth/register (multipart)
func RegisterHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		matric := strings.TrimSpace(c.PostForm("matricNumber"))
		fullName := strings.TrimSpace(c.PostForm("fullName"))
		faculty := strings.TrimSpace(c.PostForm("faculty"))
		department := strings.TrimSpace(c.PostForm("department"))
		password := c.PostForm("password")
		confirm := c.PostForm("confirmPassword")

		// Rejected before the upload is touched, let alone forwarded.
		if matric == "" || fullName == "" || faculty == "" || department == "" || password == "" {
			respondErr(c, validationError("fill all fields"))
			return
		}
		if password != confirm {
			respondErr(c, validationError("passwords do not match"))
			return
		}

		idCard, name, err := formFile(c, "idCard")
		if err != nil {
			respondErr(c, validationError("could not read ID card upload"))
			return
		}
		if idCard == nil {
			respondErr(c, validationError("ID card image is required"))
			return
		}
		defer idCard.Close()

		user, err := api.Register(c.Request.Context(), RegisterForm{
			MatricNumber: matric,
			FullName:     fullName,
			Faculty:      faculty,
			Department:   department,
			Password:     password,
			IDCardName:   name,
			IDCard:       idCard,
		})
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}

type loginRequest struct {
	MatricNumber string `json:"matricNumber"`
	Password     string `json:"password"`
}

// POST /portal/auth/login
func LoginHandler(api *Client, sessions *SessionManager) gin.HandlerFunc {
	return login(sessions, func(c *gin.Context, req loginRequest) (*AuthResponse, error) {
		return api.Login(c.Request.Context(), req.MatricNumber, req.Password)
	})
}

// POST /portal/auth/admin/login
func AdminLoginHandler(api *Client, sessions *SessionManager) gin.HandlerFunc {
	return login(sessions, func(c *gin.Context, req loginRequest) (*AuthResponse, error) {
		return api.AdminLogin(c.Request.Context(), req.MatricNumber, req.Password)
	})
}

func login(sessions *SessionManager, call func(*gin.Context, loginRequest) (*AuthResponse, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.BindJSON(&req); err != nil {
			respondErr(c, validationError("bad json"))
			return
		}
		if req.MatricNumber == "" || req.Password == "" {
			respondErr(c, validationError("matric number and password are required"))
			return
		}

		resp, err := call(c, req)
		if err != nil {
			respondErr(c, err)
			return
		}
		if err := sessions.Issue(c, resp.User, resp.Token); err != nil {
			respondErr(c, validationError("login response missing token or user"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"user": resp.User})
	}
}

// POST /portal/auth/logout
func LogoutHandler(sessions *SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessions.Clear(c)
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// GET /portal/me
func MeHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		user, err := api.WithToken(sess.Token).Me(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// GET /portal/me/status
func AccreditationStatusHandler(api *Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := currentSession(c)
		status, err := api.WithToken(sess.Token).AccreditationStatus(c.Request.Context())
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}
