// README: Registration, OTP verification, login/logout, and profile.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"swiftcab/internal/http/middleware"
	"swiftcab/internal/modules/account"
	"swiftcab/internal/modules/auth"
)

type AccountHandler struct {
	accounts *account.Service
	guard    *auth.Guard
}

func NewAccountHandler(accounts *account.Service, guard *auth.Guard) *AccountHandler {
	return &AccountHandler{accounts: accounts, guard: guard}
}

type vehicleReq struct {
	Color    string `json:"color"`
	Plate    string `json:"plate"`
	Capacity int    `json:"capacity"`
	Class    string `json:"class"`
}

type registerReq struct {
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Phone     string      `json:"phone"`
	Password  string      `json:"password"`
	Vehicle   *vehicleReq `json:"vehicle,omitempty"`
	LicenseNo string      `json:"license_no,omitempty"`
}

// Register creates an unverified account in the given role. The role
// comes from the route group, never from the body.
func (h *AccountHandler) Register(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req registerReq
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		cmd := account.RegisterCommand{
			Role:      role,
			FirstName: req.FirstName,
			LastName:  req.LastName,
			Email:     req.Email,
			Phone:     req.Phone,
			Password:  req.Password,
			LicenseNo: req.LicenseNo,
		}
		if req.Vehicle != nil {
			cmd.Vehicle = &account.Vehicle{
				Color:    req.Vehicle.Color,
				Plate:    req.Vehicle.Plate,
				Capacity: req.Vehicle.Capacity,
				Class:    req.Vehicle.Class,
			}
		}
		a, err := h.accounts.Register(c.Request.Context(), cmd)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		writeJSON(c, http.StatusCreated, gin.H{
			"message": "registered, verify email and mobile OTP",
			"account": a.Profile(),
		})
	}
}

type verifyEmailReq struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *AccountHandler) VerifyEmailOTP(c *gin.Context) {
	var req verifyEmailReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.accounts.VerifyEmailOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "email verified"})
}

type verifyMobileReq struct {
	Phone string `json:"phone"`
	OTP   string `json:"otp"`
}

func (h *AccountHandler) VerifyMobileOTP(c *gin.Context) {
	var req verifyMobileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.accounts.VerifyMobileOTP(c.Request.Context(), req.Phone, req.OTP); err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"message": "mobile verified"})
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login answers 401 for every failure mode so callers cannot probe
// which accounts exist or are verified. The token is returned in the
// body and planted as a cookie; either works on later requests.
func (h *AccountHandler) Login(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginReq
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
		a, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		if a.Role != role {
			writeError(c, http.StatusUnauthorized, account.ErrUnauthorized.Error())
			return
		}
		token, err := h.guard.IssueToken(a)
		if err != nil {
			writeDomainError(c, err)
			return
		}
		h.setTokenCookie(c, token, h.guard.TokenTTL())
		writeJSON(c, http.StatusOK, gin.H{"token": token, "account": a.Profile()})
	}
}

// Logout revokes the presented token and clears the cookie. Always
// 200; revoking twice is harmless.
func (h *AccountHandler) Logout(c *gin.Context) {
	token := middleware.TokenFrom(c)
	if err := h.guard.Revoke(c.Request.Context(), token); err != nil {
		writeDomainError(c, err)
		return
	}
	h.setTokenCookie(c, "", -time.Hour)
	writeJSON(c, http.StatusOK, gin.H{"message": "logged out"})
}

func (h *AccountHandler) Profile(c *gin.Context) {
	a := middleware.AccountFrom(c)
	if a == nil {
		// Lenient captain auth resolves no account; look it up by the
		// claim instead so the profile route still works.
		claims := middleware.ClaimsFrom(c)
		if claims == nil {
			writeError(c, http.StatusUnauthorized, auth.ErrUnauthorized.Error())
			return
		}
		var err error
		a, err = h.accounts.Get(c.Request.Context(), claims.ID())
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				writeError(c, http.StatusNotFound, err.Error())
				return
			}
			writeDomainError(c, err)
			return
		}
	}
	writeJSON(c, http.StatusOK, a.Profile())
}

func (h *AccountHandler) setTokenCookie(c *gin.Context, token string, ttl time.Duration) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middleware.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
