package api

import (
	"krishna_store/internal/domain"  // Domain errors
	"krishna_store/internal/service" // Account operations
	"krishna_store/internal/utils"   // Response envelope
	"net/http"                       // HTTP status codes
	"regexp"                         // Regular expressions
	"strings"                        // String manipulation
	"time"                           // Date of birth parsing

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Name        string `json:"name" binding:"required"`         // Name must be provided
	Phone       string `json:"phone" binding:"required"`        // Phone must be provided
	Email       string `json:"email" binding:"omitempty,email"` // Optional email
	DateOfBirth string `json:"dateOfBirth"`                     // YYYY-MM-DD, optional
}

// SendOTPRequest is the body of POST /auth/send-otp
type SendOTPRequest struct {
	Phone string `json:"phone" binding:"required"` // Phone must be provided
}

// VerifyOTPRequest is the body of POST /auth/verify-otp
type VerifyOTPRequest struct {
	Phone   string `json:"phone" binding:"required"` // Phone must be provided
	OTP     string `json:"otp" binding:"required"`   // Code received by SMS
	Purpose string `json:"purpose"`                  // login (default) or register
}

// phonePattern accepts an optional leading + followed by 10 to 15 digits
var phonePattern = regexp.MustCompile(`^\+?[0-9]{10,15}$`)

// isValidPhone checks the phone number shape
func isValidPhone(phone string) bool {
	return phonePattern.MatchString(strings.TrimSpace(phone))
}

// RegisterHandler creates a customer account and sends a registration OTP
func RegisterHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid request", err))
			return
		}
		if !isValidPhone(req.Phone) {
			utils.Fail(c, domain.ValidationError("Phone must be 10-15 digits"))
			return
		}
		in := service.RegisterInput{Name: req.Name, Phone: req.Phone, Email: req.Email}
		if req.DateOfBirth != "" {
			dob, err := time.ParseInLocation(time.DateOnly, req.DateOfBirth, time.Local)
			if err != nil {
				utils.Fail(c, domain.ValidationError("Date of birth must be YYYY-MM-DD"))
				return
			}
			in.DateOfBirth = &dob
		}
		registered, err := accounts.Register(c.Request.Context(), in)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		if !utils.IsDebug() {
			registered.OTP = "" // Codes only travel by SMS in production
		}
		utils.Success(c, http.StatusCreated, "User registered successfully", registered)
	}
}

// SendOTPHandler sends a login code to an existing account
func SendOTPHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SendOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid request", err))
			return
		}
		code, err := accounts.SendLoginOTP(c.Request.Context(), req.Phone)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		var data any
		if utils.IsDebug() {
			data = gin.H{"otp": code}
		}
		utils.Success(c, http.StatusOK, "OTP sent successfully", data)
	}
}

// VerifyOTPHandler checks the code and returns a JWT
func VerifyOTPHandler(accounts *service.AccountService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req VerifyOTPRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Invalid request", err))
			return
		}
		session, err := accounts.VerifyOTP(c.Request.Context(), req.Phone, req.Purpose, req.OTP)
		if err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Login successful", session)
	}
}
