package api

import (
	"krishna_store/internal/birthday"
	"krishna_store/internal/domain"
	"krishna_store/internal/utils"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// OfferRequest is the body of POST /birthdays/:userId/offer
type OfferRequest struct {
	Message string `json:"message" binding:"required"`
}

// TodayBirthdaysHandler lists customers whose birthday is today
func TodayBirthdaysHandler(birthdays *birthday.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := birthdays.Today(c.Request.Context(), time.Now())
		if err != nil {
			utils.Fail(c, err)
			return
		}
		out := make([]domain.PublicUser, len(users))
		for i := range users {
			out[i] = users[i].Public()
		}
		utils.Success(c, http.StatusOK, "Birthdays fetched successfully", out)
	}
}

// SendWishHandler sends the birthday greeting to one customer
func SendWishHandler(birthdays *birthday.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := pathID(c, "userId")
		if err != nil {
			utils.Fail(c, err)
			return
		}
		if err := birthdays.SendWish(c.Request.Context(), userID); err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Birthday wish sent successfully", nil)
	}
}

// SendOfferHandler sends a custom birthday offer to one customer
func SendOfferHandler(birthdays *birthday.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := pathID(c, "userId")
		if err != nil {
			utils.Fail(c, err)
			return
		}
		var req OfferRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.Fail(c, domain.NewError(domain.KindValidation, "Offer message is required", err))
			return
		}
		if err := birthdays.SendOffer(c.Request.Context(), userID, req.Message); err != nil {
			utils.Fail(c, err)
			return
		}
		utils.Success(c, http.StatusOK, "Birthday offer sent successfully", nil)
	}
}
