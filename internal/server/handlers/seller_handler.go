package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// sellerCookieAge keeps the seller label for a year.
const sellerCookieAge = 365 * 24 * 60 * 60

// SellerHandler stores the seller label of the terminal in a cookie.
type SellerHandler struct {
	cookieSecure bool
}

// NewSellerHandler constructs the seller label adapter.
func NewSellerHandler(cookieSecure bool) *SellerHandler {
	return &SellerHandler{cookieSecure: cookieSecure}
}

type sellerRequest struct {
	SellerName string `json:"sellerName"`
}

// SellerName returns the label stored on the request, if any.
func SellerName(c *gin.Context) string {
	name, err := c.Cookie(SellerCookie)
	if err != nil {
		return ""
	}
	return name
}

// Get returns the current seller label.
func (h *SellerHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sellerName": SellerName(c)})
}

// Set stores a new seller label.
func (h *SellerHandler) Set(c *gin.Context) {
	var req sellerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.SellerName)
	if name == "" {
		badRequest(c, "sellerName is required")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SellerCookie, name, sellerCookieAge, "/", "", h.cookieSecure, false)
	c.JSON(http.StatusOK, gin.H{"sellerName": name})
}

// Clear removes the seller label.
func (h *SellerHandler) Clear(c *gin.Context) {
	c.SetCookie(SellerCookie, "", -1, "/", "", h.cookieSecure, false)
	c.Status(http.StatusNoContent)
}
