// Package flash carries one-shot status messages between a redirecting
// handler and the next rendered page, using a short-lived cookie.
package flash

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const cookieName = "flash"

// Message is a one-shot status message shown on the next rendered page.
type Message struct {
	Level string // "success", "danger", "info"
	Text  string
}

// Set stores a flash message for the next request.
func Set(c *gin.Context, level, text string) {
	// The pipe never occurs in our messages; it separates level from text.
	c.SetCookie(cookieName, level+"|"+text, 60, "/", "", false, true)
}

// Take returns the pending flash message, if any, and clears it.
func Take(c *gin.Context) (Message, bool) {
	value, err := c.Cookie(cookieName)
	if err != nil || value == "" {
		return Message{}, false
	}
	c.SetCookie(cookieName, "", -1, "/", "", false, true)

	level, text, found := strings.Cut(value, "|")
	if !found {
		return Message{Level: "info", Text: value}, true
	}
	return Message{Level: level, Text: text}, true
}
