// Package middleware holds the link-tracker specific gin middleware.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// IsBotKey is the gin context key BotFilter sets.
const IsBotKey = "is_bot"

// botPatterns are known bot and link-preview User-Agent substrings (lowercase).
var botPatterns = []string{
	"googlebot", "bingbot", "slurp", "duckduckbot",
	"baiduspider", "yandexbot", "facebookexternalhit",
	"twitterbot", "rogerbot", "linkedinbot", "embedly",
	"quora link preview", "showyoubot", "outbrain",
	"pinterest", "applebot", "semrushbot", "ahrefsbot",
	"mj12bot", "dotbot", "petalbot", "bytespider",
	"slackbot", "discordbot", "telegrambot", "whatsapp",
	"skypeuripreview", "redditbot", "headlesschrome",
}

// BotFilter flags requests from known bots and requests without a
// User-Agent. Flagged visits are still redirected.
func BotFilter() gin.HandlerFunc {
	return func(c *gin.Context) {
		ua := strings.ToLower(c.Request.UserAgent())
		if ua == "" || isBot(ua) {
			c.Set(IsBotKey, true)
		}
		c.Next()
	}
}

// IsBot reports whether BotFilter flagged the request.
func IsBot(c *gin.Context) bool {
	return c.GetBool(IsBotKey)
}

func isBot(ua string) bool {
	for _, pattern := range botPatterns {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}
