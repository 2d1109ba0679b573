package middleware

import "github.com/gin-gonic/gin"

const (
	clientIDKey = "client_id"
	hostnameKey = "hostname"
)

// SetIdentity stores the authenticated recorder client on the request context.
// Handlers and middleware read it via ClientID and Hostname.
func SetIdentity(c *gin.Context, clientID, hostname string) {
	c.Set(clientIDKey, clientID)
	c.Set(hostnameKey, hostname)
}

// ClientID returns the client_id from the request context and true if set; otherwise "", false.
func ClientID(c *gin.Context) (string, bool) {
	v, ok := c.Get(clientIDKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Hostname returns the hostname claim from the request context and true if set; otherwise "", false.
func Hostname(c *gin.Context) (string, bool) {
	v, ok := c.Get(hostnameKey)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}
