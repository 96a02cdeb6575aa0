package proxy

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Arpita030/deals-App/backend/services/common/auth"
	"github.com/Arpita030/deals-App/backend/services/common/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Headers injected for downstream services from a validated token.
const (
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
	HeaderUserRole  = "X-User-Role"
	HeaderRequestID = "X-Request-ID"
)

var hopByHop = map[string]bool{
	"connection":          true,
	"keep-alive":          true,
	"proxy-authenticate":  true,
	"proxy-authorization": true,
	"te":                  true,
	"trailer":             true,
	"trailers":            true,
	"transfer-encoding":   true,
	"upgrade":             true,
}

// Forwarder relays requests to one upstream service, keeping the incoming path.
type Forwarder struct {
	base   string
	client *http.Client
}

func NewForwarder(base string, timeout time.Duration) *Forwarder {
	return &Forwarder{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
	}
}

// Handle proxies the current request and streams the upstream response back.
func (f *Forwarder) Handle(c *gin.Context) {
	log := logger.FromContext(c)

	targetURL := f.base + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		targetURL += "?" + c.Request.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, c.Request.Body)
	if err != nil {
		log.Error("failed to create forward request", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create request"})
		return
	}
	req.ContentLength = c.Request.ContentLength

	for k, v := range c.Request.Header {
		if hopByHop[strings.ToLower(k)] {
			continue
		}
		req.Header[k] = v
	}

	// Identity headers are only trusted when the gateway set them.
	req.Header.Del(HeaderUserID)
	req.Header.Del(HeaderUserEmail)
	req.Header.Del(HeaderUserRole)
	if email := auth.Email(c); email != "" {
		req.Header.Set(HeaderUserEmail, email)
		req.Header.Set(HeaderUserRole, auth.Role(c))
		if id := c.GetString(auth.ContextUserID); id != "" {
			req.Header.Set(HeaderUserID, id)
		}
	}
	if rid := c.GetString(logger.RequestIDKey); rid != "" {
		req.Header.Set(HeaderRequestID, rid)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		log.Error("failed to forward request",
			zap.String("method", c.Request.Method),
			zap.String("url", targetURL),
			zap.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "service unreachable"})
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		lower := strings.ToLower(k)
		// CORS is answered by the gateway itself.
		if strings.HasPrefix(lower, "access-control-") || hopByHop[lower] {
			continue
		}
		c.Header(k, strings.Join(v, ","))
	}
	c.Status(resp.StatusCode)

	if _, err := io.Copy(c.Writer, resp.Body); err != nil {
		log.Error("failed to copy response body", zap.Error(err))
	}
}
