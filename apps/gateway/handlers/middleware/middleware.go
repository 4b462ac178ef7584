package middleware

import (
	"strings"

	"currycrave/internal/responses"
	"currycrave/internal/structs"
	"currycrave/pkg/config"
	"currycrave/pkg/logger"
	"currycrave/pkg/reply"
	"currycrave/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var (
	Module = fx.Provide(NewMiddleware)
)

const (
	RequestIDHeader = "X-Request-ID"
	AdminRole       = "admin"

	userIDKey = "user_id"
)

type (
	Middleware interface {
		Admin() gin.HandlerFunc
		Ctx() gin.HandlerFunc
	}

	Params struct {
		fx.In

		Logger logger.Logger
		Config config.IConfig
	}

	mw struct {
		logger logger.Logger
		config config.IConfig
	}
)

func NewMiddleware(params Params) Middleware {
	return &mw{
		logger: params.Logger,
		config: params.Config,
	}
}

// Admin lets through requests carrying a valid bearer token whose role claim
// is "admin".
func (m *mw) Admin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var (
			response structs.Response
			ctx      = c.Request.Context()
		)

		authToken := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if utils.StrEmpty(authToken) {
			m.logger.Warn(ctx, " empty auth token")
			response = responses.Unauthorized

			c.Abort()
			reply.Json(c.Writer, responses.UnauthorizedCode, &response)
			return
		}

		claims, err := utils.ParseJWT(m.config.GetString("auth.secret_key"), authToken)
		if err != nil {
			m.logger.Warn(ctx, " invalid auth token", zap.Error(err))
			response = responses.Unauthorized

			c.Abort()
			reply.Json(c.Writer, responses.UnauthorizedCode, &response)
			return
		}

		if role, _ := claims["role"].(string); role != AdminRole {
			m.logger.Warn(ctx, " user is not an admin", zap.String("role", role))
			response = responses.Forbidden

			c.Abort()
			reply.Json(c.Writer, responses.ForbiddenCode, &response)
			return
		}

		userID, _ := claims["id"].(string)
		c.Set(userIDKey, userID)

		c.Next()
	}
}

// Ctx attaches a logging context carrying the request id, generating one when
// the client sent none.
func (m *mw) Ctx() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if utils.StrEmpty(requestID) {
			requestID = utils.GenKSUID()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := m.logger.ContextWithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
