package middlewares

import (
	"net/http"
	"strings"

	"github.com/Gabo-code/excelasistSLR-test/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Clave de contexto con el id de sesión del personal.
const SessionKey = "gateSession"

// RequestID etiqueta cada petición para los logs.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

// GateMiddleware exige el token emitido por el gate del personal y deja el
// id de sesión en el contexto. Cada recarga de página pasa de nuevo por el
// gate, así que el id cambia por recarga.
func GateMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Ingrese la clave del personal"})
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Ingrese la clave del personal"})
			return
		}

		claims := &config.JWTClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.NewValidationError("método de firma inválido", jwt.ValidationErrorSignatureInvalid)
			}
			return config.JWT_KEY, nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Sesión inválida o expirada"})
			return
		}
		if claims.ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Sesión inválida o expirada"})
			return
		}

		c.Set(SessionKey, claims.ID)
		c.Next()
	}
}
