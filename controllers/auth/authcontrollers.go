package authcontroller

import (
	"net/http"
	"time"

	"github.com/Gabo-code/excelasistSLR-test/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type gateInput struct {
	Password string `json:"password" binding:"required"`
}

// Gate compara la clave compartida del personal y emite el token de
// sesión. El id de sesión (jti) es el ámbito de los marcadores de
// ausencia: recargar la página implica un gate nuevo y marcadores frescos.
func Gate(c *gin.Context) {
	var input gateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Ingrese la clave"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(config.GateHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Contraseña incorrecta"})
		return
	}

	expTime := time.Now().Add(12 * time.Hour)
	claims := &config.JWTClaims{
		Username: "personal",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    "excelasist-kiosko",
			ExpiresAt: jwt.NewNumericDate(expTime),
		},
	}

	tokenDeclared := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err := tokenDeclared.SignedString(config.JWT_KEY)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}
