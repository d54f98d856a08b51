package config

import (
	"log"
	"os"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"github.com/joho/godotenv"
)

// Valores por defecto del kiosko (bodega SLR).
const (
	defaultTargetLat = -33.564259
	defaultTargetLon = -70.680248
	defaultMaxMeters = 50
	// bcrypt de la clave compartida del personal.
	defaultGateHash = "$2a$10$0TD1stYik8SBM6ZEEsJa/eG7JK6FzLDRlvMC0QM.PS0nY5yFkTWpe"
)

var (
	JWT_KEY []byte

	// BackendURL apunta al servicio de planilla (Apps Script).
	BackendURL string

	TargetLat         float64
	TargetLon         float64
	MaxDistanceMeters float64

	// GateHash es el hash bcrypt de la clave del personal.
	GateHash string

	// ExitFormCarros habilita el campo opcional "carros" del formulario de salida.
	ExitFormCarros bool
)

type JWTClaims struct {
	Username string
	jwt.RegisteredClaims
}

// Load lee el .env (si existe) y deja la configuración lista.
// BACKEND_URL y JWT_KEY son obligatorias.
func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("Sin archivo .env, usando variables de entorno")
	}

	BackendURL = os.Getenv("BACKEND_URL")
	if BackendURL == "" {
		log.Fatal("BACKEND_URL debe estar definida")
	}

	key := os.Getenv("JWT_KEY")
	if key == "" {
		log.Fatal("JWT_KEY debe estar definida")
	}
	JWT_KEY = []byte(key)

	GateHash = os.Getenv("GATE_HASH")
	if GateHash == "" {
		GateHash = defaultGateHash
	}

	TargetLat = floatEnv("TARGET_LAT", defaultTargetLat)
	TargetLon = floatEnv("TARGET_LON", defaultTargetLon)
	MaxDistanceMeters = floatEnv("MAX_DISTANCE_METERS", defaultMaxMeters)
	ExitFormCarros = os.Getenv("EXIT_FORM_CARROS") == "1"
}

func floatEnv(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("%s no es un número válido: %v", name, err)
	}
	return v
}
