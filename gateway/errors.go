package gateway

import "errors"

// ErrorKind distingue cómo falló una petición al backend: el transporte,
// el status HTTP, o un error reportado por la propia planilla dentro de
// una respuesta 2xx.
type ErrorKind string

const (
	KindNetwork     ErrorKind = "network"
	KindHTTP        ErrorKind = "http"
	KindApplication ErrorKind = "application"
)

type GatewayError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *GatewayError) Error() string {
	return e.Message
}

// UserMessage es el texto que ve el usuario. Nunca expone el cuerpo crudo
// ni trazas del backend.
func UserMessage(err error) string {
	var gerr *GatewayError
	if errors.As(err, &gerr) {
		switch gerr.Kind {
		case KindApplication:
			return gerr.Message
		default:
			return "Error de conexión con el servidor. Por favor, inténtelo de nuevo."
		}
	}
	return err.Error()
}

func IsApplicationError(err error) bool {
	var gerr *GatewayError
	return errors.As(err, &gerr) && gerr.Kind == KindApplication
}
