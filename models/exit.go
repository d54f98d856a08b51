package models

import (
	"strconv"
	"strings"
)

// Límites del formulario de salida.
const (
	MaxBolsos = 6
	MaxSSL    = 3
	MaxCarros = 3
)

// ExitForm son los campos crudos del modal de salida, antes de validar.
type ExitForm struct {
	Timestamp string   `json:"timestamp"`
	Bolsos    string   `json:"bolsos"`
	Sectors   []string `json:"sector"`
	SSL       string   `json:"ssl"`
	Carros    string   `json:"carros"`
}

// ExitSubmission es un formulario ya validado, listo para enviarse una
// sola vez al backend.
type ExitSubmission struct {
	Timestamp string
	Bolsos    int
	Sectors   []string
	SSL       int
	Carros    *int
}

// FieldErrors marca los campos rechazados por la validación local. Mientras
// haya alguno, no se emite ninguna petición.
type FieldErrors map[string]string

func (f FieldErrors) Valid() bool {
	return len(f) == 0
}

// Validate revisa cada campo por separado: bolsos en [0,6], al menos un
// sector, ssl en [0,3] y carros en [0,3] solo cuando está habilitado.
func (f ExitForm) Validate(allowCarros bool) (ExitSubmission, FieldErrors) {
	errs := FieldErrors{}
	sub := ExitSubmission{Timestamp: strings.TrimSpace(f.Timestamp)}

	if sub.Timestamp == "" {
		errs["timestamp"] = "Registro no identificado"
	}

	if n, ok := intInRange(f.Bolsos, 0, MaxBolsos); ok {
		sub.Bolsos = n
	} else {
		errs["bolsos"] = "Ingrese un número de bolsos entre 0 y 6"
	}

	for _, s := range f.Sectors {
		if s = strings.TrimSpace(s); s != "" {
			sub.Sectors = append(sub.Sectors, s)
		}
	}
	if len(sub.Sectors) == 0 {
		errs["sector"] = "Seleccione al menos un sector"
	}

	if n, ok := intInRange(f.SSL, 0, MaxSSL); ok {
		sub.SSL = n
	} else {
		errs["ssl"] = "Ingrese un número de SSL entre 0 y 3"
	}

	if allowCarros && strings.TrimSpace(f.Carros) != "" {
		if n, ok := intInRange(f.Carros, 0, MaxCarros); ok {
			sub.Carros = &n
		} else {
			errs["carros"] = "Ingrese un número de carros entre 0 y 3"
		}
	}

	return sub, errs
}

func intInRange(raw string, min, max int) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min || n > max {
		return 0, false
	}
	return n, true
}
