// Package i18n resolves message keys against per-language catalogs. The core
// only ever produces keys; the transport boundary localizes them using the
// language negotiated from the Accept-Language header.
package i18n

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

var supported = []language.Tag{
	language.English, // fallback
	language.Spanish,
}

var matcher = language.NewMatcher(supported)

var catalogs = map[language.Tag]map[string]string{
	language.English: {
		"USER_SUCCESS":               "User created",
		"USER_UPDATE_SUCCESS":        "User updated",
		"USER_NOT_FOUND":             "User not found",
		"ACCOUNT_ACTIVATION_SUCCESS": "Account is activated",
		"ACCOUNT_ACTIVATION_FAILURE": "This account is either active or the token is invalid",
		"AUTHENTICATION_FAILURE":     "Incorrect credentials",
		"INACTIVE_ACCOUNT_FAILURE":   "Your account is inactive",
		"UNAUTHORIZED_USER_UPDATE":   "You are not authorized to update user",
		"EMAIL_FAILURE":              "E-mail failure",
		"VALIDATION_FAILURE":         "Validation failure",
		"INVALID_TOKEN":              "Invalid token",
		"USERNAME_NULL":              "Username is required",
		"USERNAME_SIZE":              "Username must have min 4 and max 32 characters",
		"EMAIL_NULL":                 "E-mail is required",
		"EMAIL_INVALID":              "E-mail must be valid",
		"EMAIL_IN_USE":               "E-mail in use",
		"PASSWORD_NULL":              "Password is required",
		"PASSWORD_SIZE":              "Password must be at least 6 characters",
		"PASSWORD_PATTERN":           "Password must have at least 1 uppercase letter, 1 lowercase letter and 1 number",
	},
	language.Spanish: {
		"USER_SUCCESS":               "Usuario creado",
		"USER_UPDATE_SUCCESS":        "Usuario actualizado",
		"USER_NOT_FOUND":             "Usuario no encontrado",
		"ACCOUNT_ACTIVATION_SUCCESS": "La cuenta ha sido activada",
		"ACCOUNT_ACTIVATION_FAILURE": "Esta cuenta ya ha sido activada o el token es inválido",
		"AUTHENTICATION_FAILURE":     "Credenciales incorrectas",
		"INACTIVE_ACCOUNT_FAILURE":   "Tu cuenta está inactiva",
		"UNAUTHORIZED_USER_UPDATE":   "No estás autorizado para actualizar el usuario",
		"EMAIL_FAILURE":              "Fallo de e-mail",
		"VALIDATION_FAILURE":         "Fallo de validación",
		"INVALID_TOKEN":              "Token inválido",
		"USERNAME_NULL":              "El usuario es requerido",
		"USERNAME_SIZE":              "El usuario debe tener entre 4 y 32 caracteres",
		"EMAIL_NULL":                 "El e-mail es requerido",
		"EMAIL_INVALID":              "El e-mail debe ser válido",
		"EMAIL_IN_USE":               "El e-mail ya está en uso",
		"PASSWORD_NULL":              "La contraseña es requerida",
		"PASSWORD_SIZE":              "La contraseña debe tener al menos 6 caracteres",
		"PASSWORD_PATTERN":           "La contraseña debe tener al menos 1 mayúscula, 1 minúscula y 1 número",
	},
}

// Localizer resolves message keys for one negotiated language.
type Localizer struct {
	catalog map[string]string
}

// Resolve returns the localized text for key, or the key itself when the
// catalog has no entry.
func (l Localizer) Resolve(key string) string {
	if l.catalog != nil {
		if msg, ok := l.catalog[key]; ok {
			return msg
		}
	}
	// Fall back to English before echoing the raw key.
	if msg, ok := catalogs[language.English][key]; ok {
		return msg
	}
	return key
}

// ForAcceptLanguage negotiates the best supported language for the header.
func ForAcceptLanguage(header string) Localizer {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Localizer{catalog: catalogs[language.English]}
	}
	_, idx, _ := matcher.Match(tags...)
	return Localizer{catalog: catalogs[supported[idx]]}
}

type ctxKey struct{}

// Middleware attaches the negotiated Localizer to the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		loc := ForAcceptLanguage(r.Header.Get("Accept-Language"))
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, loc)))
	})
}

// FromContext returns the request's Localizer, defaulting to English.
func FromContext(ctx context.Context) Localizer {
	if loc, ok := ctx.Value(ctxKey{}).(Localizer); ok {
		return loc
	}
	return Localizer{catalog: catalogs[language.English]}
}
