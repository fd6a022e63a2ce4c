package dto

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Detalles opcionales para errores que la UI muestra campo a campo
	// (validación, stock insuficiente).
	Field     string `json:"field,omitempty"`
	Available string `json:"available,omitempty"`
	Required  string `json:"required,omitempty"`
}
