package dto

// ErrorResponse cuerpo de error HTTP de los endpoints REST (fuera del sobre del intake).
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
