package dto

// PageRequest paginación por página para listados (page empieza en 1).
type PageRequest struct {
	Page  int `query:"page" validate:"min=0"`
	Limit int `query:"limit" validate:"min=0,max=100"`
}

// DefaultPage aplica valores por defecto si Page/Limit son cero.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = 10
	}
}

// Offset desplazamiento equivalente: (page-1)*limit.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// MessageResponse respuesta simple con mensaje.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
