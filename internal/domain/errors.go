package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrInvalidCollection = errors.New("colección inválida para purga")
	ErrQuotaExceeded     = errors.New("almacenamiento lleno para uso gratuito")
	ErrRateLookupMiss    = errors.New("código HSN sin tarifa registrada")
	ErrMessagingNotReady = errors.New("cliente de mensajería no está listo")
	ErrArtifactNotFound  = errors.New("el PDF de la factura no existe")
	ErrDuplicate         = errors.New("registro duplicado")
)
