package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrAssetMissing      = errors.New("recurso gráfico no disponible")
	ErrUpstream          = errors.New("error en la API del retailer")
	ErrAlreadyDispatched = errors.New("la factura de este envío ya fue enviada")
	ErrBatchInProgress   = errors.New("ya hay un lote diario en ejecución")
)
