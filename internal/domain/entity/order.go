package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factuur-api/internal/domain"
)

// OrderRecord es el envío tal como lo devuelve la API del retailer (v10).
// Es de solo lectura para el generador de facturas.
type OrderRecord struct {
	ShipmentID       string     `json:"shipmentId"`
	ShipmentDateTime time.Time  `json:"shipmentDateTime"`
	Order            OrderRef   `json:"order"`
	BillingDetails   Party      `json:"billingDetails"`
	ShipmentDetails  Party      `json:"shipmentDetails"`
	Items            []LineItem `json:"shipmentItems"`
	Transport        Transport  `json:"transport"`
}

// OrderRef identifica el pedido al que pertenece el envío.
type OrderRef struct {
	OrderID             string    `json:"orderId"`
	OrderPlacedDateTime time.Time `json:"orderPlacedDateTime"`
}

// Party datos de facturación o de entrega del comprador.
type Party struct {
	FirstName            string `json:"firstName"`
	Surname              string `json:"surname"`
	StreetName           string `json:"streetName"`
	HouseNumber          string `json:"houseNumber"`
	HouseNumberExtension string `json:"houseNumberExtension,omitempty"`
	ZipCode              string `json:"zipCode"`
	City                 string `json:"city"`
	CountryCode          string `json:"countryCode"`
	Email                string `json:"email"`
	Company              string `json:"company,omitempty"`
	VATNumber            string `json:"vatNumber,omitempty"`
	KvKNumber            string `json:"kvkNumber,omitempty"`
}

// FullName nombre y apellido separados por un espacio.
func (p Party) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.Surname)
}

// StreetLine calle, número y extensión (si existe).
func (p Party) StreetLine() string {
	line := strings.TrimSpace(p.StreetName + " " + p.HouseNumber)
	if p.HouseNumberExtension != "" {
		line += " " + p.HouseNumberExtension
	}
	return line
}

// LineItem una línea del envío. UnitPrice incluye IVA (BTW).
type LineItem struct {
	OrderItemID string          `json:"orderItemId,omitempty"`
	Product     ProductRef      `json:"product"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Offer       OfferRef        `json:"offer"`
}

// ProductRef producto vendido.
type ProductRef struct {
	EAN   string `json:"ean,omitempty"`
	Title string `json:"title"`
}

// OfferRef oferta del vendedor; Reference es el código de categoría interno
// cuya primera letra decide la tarifa de IVA.
type OfferRef struct {
	OfferID   string `json:"offerId,omitempty"`
	Reference string `json:"reference"`
}

// Title título del producto.
func (li LineItem) Title() string { return li.Product.Title }

// CategoryReference referencia de categoría de la oferta.
func (li LineItem) CategoryReference() string { return li.Offer.Reference }

// Transport datos del transportista.
type Transport struct {
	TransportID     string `json:"transportId,omitempty"`
	TransporterCode string `json:"transporterCode,omitempty"`
	TrackAndTrace   string `json:"trackAndTrace"`
}

// Validate comprueba los campos obligatorios antes de cualquier trabajo de maquetación.
// Todos los errores envuelven domain.ErrInvalidInput.
func (o *OrderRecord) Validate() error {
	if strings.TrimSpace(o.Order.OrderID) == "" {
		return fmt.Errorf("%w: orderId requerido", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(o.BillingDetails.CountryCode) == "" {
		return fmt.Errorf("%w: billingDetails.countryCode requerido", domain.ErrInvalidInput)
	}
	if len(o.Items) == 0 {
		return fmt.Errorf("%w: el envío no tiene líneas", domain.ErrInvalidInput)
	}
	for i, it := range o.Items {
		if it.Quantity < 1 {
			return fmt.Errorf("%w: línea %d: quantity debe ser >= 1", domain.ErrInvalidInput, i)
		}
		if it.UnitPrice.IsNegative() {
			return fmt.Errorf("%w: línea %d: unitPrice negativo", domain.ErrInvalidInput, i)
		}
		if it.CategoryReference() == "" {
			return fmt.Errorf("%w: línea %d: offer.reference vacío", domain.ErrInvalidInput, i)
		}
	}
	return nil
}

// ResolveField devuelve el primer valor no vacío por orden de precedencia:
// primary, luego secondary, luego def.
func ResolveField(primary, secondary, def string) string {
	if primary != "" {
		return primary
	}
	if secondary != "" {
		return secondary
	}
	return def
}
