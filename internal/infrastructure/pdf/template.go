package pdf

import (
	"errors"
	"fmt"
)

// Field campo de posición fija en la plantilla.
type Field string

// Campos de la cabecera, bloques de comprador/vendedor y rejilla de metadatos.
const (
	FieldTitle Field = "title"

	FieldBuyerCompany Field = "buyer.company"
	FieldBuyerName    Field = "buyer.name"
	FieldBuyerStreet  Field = "buyer.street"
	FieldBuyerZipCity Field = "buyer.zip_city"
	FieldBuyerCountry Field = "buyer.country"

	FieldSellerEmail   Field = "seller.email"
	FieldSellerStreet  Field = "seller.street"
	FieldSellerZipCity Field = "seller.zip_city"
	FieldSellerCountry Field = "seller.country"

	FieldInvoiceNumberLabel Field = "meta.invoice_number.label"
	FieldInvoiceNumber      Field = "meta.invoice_number"
	FieldInvoiceDateLabel   Field = "meta.invoice_date.label"
	FieldInvoiceDate        Field = "meta.invoice_date"
	FieldOrderNumberLabel   Field = "meta.order_number.label"
	FieldOrderNumber        Field = "meta.order_number"
	FieldOrderDateLabel     Field = "meta.order_date.label"
	FieldOrderDate          Field = "meta.order_date"
	FieldVATNumberLabel     Field = "meta.vat_number.label"
	FieldVATNumber          Field = "meta.vat_number"
	FieldKvKNumberLabel     Field = "meta.kvk_number.label"
	FieldKvKNumber          Field = "meta.kvk_number"
)

// requiredFields todo campo que Compose pinta; Validate exige su posición.
var requiredFields = []Field{
	FieldTitle,
	FieldBuyerCompany, FieldBuyerName, FieldBuyerStreet, FieldBuyerZipCity, FieldBuyerCountry,
	FieldSellerEmail, FieldSellerStreet, FieldSellerZipCity, FieldSellerCountry,
	FieldInvoiceNumberLabel, FieldInvoiceNumber, FieldInvoiceDateLabel, FieldInvoiceDate,
	FieldOrderNumberLabel, FieldOrderNumber, FieldOrderDateLabel, FieldOrderDate,
	FieldVATNumberLabel, FieldVATNumber, FieldKvKNumberLabel, FieldKvKNumber,
}

// Position coordenada absoluta: X desde el borde izquierdo, Top desde el borde superior.
type Position struct {
	X   float64
	Top float64
}

// Box caja de imagen: esquina superior izquierda + tamaño.
type Box struct {
	X, Top        float64
	Width, Height float64
}

// Columns posiciones X de las columnas de la tabla de líneas.
type Columns struct {
	Description float64
	Quantity    float64
	Rate        float64
	Price       float64
	Subtotal    float64
}

// SummaryRow etiqueta y valor de una fila de totales.
type SummaryRow struct {
	LabelX float64
	ValueX float64
}

// Template plantilla fija de la factura. Unidades: puntos PDF.
type Template struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64

	FontFamily string
	FontSize   float64
	TitleScale float64

	Logo   Box
	Fields map[Field]Position

	// Tabla de líneas.
	TableTop   float64
	LineHeight float64
	Columns    Columns
	TitleWrap  int

	// Totales: separación antes del bloque y filas (excl. IVA, IVA, incl. IVA).
	SummaryGap       float64
	SummaryExclusive SummaryRow
	SummaryTax       SummaryRow
	SummaryInclusive SummaryRow

	// Bloque "Bedrijfsgegevens" del emisor.
	BusinessGap          float64
	BusinessX            float64
	PaymentX             float64
	BusinessLineHeight   float64
	BusinessSecondHeight float64
}

// DefaultTemplate la plantilla 600×750 de la factura.
func DefaultTemplate() Template {
	return Template{
		PageWidth:  600,
		PageHeight: 750,
		Margin:     50,

		FontFamily: "Times",
		FontSize:   12,
		TitleScale: 1.1,

		// Borde inferior 60 pt por debajo del inicio de texto.
		Logo: Box{X: 50, Top: 50, Width: 130, Height: 60},

		Fields: map[Field]Position{
			FieldTitle: {X: 600 - 50 - 180, Top: 90},

			FieldBuyerCompany: {X: 50, Top: 160},
			FieldBuyerName:    {X: 50, Top: 175},
			FieldBuyerStreet:  {X: 50, Top: 190},
			FieldBuyerZipCity: {X: 50, Top: 205},
			FieldBuyerCountry: {X: 50, Top: 220},

			FieldSellerEmail:   {X: 400, Top: 200},
			FieldSellerStreet:  {X: 400, Top: 215},
			FieldSellerZipCity: {X: 400, Top: 230},
			FieldSellerCountry: {X: 400, Top: 245},

			FieldInvoiceNumberLabel: {X: 50, Top: 340},
			FieldInvoiceNumber:      {X: 50, Top: 355},
			FieldInvoiceDateLabel:   {X: 50, Top: 380},
			FieldInvoiceDate:        {X: 50, Top: 395},
			FieldOrderNumberLabel:   {X: 260, Top: 340},
			FieldOrderNumber:        {X: 260, Top: 355},
			FieldOrderDateLabel:     {X: 260, Top: 380},
			FieldOrderDate:          {X: 260, Top: 395},
			FieldVATNumberLabel:     {X: 450, Top: 340},
			FieldVATNumber:          {X: 450, Top: 355},
			FieldKvKNumberLabel:     {X: 450, Top: 380},
			FieldKvKNumber:          {X: 450, Top: 395},
		},

		TableTop:   450,
		LineHeight: 20,
		Columns:    Columns{Description: 50, Quantity: 250, Rate: 330, Price: 410, Subtotal: 490},
		TitleWrap:  41,

		SummaryGap:       20,
		SummaryExclusive: SummaryRow{LabelX: 350, ValueX: 490},
		SummaryTax:       SummaryRow{LabelX: 370, ValueX: 495},
		SummaryInclusive: SummaryRow{LabelX: 345, ValueX: 490},

		BusinessGap:          80,
		BusinessX:            50,
		PaymentX:             345,
		BusinessLineHeight:   20,
		BusinessSecondHeight: 15,
	}
}

// Validate solo comprueba la geometría; los datos de negocio vienen validados.
func (t Template) Validate() error {
	var errs []error
	if t.PageWidth <= 0 || t.PageHeight <= 0 {
		errs = append(errs, fmt.Errorf("tamaño de página inválido %.0fx%.0f", t.PageWidth, t.PageHeight))
	}
	if t.Margin < 0 || 2*t.Margin >= t.PageHeight {
		errs = append(errs, fmt.Errorf("margen inválido %.0f", t.Margin))
	}
	if t.FontFamily == "" || t.FontSize <= 0 {
		errs = append(errs, errors.New("fuente no definida"))
	}
	if t.LineHeight <= 0 {
		errs = append(errs, errors.New("alto de línea debe ser > 0"))
	}
	if t.TitleWrap <= 0 {
		errs = append(errs, errors.New("ancho de corte de título debe ser > 0"))
	}
	if t.Logo.Width <= 0 || t.Logo.Height <= 0 {
		errs = append(errs, errors.New("caja del logo sin tamaño"))
	}
	for _, f := range requiredFields {
		if _, ok := t.Fields[f]; !ok {
			errs = append(errs, fmt.Errorf("falta posición para %q", f))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("pdf: plantilla inválida: %w", errors.Join(errs...))
	}
	return nil
}

// yFromTop convierte una distancia desde el borde superior a la coordenada Y
// (origen abajo a la izquierda) que usa el cursor.
func (t Template) yFromTop(top float64) float64 {
	return t.PageHeight - top
}

// textStart línea base inicial del cursor: margen superior.
func (t Template) textStart() float64 {
	return t.PageHeight - t.Margin
}
