package pdf

import (
	"strconv"

	appbilling "github.com/jhoicas/factuur-api/internal/application/billing"
	"github.com/jhoicas/factuur-api/internal/domain/tax"
)

// Etiquetas fijas (locale nl-NL).
const (
	labelInvoice        = "Factuur"
	labelInvoiceNumber  = "Factuurnummer"
	labelInvoiceDate    = "Factuur Datum"
	labelOrderNumber    = "Bestelnummer"
	labelOrderDate      = "Bestel Datum"
	labelVATNumber      = "BTW-nummer"
	labelKvKNumber      = "KvK-nummer"
	labelDescription    = "Omschrijving"
	labelQuantity       = "Aantal"
	labelRate           = "BTW %"
	labelPrice          = "Prijs"
	labelSubtotal       = "Subtotal"
	labelTotalExclusive = "Totaal excl. BTW"
	labelTaxAmount      = "BTW Bedrag"
	labelTotalInclusive = "Totaal incl. BTW"
	labelBusiness       = "Bedrijfsgegevens"
	labelPaymentMethod  = "Betaalmethode"
)

// Letterhead datos propios del emisor: bloque del vendedor y "Bedrijfsgegevens".
type Letterhead struct {
	Email         string
	Street        string
	ZipCity       string
	Country       string
	KvKNumber     string
	VATNumber     string
	PaymentMethod string
}

// DefaultLetterhead valores de ejemplo del emisor.
func DefaultLetterhead() Letterhead {
	return Letterhead{
		Email:         "jouw-mail@gmail.com",
		Street:        "Straatnaam 12",
		ZipCity:       "9900 AZ Groningen",
		Country:       "Nederland",
		KvKNumber:     "1234567",
		VATNumber:     "NL123456789B01",
		PaymentMethod: "Betaald via bolPlatform",
	}
}

// OpKind tipo de operación de dibujo.
type OpKind int

const (
	OpText OpKind = iota
	OpImage
)

// Op una operación de dibujo. Coordenadas con origen abajo a la izquierda:
// para texto Y es la línea base; para imágenes, el borde inferior.
type Op struct {
	Kind   OpKind
	Text   string
	X, Y   float64
	Size   float64
	Bold   bool
	Width  float64
	Height float64
}

// Page operaciones de una página en orden de dibujo.
type Page struct {
	Ops []Op
}

// Document resultado de la maquetación, antes de serializar.
type Document struct {
	Pages []Page
}

// Compose maqueta la factura. Es una función pura: no lee ficheros ni serializa.
//
// Los bloques fijos se pintan en posiciones absolutas de la plantilla; la tabla de
// líneas, los totales y el bloque del emisor usan un único cursor y que solo baja
// dentro de una página. Si una fila no cabe sobre el margen inferior se abre una
// página nueva.
func Compose(tpl Template, lh Letterhead, inv *appbilling.InvoiceForPDF) Document {
	c := &composer{tpl: tpl}
	c.newPage()

	c.header(inv)
	c.buyer(inv.Buyer)
	c.seller(lh)
	c.metadata(inv)
	c.lines(inv.Lines)
	c.summary(inv.Totals)
	c.business(lh)

	return c.doc
}

type composer struct {
	tpl Template
	doc Document
	y   float64
}

func (c *composer) newPage() {
	c.doc.Pages = append(c.doc.Pages, Page{})
	c.y = c.tpl.textStart()
}

func (c *composer) current() *Page {
	return &c.doc.Pages[len(c.doc.Pages)-1]
}

func (c *composer) text(s string, x, y float64, bold bool) {
	c.sizedText(s, x, y, c.tpl.FontSize, bold)
}

func (c *composer) sizedText(s string, x, y, size float64, bold bool) {
	p := c.current()
	p.Ops = append(p.Ops, Op{Kind: OpText, Text: s, X: x, Y: y, Size: size, Bold: bold})
}

// at pinta en la posición fija de un campo.
func (c *composer) at(f Field, s string, bold bool) {
	pos := c.tpl.Fields[f]
	c.text(s, pos.X, c.tpl.yFromTop(pos.Top), bold)
}

// fits indica si se puede bajar below puntos desde el cursor sin cruzar el margen.
func (c *composer) fits(below float64) bool {
	return c.y-below >= c.tpl.Margin
}

func (c *composer) header(inv *appbilling.InvoiceForPDF) {
	logo := c.tpl.Logo
	p := c.current()
	p.Ops = append(p.Ops, Op{
		Kind:   OpImage,
		X:      logo.X,
		Y:      c.tpl.yFromTop(logo.Top + logo.Height),
		Width:  logo.Width,
		Height: logo.Height,
	})

	pos := c.tpl.Fields[FieldTitle]
	c.sizedText(labelInvoice+" "+inv.Number, pos.X, c.tpl.yFromTop(pos.Top),
		c.tpl.FontSize*c.tpl.TitleScale, true)
}

func (c *composer) buyer(b appbilling.BuyerForPDF) {
	c.at(FieldBuyerCompany, b.Company, true)
	c.at(FieldBuyerName, b.Name, false)
	c.at(FieldBuyerStreet, b.Street, false)
	c.at(FieldBuyerZipCity, b.ZipCode+" "+b.City, false)
	c.at(FieldBuyerCountry, CountryName(b.CountryCode), false)
}

func (c *composer) seller(lh Letterhead) {
	c.at(FieldSellerEmail, lh.Email, false)
	c.at(FieldSellerStreet, lh.Street, false)
	c.at(FieldSellerZipCity, lh.ZipCity, false)
	c.at(FieldSellerCountry, lh.Country, false)
}

func (c *composer) metadata(inv *appbilling.InvoiceForPDF) {
	c.at(FieldInvoiceNumberLabel, labelInvoiceNumber, true)
	c.at(FieldInvoiceNumber, inv.Number, false)
	c.at(FieldInvoiceDateLabel, labelInvoiceDate, true)
	c.at(FieldInvoiceDate, FormatDate(inv.IssuedAt), false)
	c.at(FieldOrderNumberLabel, labelOrderNumber, true)
	c.at(FieldOrderNumber, inv.OrderID, false)
	c.at(FieldOrderDateLabel, labelOrderDate, true)
	c.at(FieldOrderDate, FormatDate(inv.OrderPlacedAt), false)
	c.at(FieldVATNumberLabel, labelVATNumber, true)
	c.at(FieldVATNumber, inv.Buyer.VATNumber, false)
	c.at(FieldKvKNumberLabel, labelKvKNumber, true)
	c.at(FieldKvKNumber, inv.Buyer.KvKNumber, false)
}

func (c *composer) tableHeader() {
	cols := c.tpl.Columns
	c.text(labelDescription, cols.Description, c.y, true)
	c.text(labelQuantity, cols.Quantity, c.y, true)
	c.text(labelRate, cols.Rate, c.y, true)
	c.text(labelPrice, cols.Price, c.y, true)
	c.text(labelSubtotal, cols.Subtotal, c.y, true)
	c.y -= c.tpl.LineHeight
}

func (c *composer) lines(lines []appbilling.InvoiceLineForPDF) {
	// Primera página: la tabla empieza en su origen fijo.
	c.y = c.tpl.yFromTop(c.tpl.TableTop)
	c.tableHeader()

	cols := c.tpl.Columns
	for _, l := range lines {
		first, rest := SplitTitle(l.Title, c.tpl.TitleWrap)
		var extra float64
		if rest != "" {
			extra = c.tpl.LineHeight
		}
		if !c.fits(extra) {
			c.newPage()
			c.tableHeader()
		}

		b := l.Breakdown
		c.text(first, cols.Description, c.y, false)
		c.text(strconv.Itoa(b.Quantity), cols.Quantity, c.y, false)
		c.text(tax.PercentLabel(b.Rate), cols.Rate, c.y, false)
		c.text(FormatEuro(b.TaxExclusiveUnitPrice), cols.Price, c.y, false)
		c.text(FormatEuro(b.SubtotalExclusiveTax), cols.Subtotal, c.y, false)
		if rest != "" {
			c.y -= c.tpl.LineHeight
			c.text(rest, cols.Description, c.y, false)
		}
		c.y -= c.tpl.LineHeight
	}
}

func (c *composer) summary(t tax.Totals) {
	c.y -= c.tpl.SummaryGap
	if !c.fits(2 * c.tpl.LineHeight) {
		c.newPage()
	}
	ex, tx, in := c.tpl.SummaryExclusive, c.tpl.SummaryTax, c.tpl.SummaryInclusive

	c.text(labelTotalExclusive, ex.LabelX, c.y, false)
	c.text(FormatEuro(t.TotalExclusiveTax), ex.ValueX, c.y, false)
	c.y -= c.tpl.LineHeight
	c.text(labelTaxAmount, tx.LabelX, c.y, false)
	c.text(FormatEuro(t.TotalTaxAmount), tx.ValueX, c.y, false)
	c.y -= c.tpl.LineHeight
	c.text(labelTotalInclusive, in.LabelX, c.y, true)
	c.text(FormatEuro(t.TotalInclusiveTax()), in.ValueX, c.y, true)
	c.y -= c.tpl.BusinessGap
}

func (c *composer) business(lh Letterhead) {
	if !c.fits(c.tpl.BusinessLineHeight + c.tpl.BusinessSecondHeight) {
		c.newPage()
	}
	c.text(labelBusiness, c.tpl.BusinessX, c.y, true)
	c.text(labelPaymentMethod+"         "+lh.PaymentMethod, c.tpl.PaymentX, c.y, false)
	c.y -= c.tpl.BusinessLineHeight
	c.text(labelKvKNumber+"           "+lh.KvKNumber, c.tpl.BusinessX, c.y, false)
	c.y -= c.tpl.BusinessSecondHeight
	c.text(labelVATNumber+"          "+lh.VATNumber, c.tpl.BusinessX, c.y, false)
}
