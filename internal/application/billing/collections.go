package billing

// Nombres de colección expuestos al cliente (purga y aviso de cuota).
const (
	CollectionInvoice        = "Invoice"
	CollectionInvoiceHistory = "InvoiceHistory"
	CollectionProduct        = "Product"
	CollectionCustomer       = "Customer"
)

// Collections orden canónico usado en el aviso de cuota.
var Collections = []string{
	CollectionInvoice,
	CollectionInvoiceHistory,
	CollectionProduct,
	CollectionCustomer,
}
