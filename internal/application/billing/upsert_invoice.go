package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	"github.com/jhoicas/gst-billing-api/internal/domain/entity"
	"github.com/jhoicas/gst-billing-api/internal/domain/repository"
	"github.com/jhoicas/gst-billing-api/internal/domain/tax"
	"github.com/jhoicas/gst-billing-api/pkg/money"
)

// UpsertDeps dependencias del orquestador.
type UpsertDeps struct {
	Customers repository.CustomerRepository
	Products  repository.ProductRepository
	Invoices  repository.InvoiceRepository
	History   repository.InvoiceHistoryRepository
	Rates     repository.HSNRateRepository
	Quota     *QuotaGuard
	Renderer  ArtifactRenderer
	Ledger    LedgerSyncer
	Locker    InvoiceLocker
	Metrics   Metrics
}

// UpsertInvoiceUseCase crea o actualiza una factura y su historial por número de factura.
type UpsertInvoiceUseCase struct {
	deps       UpsertDeps
	missPolicy tax.MissPolicy
	log        zerolog.Logger
	now        func() time.Time
}

// NewUpsertInvoiceUseCase construye el caso de uso.
func NewUpsertInvoiceUseCase(deps UpsertDeps, missPolicy tax.MissPolicy, log zerolog.Logger) *UpsertInvoiceUseCase {
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	return &UpsertInvoiceUseCase{deps: deps, missPolicy: missPolicy, log: log, now: time.Now}
}

// Upsert ejecuta el ciclo completo en orden estricto:
//
//	validar → cuota → normalizar/calcular → lock(número) → cliente → líneas → factura (upsert) → PDF → historial (upsert) → libro → tamaño
//
// Con la cuota excedida devuelve *QuotaExceededError sin escribir nada.
// No hay transacción entre documentos: un fallo intermedio deja escrituras parciales (sin compensación).
func (uc *UpsertInvoiceUseCase) Upsert(ctx context.Context, in dto.UpsertInvoiceRequest) (*dto.UpsertInvoiceResponse, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	// 1) Cuota
	status, err := uc.deps.Quota.Check(ctx)
	if err != nil {
		return nil, fmt.Errorf("upsert: verificar cuota: %w", err)
	}
	if !status.OK {
		adv := uc.deps.Quota.Advisory(status)
		uc.log.Warn().
			Str("invoice_number", in.InvoiceNumber).
			Str("current_size", adv.Advisory.CurrentSize).
			Msg("cuota de almacenamiento excedida, no se persiste la factura")
		return nil, adv
	}

	// Normalización y cálculo son puros (más una lectura de tarifas): se resuelven antes de
	// escribir para que un HSN sin tarifa no deje cliente y líneas huérfanas.
	lines, err := tax.NormalizeAll(toLineInputs(in.Products))
	if err != nil {
		return nil, err
	}
	summary, err := uc.computeTax(ctx, lines)
	if err != nil {
		return nil, err
	}

	unlock, err := uc.deps.Locker.Lock(ctx, "invoice:"+in.InvoiceNumber)
	if err != nil {
		return nil, fmt.Errorf("upsert: bloquear factura %s: %w", in.InvoiceNumber, err)
	}
	defer unlock()

	now := uc.now()

	// 2) Cliente
	customer := &entity.Customer{
		Name:      in.CustomerInfo.Name,
		Phone:     in.CustomerInfo.Phone,
		GSTNumber: in.CustomerInfo.GSTNumber,
		CreatedAt: now,
	}
	if err := uc.deps.Customers.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("upsert: guardar cliente: %w", err)
	}

	// 3) Líneas
	products := make([]*entity.Product, 0, len(lines))
	productIDs := make([]string, 0, len(lines))
	for _, l := range lines {
		p := &entity.Product{
			Name:          l.Name,
			HSN:           l.HSN,
			Quantity:      l.Quantity,
			InclusiveRate: l.Rate,
			GST:           l.GST,
			Rate:          l.ExclusiveRate,
			Amount:        l.Amount,
			CreatedAt:     now,
		}
		if err := uc.deps.Products.Create(ctx, p); err != nil {
			return nil, fmt.Errorf("upsert: guardar producto %q: %w", l.Name, err)
		}
		products = append(products, p)
		productIDs = append(productIDs, p.ID)
	}

	// 4) Factura: upsert por número
	invoice, created, err := uc.upsertInvoice(ctx, in.InvoiceNumber, date, customer, productIDs, summary, now)
	if err != nil {
		return nil, err
	}

	// 5) PDF
	pdfPath, err := uc.deps.Renderer.RenderInvoice(ctx, invoice, products, summary)
	if err != nil {
		return nil, fmt.Errorf("upsert: generar PDF: %w", err)
	}

	// 6) Historial: upsert por número
	history, err := uc.upsertHistory(ctx, invoice, customer, pdfPath, now)
	if err != nil {
		return nil, err
	}

	// 7) Libro tabular
	if err := uc.deps.Ledger.Sync(ctx, history); err != nil {
		return nil, fmt.Errorf("upsert: sincronizar libro: %w", err)
	}

	uc.deps.Metrics.ObserveUpsert(created)
	uc.log.Info().
		Str("invoice_number", invoice.InvoiceNumber).
		Bool("created", created).
		Str("final_amount", money.Fixed2(invoice.FinalAmount)).
		Str("pdf", pdfPath).
		Msg("factura guardada")

	// 8) Tamaño actual para la respuesta
	size, err := uc.deps.Quota.FreshSizeMB(ctx)
	if err != nil {
		return nil, fmt.Errorf("upsert: calcular tamaño: %w", err)
	}

	return &dto.UpsertInvoiceResponse{
		Message:       "Invoice created/updated successfully",
		Invoice:       toInvoiceResponse(invoice),
		History:       toHistoryResponse(history),
		LineItems:     toProductResponses(products),
		PDFPath:       pdfPath,
		CurrentDBSize: size,
	}, nil
}

func (uc *UpsertInvoiceUseCase) computeTax(ctx context.Context, lines []tax.NormalizedLine) (tax.Result, error) {
	items := make([]tax.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, tax.Item{HSN: l.HSN, Amount: l.Amount})
	}
	found, err := uc.deps.Rates.FindByCodes(ctx, tax.Codes(items))
	if err != nil {
		return tax.Result{}, fmt.Errorf("upsert: consultar tarifas HSN: %w", err)
	}
	table := make(tax.RateTable, len(found))
	for _, r := range found {
		table[r.HSN] = tax.Rates{CGST: r.CGST, SGST: r.SGST}
	}
	res, err := tax.Compute(items, table, uc.missPolicy)
	if err != nil {
		if codes, ok := tax.AsLookupMiss(err); ok {
			uc.deps.Metrics.ObserveLookupMiss(len(codes))
		}
		return tax.Result{}, err
	}
	if len(res.MissingCodes) > 0 {
		uc.deps.Metrics.ObserveLookupMiss(len(res.MissingCodes))
		uc.log.Warn().
			Strs("hsn", res.MissingCodes).
			Msg("HSN sin tarifa: se aplica 0% por política configurada")
	}
	return res, nil
}

func (uc *UpsertInvoiceUseCase) upsertInvoice(
	ctx context.Context,
	number string,
	date time.Time,
	customer *entity.Customer,
	productIDs []string,
	summary tax.Result,
	now time.Time,
) (*entity.Invoice, bool, error) {
	inv, err := uc.deps.Invoices.FindOne(ctx, repository.Filter{InvoiceNumber: number})
	if err != nil {
		return nil, false, fmt.Errorf("upsert: buscar factura: %w", err)
	}
	created := inv == nil
	if created {
		inv = &entity.Invoice{InvoiceNumber: number, CreatedAt: now}
	}
	inv.Date = date
	inv.CustomerName = customer.Name
	inv.CustomerGSTNumber = customer.GSTNumber
	inv.ProductIDs = productIDs
	inv.TotalAmount = summary.TotalAmount
	inv.CGST = summary.CGST
	inv.SGST = summary.SGST
	inv.FinalAmount = summary.FinalAmount
	inv.UpdatedAt = now

	if created {
		err = uc.deps.Invoices.Create(ctx, inv)
	} else {
		err = uc.deps.Invoices.Save(ctx, inv)
	}
	if err != nil {
		return nil, false, fmt.Errorf("upsert: guardar factura: %w", err)
	}
	return inv, created, nil
}

func (uc *UpsertInvoiceUseCase) upsertHistory(
	ctx context.Context,
	inv *entity.Invoice,
	customer *entity.Customer,
	pdfPath string,
	now time.Time,
) (*entity.InvoiceHistory, error) {
	h, err := uc.deps.History.FindOne(ctx, repository.Filter{InvoiceNumber: inv.InvoiceNumber})
	if err != nil {
		return nil, fmt.Errorf("upsert: buscar historial: %w", err)
	}
	created := h == nil
	if created {
		h = &entity.InvoiceHistory{InvoiceNumber: inv.InvoiceNumber, CreatedAt: now}
	}
	h.Date = inv.Date
	h.CustomerName = customer.Name
	h.CustomerPhoneNumber = customer.Phone
	h.CustomerGSTNumber = customer.GSTNumber
	h.ProductIDs = append([]string(nil), inv.ProductIDs...)
	h.TotalAmount = inv.TotalAmount
	h.CGST = inv.CGST
	h.SGST = inv.SGST
	h.FinalAmount = inv.FinalAmount
	h.PDFPath = pdfPath
	h.UpdatedAt = now

	if created {
		err = uc.deps.History.Create(ctx, h)
	} else {
		err = uc.deps.History.Save(ctx, h)
	}
	if err != nil {
		return nil, fmt.Errorf("upsert: guardar historial: %w", err)
	}
	return h, nil
}

func toLineInputs(products []dto.ProductInput) []tax.LineInput {
	out := make([]tax.LineInput, 0, len(products))
	for _, p := range products {
		out = append(out, tax.LineInput{
			Name:     p.Name,
			HSN:      p.HSN,
			Quantity: p.Quantity,
			Rate:     p.Rate,
			GST:      p.GST,
		})
	}
	return out
}
