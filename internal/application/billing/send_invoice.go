package billing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jhoicas/gst-billing-api/internal/application/dto"
	"github.com/jhoicas/gst-billing-api/internal/domain"
)

const greetingText = "Hello! Here is your invoice."

// SendInvoiceUseCase envía un PDF ya generado por el canal de mensajería.
type SendInvoiceUseCase struct {
	sender      MessageSender
	invoicesDir string
	log         zerolog.Logger
}

func NewSendInvoiceUseCase(sender MessageSender, invoicesDir string, log zerolog.Logger) *SendInvoiceUseCase {
	return &SendInvoiceUseCase{sender: sender, invoicesDir: invoicesDir, log: log}
}

// Send exige cliente listo y un archivo existente dentro del directorio de facturas.
// Envía primero el saludo y después el documento.
func (uc *SendInvoiceUseCase) Send(ctx context.Context, in dto.SendInvoiceRequest) (*dto.MessageResponse, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if uc.sender == nil || !uc.sender.IsReady() {
		return nil, domain.ErrMessagingNotReady
	}
	path, err := uc.resolve(in.PDFPath)
	if err != nil {
		return nil, err
	}

	if err := uc.sender.SendText(ctx, in.Phone, greetingText); err != nil {
		return nil, fmt.Errorf("enviar saludo: %w", err)
	}
	if err := uc.sender.SendDocument(ctx, in.Phone, path); err != nil {
		return nil, fmt.Errorf("enviar PDF: %w", err)
	}
	uc.log.Info().Str("phone", in.Phone).Str("pdf", path).Msg("factura enviada")
	return &dto.MessageResponse{Message: "Invoice sent successfully via WhatsApp"}, nil
}

// resolve acepta rutas relativas al directorio de facturas o rutas que ya lo incluyen.
func (uc *SendInvoiceUseCase) resolve(p string) (string, error) {
	base, err := filepath.Abs(uc.invoicesDir)
	if err != nil {
		return "", fmt.Errorf("directorio de facturas: %w", err)
	}
	candidate := filepath.Clean(p)
	if !filepath.IsAbs(candidate) {
		rel := filepath.Join(uc.invoicesDir, candidate)
		if strings.HasPrefix(candidate, filepath.Clean(uc.invoicesDir)+string(filepath.Separator)) {
			rel = candidate
		}
		candidate = rel
	}
	abs, err := filepath.Abs(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: pdfPath", domain.ErrInvalidInput)
	}
	if abs != base && !strings.HasPrefix(abs, base+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: pdfPath fuera del directorio de facturas", domain.ErrInvalidInput)
	}
	info, err := os.Stat(abs)
	if err != nil || info.IsDir() {
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return "", domain.ErrArtifactNotFound
		}
		return "", fmt.Errorf("pdf: %w", err)
	}
	return abs, nil
}
