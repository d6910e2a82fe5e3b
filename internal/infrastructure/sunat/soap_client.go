package sunat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jhoicas/facturacion-sunat/internal/domain"
	"github.com/jhoicas/facturacion-sunat/internal/domain/entity"
	pkgsunat "github.com/jhoicas/facturacion-sunat/pkg/sunat"
)

// ── Constantes de entorno ──────────────────────────────────────────────────────

const (
	// EnvBeta es el ambiente de pruebas de SUNAT (acepta credenciales MODDATOS).
	EnvBeta = "beta"
	// EnvProd es el ambiente de producción.
	EnvProd = "prod"

	soapURLBeta = "https://e-beta.sunat.gob.pe/ol-ti-itcpfegem-beta/billService"
	soapURLProd = "https://e-factura.sunat.gob.pe/ol-ti-itcpfegem/billService"

	nsSoapEnv = "http://schemas.xmlsoap.org/soap/envelope/"
	nsService = "http://service.sunat.gob.pe"
	nsWsse    = "http://docs.oasis-open.org/wss/2004/01/oasis-200401-wss-wssecurity-secext-1.0.xsd"

	// getStatus: códigos de estado del ticket.
	ticketStatusDone       = "0"
	ticketStatusInProgress = "98"
	ticketStatusWithErrors = "99"
)

// ClientConfig configura el cliente del billService.
type ClientConfig struct {
	Environment string        // "beta" | "prod"
	EndpointURL string        // si viene, manda sobre Environment (útil en tests)
	Timeout     time.Duration // timeout HTTP por intento; 0 = 60 s
}

// BillServiceClient cliente SOAP 1.1 del billService de SUNAT.
// Usa net/http de la stdlib; la autenticación va por WS-Security UsernameToken
// con password en texto plano sobre TLS, tal como exige el servicio.
type BillServiceClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewBillServiceClient construye el cliente. El timeout por defecto es
// generoso (60 s) porque el billService puede tardar varios segundos.
func NewBillServiceClient(cfg ClientConfig) *BillServiceClient {
	endpoint := cfg.EndpointURL
	if endpoint == "" {
		if cfg.Environment == EnvProd {
			endpoint = soapURLProd
		} else {
			endpoint = soapURLBeta
		}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BillServiceClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ── Estructuras SOAP ──────────────────────────────────────────────────────────

type soapEnvelope struct {
	XMLName   xml.Name   `xml:"soapenv:Envelope"`
	XmlnsSoap string     `xml:"xmlns:soapenv,attr"`
	XmlnsSer  string     `xml:"xmlns:ser,attr"`
	XmlnsWsse string     `xml:"xmlns:wsse,attr"`
	Header    soapHeader `xml:"soapenv:Header"`
	Body      soapBody   `xml:"soapenv:Body"`
}

type soapHeader struct {
	Security wsseSecurity `xml:"wsse:Security"`
}

type wsseSecurity struct {
	UsernameToken wsseUsernameToken `xml:"wsse:UsernameToken"`
}

type wsseUsernameToken struct {
	Username string `xml:"wsse:Username"`
	Password string `xml:"wsse:Password"`
}

type soapBody struct {
	Content interface{}
}

func (b soapBody) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	start.Name.Local = "soapenv:Body"
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	if err := e.Encode(b.Content); err != nil {
		return err
	}
	return e.EncodeToken(start.End())
}

type sendBillBody struct {
	XMLName     xml.Name `xml:"ser:sendBill"`
	FileName    string   `xml:"fileName"`
	ContentFile string   `xml:"contentFile"` // ZIP en Base64
}

type sendSummaryBody struct {
	XMLName     xml.Name `xml:"ser:sendSummary"`
	FileName    string   `xml:"fileName"`
	ContentFile string   `xml:"contentFile"`
}

type getStatusBody struct {
	XMLName xml.Name `xml:"ser:getStatus"`
	Ticket  string   `xml:"ticket"`
}

// ── Estructuras de respuesta ──────────────────────────────────────────────────

type soapResponseEnvelope struct {
	Body soapResponseBody `xml:"Body"`
}

type soapResponseBody struct {
	SendBillResponse    *sendBillResponse    `xml:"sendBillResponse"`
	SendSummaryResponse *sendSummaryResponse `xml:"sendSummaryResponse"`
	GetStatusResponse   *getStatusResponse   `xml:"getStatusResponse"`
	Fault               *soapFault           `xml:"Fault"`
}

type sendBillResponse struct {
	ApplicationResponse string `xml:"applicationResponse"` // CDR (ZIP) en Base64
}

type sendSummaryResponse struct {
	Ticket string `xml:"ticket"`
}

type getStatusResponse struct {
	Status ticketStatus `xml:"status"`
}

type ticketStatus struct {
	StatusCode string `xml:"statusCode"`
	Content    string `xml:"content"` // CDR (ZIP) en Base64 cuando ya terminó
}

type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
}

// ── Operaciones ───────────────────────────────────────────────────────────────

// SendBill envía el ZIP de un comprobante individual. La respuesta síncrona
// trae el CDR; la ausencia de CDR en una respuesta exitosa es un error.
func (c *BillServiceClient) SendBill(ctx context.Context, zipName string, zipContent []byte, creds pkgsunat.SOLCredentials) (*entity.Receipt, error) {
	body := &sendBillBody{
		FileName:    zipName,
		ContentFile: base64.StdEncoding.EncodeToString(zipContent),
	}
	respBody, err := c.call(ctx, "sendBill", creds, body)
	if err != nil {
		return nil, err
	}
	if respBody.SendBillResponse == nil || respBody.SendBillResponse.ApplicationResponse == "" {
		return nil, domain.ErrNoReceipt
	}
	cdrZip, err := base64.StdEncoding.DecodeString(respBody.SendBillResponse.ApplicationResponse)
	if err != nil {
		return nil, fmt.Errorf("sendBill: decodificar CDR: %w", err)
	}
	return ParseCDR(cdrZip)
}

// SendSummary envía un resumen o comunicación de baja. SUNAT lo procesa en
// diferido y responde con un ticket para consultar por getStatus.
func (c *BillServiceClient) SendSummary(ctx context.Context, zipName string, zipContent []byte, creds pkgsunat.SOLCredentials) (string, error) {
	body := &sendSummaryBody{
		FileName:    zipName,
		ContentFile: base64.StdEncoding.EncodeToString(zipContent),
	}
	respBody, err := c.call(ctx, "sendSummary", creds, body)
	if err != nil {
		return "", err
	}
	if respBody.SendSummaryResponse == nil || respBody.SendSummaryResponse.Ticket == "" {
		return "", errors.Join(domain.ErrNoReceipt, errors.New("sendSummary sin ticket"))
	}
	return respBody.SendSummaryResponse.Ticket, nil
}

// GetStatus consulta un ticket. Si el procesamiento sigue en curso devuelve
// un recibo con IsTicket() == true; si terminó, el CDR ya parseado.
func (c *BillServiceClient) GetStatus(ctx context.Context, ticket string, creds pkgsunat.SOLCredentials) (*entity.Receipt, error) {
	respBody, err := c.call(ctx, "getStatus", creds, &getStatusBody{Ticket: ticket})
	if err != nil {
		return nil, err
	}
	if respBody.GetStatusResponse == nil {
		return nil, domain.ErrNoReceipt
	}
	status := respBody.GetStatusResponse.Status
	if status.StatusCode == ticketStatusInProgress {
		return &entity.Receipt{
			ResponseCode: entity.ReceiptCodeTicket,
			Description:  ticket,
			ReceivedAt:   time.Now(),
		}, nil
	}
	if status.StatusCode != ticketStatusDone && status.StatusCode != ticketStatusWithErrors {
		return nil, &domain.RemoteFaultError{Code: status.StatusCode, Message: "getStatus: estado de ticket desconocido"}
	}
	if status.Content == "" {
		return nil, domain.ErrNoReceipt
	}
	cdrZip, err := base64.StdEncoding.DecodeString(status.Content)
	if err != nil {
		return nil, fmt.Errorf("getStatus: decodificar CDR: %w", err)
	}
	return ParseCDR(cdrZip)
}

// call serializa el envelope, ejecuta el POST y clasifica las fallas:
// errores de red y HTTP 5xx son transitorios; un SOAP Fault es terminal.
func (c *BillServiceClient) call(ctx context.Context, op string, creds pkgsunat.SOLCredentials, content interface{}) (*soapResponseBody, error) {
	envelope := soapEnvelope{
		XmlnsSoap: nsSoapEnv,
		XmlnsSer:  nsService,
		XmlnsWsse: nsWsse,
		Header: soapHeader{
			Security: wsseSecurity{
				UsernameToken: wsseUsernameToken{
					Username: creds.Username(),
					Password: creds.Password,
				},
			},
		},
		Body: soapBody{Content: content},
	}
	payload, err := xml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("soap: serializar envelope %s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint,
		bytes.NewReader(append([]byte(xml.Header), payload...)))
	if err != nil {
		return nil, fmt.Errorf("soap: crear request %s: %w", op, err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &domain.TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	rawBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20)) // max 4 MB
	if err != nil {
		return nil, &domain.TransientError{Op: op, Err: err}
	}
	if resp.StatusCode >= 500 {
		return nil, &domain.TransientError{Op: op, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var envResp soapResponseEnvelope
	if err := xml.Unmarshal(rawBody, &envResp); err != nil {
		return nil, fmt.Errorf("soap: parsear respuesta de %s: %w", op, err)
	}
	if envResp.Body.Fault != nil {
		return nil, &domain.RemoteFaultError{
			Code:    envResp.Body.Fault.FaultCode,
			Message: envResp.Body.Fault.FaultString,
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.RemoteFaultError{
			Code:    fmt.Sprintf("HTTP-%d", resp.StatusCode),
			Message: "respuesta no exitosa del billService",
		}
	}
	return &envResp.Body, nil
}
