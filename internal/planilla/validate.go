package planilla

import "strings"

// Observation codes accepted by the workflow service.
const (
	ObservationInvoicePayment    = "PAGO FACTURA"
	ObservationSiteManagementFee = "GIRO HONORARIOS ADMINISTRACION OBRA"
	ObservationRevolvingFund     = "GIRO DE RECURSOS FONDO ROTATORIO"
)

// ObservationOptions returns the selectable observation codes in display order.
func ObservationOptions() []string {
	return []string{
		ObservationInvoicePayment,
		ObservationSiteManagementFee,
		ObservationRevolvingFund,
	}
}

func validObservation(code string) bool {
	for _, opt := range ObservationOptions() {
		if opt == code {
			return true
		}
	}
	return false
}

// InvoiceForm is the raw invoice form as typed by the user.
type InvoiceForm struct {
	ObservationCode string `json:"observation_code"`
	InvoiceNumber   string `json:"invoice_number"`
	TaxID           string `json:"tax_id"`
	PayeeName       string `json:"payee_name"`
	AmountToPay     string `json:"amount_to_pay"`
}

// Draft is a validated invoice form, normalized and ready to register.
type Draft struct {
	ObservationCode string
	InvoiceNumber   string
	TaxID           string
	PayeeName       string
	AmountToPay     int64
}

// ValidateInvoiceForm checks every field of form and returns either a Draft or ValidationErrors
// listing all failures at once.
func ValidateInvoiceForm(form InvoiceForm) (Draft, error) {
	var errs ValidationErrors
	draft := Draft{
		ObservationCode: form.ObservationCode,
		InvoiceNumber:   AlphanumericOnly(strings.TrimSpace(form.InvoiceNumber)),
		PayeeName:       strings.TrimSpace(form.PayeeName),
	}

	if draft.PayeeName == "" {
		errs = append(errs, requiredf(FieldPayeeName, "El nombre es requerido"))
	}
	if draft.InvoiceNumber == "" {
		errs = append(errs, requiredf(FieldInvoiceNumber, "El número de factura es requerido"))
	}

	switch {
	case strings.TrimSpace(draft.ObservationCode) == "":
		errs = append(errs, requiredf(FieldObservationCode, "Debe seleccionar una observación"))
	case !validObservation(draft.ObservationCode):
		errs = append(errs, &FieldError{Field: FieldObservationCode, Kind: ErrInvalidObservation, Msg: "La observación seleccionada no es válida"})
	}

	taxID, err := ValidateTaxID(form.TaxID)
	if err != nil {
		errs = append(errs, err.(*FieldError))
	}
	draft.TaxID = taxID

	if strings.TrimSpace(form.AmountToPay) == "" {
		errs = append(errs, requiredf(FieldAmountToPay, "El valor a pagar es requerido"))
	} else if amount, err := ParseAmount(form.AmountToPay); err != nil {
		errs = append(errs, &FieldError{Field: FieldAmountToPay, Kind: ErrInvalidAmount, Msg: "El valor debe ser un número válido"})
	} else {
		draft.AmountToPay = amount
	}

	if len(errs) > 0 {
		return Draft{}, errs
	}
	return draft, nil
}

// ValidateTaxID requires a tax id (NIT) of 9 or 10 digits once formatting is stripped.
// The returned error, when non-nil, is always a *FieldError.
func ValidateTaxID(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", requiredf(FieldTaxID, "El NIT es requerido")
	}
	digits := DigitsOnly(raw)
	if len(digits) < 9 || len(digits) > 10 {
		return "", &FieldError{Field: FieldTaxID, Kind: ErrInvalidTaxID, Msg: "El NIT debe contener entre 9 y 10 dígitos"}
	}
	return digits, nil
}
