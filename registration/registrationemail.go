package registration

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	textTemplate "text/template"
	"time"

	"github.com/International-Combat-Archery-Alliance/email"
)

//go:embed templates
var templates embed.FS

const confirmationSubject = "Webinar Registration Confirmation"

// Invoice is what the confirmation email shows to the registrant.
type Invoice struct {
	Surname    string
	OtherNames string
	Email      string
	Phone      string
	Role       string
	Price      string
	PinCode    string
	Year       int
}

func (i Invoice) Name() string {
	return strings.TrimSpace(i.Surname + " " + i.OtherNames)
}

func invoiceFromRegistration(reg Registration, now time.Time) Invoice {
	return Invoice{
		Surname:    reg.Surname,
		OtherNames: reg.OtherNames,
		Email:      reg.Email,
		Phone:      reg.Phone,
		Role:       string(reg.Role),
		Price:      string(reg.PriceOption),
		PinCode:    reg.PinCode,
		Year:       now.Year(),
	}
}

func SendRegistrationConfirmationEmail(ctx context.Context, emailSender email.Sender, fromAddress string, reg Registration) error {
	return SendInvoiceEmail(ctx, emailSender, fromAddress, invoiceFromRegistration(reg, time.Now()))
}

func SendInvoiceEmail(ctx context.Context, emailSender email.Sender, fromAddress string, invoice Invoice) error {
	htmlBody, err := makeHtmlBody(invoice)
	if err != nil {
		return err
	}

	textOnlyBody, err := makeTextOnlyBody(invoice)
	if err != nil {
		return err
	}

	return emailSender.SendEmail(ctx, email.Email{
		FromAddress: fmt.Sprintf("Webinar Team <%s>", fromAddress),
		ToAddresses: []string{invoice.Email},
		Subject:     confirmationSubject,
		HTMLBody:    htmlBody,
		TextBody:    textOnlyBody,
	})
}

func makeHtmlBody(invoice Invoice) (string, error) {
	tmpl, err := template.New("registration-confirmation.tmpl").ParseFS(templates, "templates/registration-confirmation.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, invoice)
	if err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}

	return buf.String(), nil
}

func makeTextOnlyBody(invoice Invoice) (string, error) {
	tmpl, err := textTemplate.New("registration-confirmation-textonly.tmpl").ParseFS(templates, "templates/registration-confirmation-textonly.tmpl")
	if err != nil {
		return "", fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, invoice)
	if err != nil {
		return "", fmt.Errorf("failed to execute email template: %w", err)
	}

	return buf.String(), nil
}
