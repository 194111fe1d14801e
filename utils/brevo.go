package utils

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"os"
	"text/template"

	brevo "github.com/sendinblue/APIv3-go-library/v2/lib"
)

func newBrevoClient() (*brevo.APIClient, error) {
	apiKey := os.Getenv("BREVO_API_KEY")
	if apiKey == "" {
		return nil, errors.New("brevo API Key not found in environment")
	}

	cfg := brevo.NewConfiguration()
	cfg.AddDefaultHeader("api-key", apiKey)
	return brevo.NewAPIClient(cfg), nil
}

func renderTemplate(path string, data map[string]interface{}) (string, error) {
	emailTemplate, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Error reading HTML file: %v", err)
		return "", err
	}

	tmpl, err := template.New("emailTemplate").Parse(string(emailTemplate))
	if err != nil {
		log.Printf("Error parsing HTML template: %v", err)
		return "", err
	}

	var bodyContent bytes.Buffer
	if err := tmpl.Execute(&bodyContent, data); err != nil {
		log.Printf("Error executing template: %v", err)
		return "", err
	}
	return bodyContent.String(), nil
}

var sender = &brevo.SendSmtpEmailSender{
	Name:  "KiranaKart Team",
	Email: "bot.kiranakart@outlook.com",
}

// SendOrderConfirmation emails the customer after checkout. Callers treat
// a failure as non-fatal: the order already exists.
func SendOrderConfirmation(email, name, orderID string, total float64) error {
	client, err := newBrevoClient()
	if err != nil {
		return err
	}

	body, err := renderTemplate("utils/html/order_confirmation.html", map[string]interface{}{
		"Name":    name,
		"OrderID": orderID,
		"Total":   fmt.Sprintf("%.2f", total),
	})
	if err != nil {
		return err
	}

	emailRequest := &brevo.SendSmtpEmail{
		Sender:      sender,
		To:          []brevo.SendSmtpEmailTo{{Name: name, Email: email}},
		Subject:     fmt.Sprintf("Order %s placed!", orderID),
		HtmlContent: body,
	}

	_, resp, err := client.TransactionalEmailsApi.SendTransacEmail(nil, *emailRequest)
	if err != nil {
		log.Printf("Error while sending email: %v", err)
		return err
	}

	log.Printf("Email sent successfully! Response: %v", resp)
	return nil
}

// SendOrderStatusUpdate emails the customer when the vendor moves an
// order to a new status.
func SendOrderStatusUpdate(email, name, orderID, status string) error {
	client, err := newBrevoClient()
	if err != nil {
		return err
	}

	body, err := renderTemplate("utils/html/order_status.html", map[string]interface{}{
		"Name":    name,
		"OrderID": orderID,
		"Status":  status,
	})
	if err != nil {
		return err
	}

	emailRequest := &brevo.SendSmtpEmail{
		Sender:      sender,
		To:          []brevo.SendSmtpEmailTo{{Name: name, Email: email}},
		Subject:     fmt.Sprintf("Order %s is now %s", orderID, status),
		HtmlContent: body,
	}

	_, resp, err := client.TransactionalEmailsApi.SendTransacEmail(nil, *emailRequest)
	if err != nil {
		log.Printf("Error while sending email: %v", err)
		return err
	}

	log.Printf("Email sent successfully! Response: %v", resp)
	return nil
}
