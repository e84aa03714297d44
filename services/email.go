package services

import (
	"bytes"
	"errors"
	"html/template"
	"strings"

	"emptio-backend/config"
	"emptio-backend/logger"
	"emptio-backend/metrics"
	"emptio-backend/models"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

// Sender delivers a rendered email. Swapped out in tests.
type Sender interface {
	Send(to, subject, htmlBody string) error
}

var sender Sender = smtpSender{}

// SetSender replaces the delivery backend and returns the previous one.
func SetSender(s Sender) Sender {
	prev := sender
	sender = s
	return prev
}

// smtpSender dials the configured SMTP server. The transport is constructed
// per call, matching how the upstream mailer behaves.
type smtpSender struct{}

func (smtpSender) Send(to, subject, htmlBody string) error {
	cfg := config.C
	if cfg == nil || cfg.EmailUser == "" {
		return errors.New("email transport not configured")
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", cfg.EmailUser, cfg.EmailFromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(cfg.EmailHost, cfg.EmailPort, cfg.EmailUser, cfg.EmailPass)
	return d.DialAndSend(m)
}

// statusMessages is the customer-facing line per status in the update email.
var statusMessages = map[models.OrderStatus]string{
	models.StatusConfirmed:      "Your order has been confirmed and is being prepared.",
	models.StatusShipped:        "Your order has been shipped and is on its way!",
	models.StatusOutForDelivery: "Your order is out for delivery. It will be delivered today.",
	models.StatusDelivered:      "Your order has been successfully delivered. Thank you for shopping with us!",
	models.StatusCancelled:      "Your order has been cancelled.",
	models.StatusReturned:       "Your return request has been received.",
}

var confirmationTmpl = template.Must(template.New("confirmation").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #ff3e3e;">Order Confirmed!</h1>
  <p>Thank you for your order. Your order has been placed successfully.</p>
  <div style="background-color: #f8f9fa; padding: 20px; margin: 20px 0; border-radius: 5px;">
    <h3>Order Details:</h3>
    <p><strong>Order ID:</strong> {{.Order.OrderID}}</p>
    <p><strong>Status:</strong> {{.StatusUpper}}</p>
    <p><strong>Total Amount:</strong> ${{printf "%.2f" .Order.TotalAmount}}</p>
    {{if .Order.EstimatedDelivery}}<p><strong>Estimated Delivery:</strong> {{.Order.EstimatedDelivery.Format "Jan 2, 2006"}}</p>{{end}}
  </div>
  <div style="margin: 20px 0;">
    <h3>Items Ordered:</h3>
    <ul style="list-style: none; padding: 0;">
      {{range .Order.Items}}
      <li style="margin-bottom: 10px; padding: 10px; border: 1px solid #ddd; border-radius: 5px;">
        <strong>{{.Name}}</strong><br>
        Quantity: {{.Quantity}} | Price: ${{printf "%.2f" .Price}}
      </li>
      {{end}}
    </ul>
  </div>
  <div style="background-color: #e8f5e8; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>Shipping Address:</strong></p>
    <p>{{.Order.ShippingAddress.FirstName}} {{.Order.ShippingAddress.LastName}}<br>
    {{.Order.ShippingAddress.Address}}<br>
    {{.Order.ShippingAddress.City}}, {{.Order.ShippingAddress.ZipCode}}<br>
    {{.Order.ShippingAddress.Email}}</p>
  </div>
  <p>You can track your order status at any time from your account dashboard.</p>
  <p style="color: #666; font-size: 12px;">If you have any questions, please contact our customer support.</p>
</div>`))

var statusUpdateTmpl = template.Must(template.New("statusUpdate").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #ff3e3e;">Order Status Update</h1>
  <p>Your order status has been updated.</p>
  <div style="background-color: #f8f9fa; padding: 20px; margin: 20px 0; border-radius: 5px;">
    <h3>Order Details:</h3>
    <p><strong>Order ID:</strong> {{.Order.OrderID}}</p>
    <p><strong>New Status:</strong> <span style="color: #ff3e3e; font-weight: bold;">{{.StatusUpper}}</span></p>
    <p><strong>Total Amount:</strong> ${{printf "%.2f" .Order.TotalAmount}}</p>
    {{if .Order.EstimatedDelivery}}<p><strong>Estimated Delivery:</strong> {{.Order.EstimatedDelivery.Format "Jan 2, 2006"}}</p>{{end}}
  </div>
  <div style="background-color: #e8f5e8; padding: 15px; border-radius: 5px; margin: 20px 0;">
    <p><strong>{{.StatusMessage}}</strong></p>
  </div>
  <p>You can track your order status at any time from your account dashboard.</p>
  <p style="color: #666; font-size: 12px;">If you have any questions, please contact our customer support.</p>
</div>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h1 style="color: #ff3e3e;">Welcome to Emptio!</h1>
  <p>Hello {{.Name}}, your account has been created successfully.</p>
  <p>Browse products, build your cart and track your orders in real time.</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{.FrontendURL}}/login"
       style="background-color: #ff3e3e; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; font-weight: bold;">
      Start Shopping Now
    </a>
  </div>
  <p style="color: #999; font-size: 12px;">If you didn't create an account, please ignore this email.</p>
</div>`))

type orderEmailData struct {
	Order         models.Order
	StatusUpper   string
	StatusMessage string
}

func renderOrderEmail(tmpl *template.Template, order models.Order) (string, error) {
	msg, ok := statusMessages[order.Status]
	if !ok {
		msg = "Your order status has been updated."
	}
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, orderEmailData{
		Order:         order,
		StatusUpper:   strings.ToUpper(string(order.Status)),
		StatusMessage: msg,
	})
	return buf.String(), err
}

// sendBestEffort delivers one email. Failures are logged and counted, never
// returned: notification outcome must not leak into the operation that
// triggered it.
func sendBestEffort(kind, to, subject, body string) {
	if err := sender.Send(to, subject, body); err != nil {
		metrics.EmailFailuresTotal.WithLabelValues(kind).Inc()
		logger.Get().Warn("failed to send email",
			zap.String("kind", kind),
			zap.String("to", to),
			zap.Error(err),
		)
	}
}

// SendOrderConfirmation emails the checkout confirmation to the shipping
// address, best-effort.
func SendOrderConfirmation(order models.Order, to string) {
	body, err := renderOrderEmail(confirmationTmpl, order)
	if err != nil {
		logger.Get().Error("failed to render confirmation email", zap.Error(err))
		return
	}
	sendBestEffort("confirmation", to, "Order Confirmation - "+order.OrderID, body)
}

// SendOrderStatusUpdate emails the status change notification, best-effort.
func SendOrderStatusUpdate(order models.Order, to string) {
	body, err := renderOrderEmail(statusUpdateTmpl, order)
	if err != nil {
		logger.Get().Error("failed to render status update email", zap.Error(err))
		return
	}
	sendBestEffort("status_update", to, "Order Update - "+order.OrderID, body)
}

// SendWelcomeEmail greets a freshly registered user, best-effort.
func SendWelcomeEmail(to, name string) {
	frontendURL := "http://localhost:5175"
	if config.C != nil && config.C.FrontendURL != "" {
		frontendURL = config.C.FrontendURL
	}
	var buf bytes.Buffer
	if err := welcomeTmpl.Execute(&buf, map[string]string{"Name": name, "FrontendURL": frontendURL}); err != nil {
		logger.Get().Error("failed to render welcome email", zap.Error(err))
		return
	}
	sendBestEffort("welcome", to, "Welcome to Emptio - Your Account is Ready!", buf.String())
}

// NotifyStatusUpdate dispatches the status email asynchronously after a
// transition has been committed. The transition result never depends on it.
func NotifyStatusUpdate(order models.Order) {
	go SendOrderStatusUpdate(order, order.ShippingAddress.Email)
}

// NotifyOrderConfirmation dispatches the confirmation email asynchronously
// after checkout.
func NotifyOrderConfirmation(order models.Order) {
	go SendOrderConfirmation(order, order.ShippingAddress.Email)
}
