// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/samoku/samoku-backend/internal/config"
	"github.com/samoku/samoku-backend/internal/models"
)

// NotificationService is a best-effort side channel: every method records an
// in-app notification row and optionally emails the recipient. Failures are
// logged and swallowed; callers never block on delivery.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

// Vendor notifications

func (s *NotificationService) SendNewOrderNotification(vendorID uuid.UUID, order *models.Order, storeID uuid.UUID, lineCount int) {
	s.emit(&models.Notification{
		RecipientID: vendorID,
		Category:    "order_placed",
		Title:       "New order received",
		Message:     fmt.Sprintf("Order %s includes %d item(s) from your store.", order.OrderNumber, lineCount),
		Payload: models.JSONB{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"store_id":     storeID.String(),
			"line_count":   lineCount,
		},
		Link: fmt.Sprintf("%s/vendor/orders/%s", s.config.Frontend.BaseURL, order.ID),
	})
}

func (s *NotificationService) SendPayoutRequestedNotification(vendorID uuid.UUID, payout *models.Payout) {
	s.emit(&models.Notification{
		RecipientID: vendorID,
		Category:    "payout_requested",
		Title:       "Payout request submitted",
		Message:     fmt.Sprintf("Your payout request for $%s has been submitted.", payout.Amount.StringFixed(2)),
		Payload: models.JSONB{
			"payout_id": payout.ID.String(),
			"amount":    payout.Amount.StringFixed(2),
		},
		Link: fmt.Sprintf("%s/vendor/payouts/%s", s.config.Frontend.BaseURL, payout.ID),
	})
}

func (s *NotificationService) SendLowStockNotification(vendorID uuid.UUID, product *models.Product) {
	s.emit(&models.Notification{
		RecipientID: vendorID,
		Category:    "low_stock",
		Title:       "Low stock alert",
		Message:     fmt.Sprintf("%q is down to %d unit(s).", product.Name, product.StockQuantity),
		Payload: models.JSONB{
			"product_id": product.ID.String(),
			"stock":      product.StockQuantity,
		},
		Link: fmt.Sprintf("%s/vendor/inventory", s.config.Frontend.BaseURL),
	})
}

func (s *NotificationService) SendStoreApprovedNotification(vendorID uuid.UUID, store *models.Store) {
	s.emit(&models.Notification{
		RecipientID: vendorID,
		Category:    "store_approved",
		Title:       "Store approved",
		Message:     fmt.Sprintf("%q has been approved and is now live.", store.Name),
		Payload: models.JSONB{
			"store_id": store.ID.String(),
			"slug":     store.Slug,
		},
		Link: fmt.Sprintf("%s/stores/%s", s.config.Frontend.BaseURL, store.Slug),
	})
}

// Customer notifications

func (s *NotificationService) SendOrderConfirmationNotification(order *models.Order) {
	s.emit(&models.Notification{
		RecipientID: order.CustomerID,
		Category:    "order_confirmed",
		Title:       "Order confirmed",
		Message:     fmt.Sprintf("Order %s has been placed. Total: $%s.", order.OrderNumber, order.Total.StringFixed(2)),
		Payload: models.JSONB{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"total":        order.Total.StringFixed(2),
		},
		Link: fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
	})

	s.emailCustomer(order, "order_confirmation", "Order Confirmation - "+order.OrderNumber, map[string]interface{}{
		"OrderNumber": order.OrderNumber,
		"Total":       order.Total.StringFixed(2),
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
	})
}

func (s *NotificationService) SendOrderStatusNotification(order *models.Order) {
	s.emit(&models.Notification{
		RecipientID: order.CustomerID,
		Category:    "order_status",
		Title:       "Order update",
		Message:     fmt.Sprintf("Order %s is now %s.", order.OrderNumber, order.Status),
		Payload: models.JSONB{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"status":       string(order.Status),
		},
		Link: fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
	})

	s.emailCustomer(order, "order_status", fmt.Sprintf("Order %s - %s", order.OrderNumber, order.Status), map[string]interface{}{
		"OrderNumber": order.OrderNumber,
		"Status":      string(order.Status),
		"OrderURL":    fmt.Sprintf("%s/orders/%s", s.config.Frontend.BaseURL, order.ID),
	})
}

// Inbox access

func (s *NotificationService) GetUserNotifications(userID uuid.UUID, unreadOnly bool, limit int) ([]models.Notification, error) {
	query := s.db.Where("recipient_id = ?", userID).Order("created_at DESC")
	if unreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var notifications []models.Notification
	if err := query.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch notifications: %w", err)
	}
	return notifications, nil
}

func (s *NotificationService) MarkRead(userID, notificationID uuid.UUID) error {
	res := s.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", notificationID, userID).
		Update("read_at", gorm.Expr("NOW()"))
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	return nil
}

// Helper methods

func (s *NotificationService) emit(notification *models.Notification) {
	if err := s.db.Create(notification).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"recipient": notification.RecipientID,
			"category":  notification.Category,
		}).Error("Failed to create notification")
	}
}

func (s *NotificationService) emailCustomer(order *models.Order, templateType, subject string, data map[string]interface{}) {
	var customer models.User
	if err := s.db.First(&customer, order.CustomerID).Error; err != nil {
		logrus.WithError(err).Warn("Failed to load customer for email")
		return
	}

	data["Username"] = customer.Username
	tmpl := s.getEmailTemplate(templateType)
	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).Warn("Failed to render email template")
		return
	}

	if err := s.sendEmail(customer.Email, subject, body); err != nil {
		logrus.WithError(err).WithField("to", customer.Email).Warn("Failed to send email")
	}
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPHost == "" {
		// Email not configured, just log
		logrus.WithFields(logrus.Fields{"to": to, "subject": subject}).Info("Email delivery skipped (SMTP not configured)")
		return nil
	}

	// Setup authentication
	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	// Compose message
	msg := []byte(fmt.Sprintf("To: %s\r\nSubject: %s\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s", to, subject, body))

	// Send email
	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg)
}

func (s *NotificationService) renderTemplate(templateStr string, data interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(templateStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *NotificationService) getEmailTemplate(templateType string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"order_confirmation": {
			Subject: "Order Confirmation",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Thank you for your order, {{.Username}}!</h2>
	<p>Order {{.OrderNumber}} has been placed. Total: ${{.Total}}.</p>
	<a href="{{.OrderURL}}">View Order</a>
	<p>Best regards,<br>The Samoku Team</p>
</body>
</html>`,
		},
		"order_status": {
			Subject: "Order Update",
			Body: `
<!DOCTYPE html>
<html>
<body>
	<h2>Hello {{.Username}},</h2>
	<p>Order {{.OrderNumber}} is now <strong>{{.Status}}</strong>.</p>
	<a href="{{.OrderURL}}">Track Order</a>
	<p>Best regards,<br>The Samoku Team</p>
</body>
</html>`,
		},
	}

	if tmpl, exists := templates[templateType]; exists {
		return tmpl
	}

	// Default template
	return EmailTemplate{
		Subject: "Notification",
		Body:    "<p>{{.Message}}</p>",
	}
}
