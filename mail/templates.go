package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
)

// Mailer renders and sends the four storefront emails.
type Mailer struct {
	sender Sender
	appURL string
}

func NewMailer(sender Sender, appURL string) *Mailer {
	return &Mailer{sender: sender, appURL: strings.TrimRight(appURL, "/")}
}

var (
	linkTmpl = template.Must(template.New("link").Parse(
		`<p>{{.Intro}}</p><p><a href="{{.Link}}">{{.Action}}</a></p>`))
	codeTmpl = template.Must(template.New("code").Parse(
		`<p>Your two-factor code is <strong>{{.}}</strong>. It expires in 5 minutes.</p>`))
	orderTmpl = template.Must(template.New("order").Parse(
		`<h2>Thank you for your order #{{.ID}}</h2><table>{{range .Lines}}<tr><td>{{.Name}} ({{.Color}} / {{.Size}})</td><td>x{{.Quantity}}</td><td>{{.Amount}}</td></tr>{{end}}</table><p>Total: <strong>{{.Total}}</strong></p><p><a href="{{.Link}}">View your order</a></p>`))
)

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

// Verification builds the email confirmation message.
func (m *Mailer) Verification(to, token string) Message {
	link := fmt.Sprintf("%s/auth/new-verification?token=%s", m.appURL, token)
	return Message{
		To:      to,
		Subject: "Confirm your email",
		Text:    "Confirm your email: " + link,
		HTML:    render(linkTmpl, map[string]string{"Intro": "Confirm your email address.", "Link": link, "Action": "Confirm email"}),
	}
}

func (m *Mailer) PasswordReset(to, token string) Message {
	link := fmt.Sprintf("%s/auth/new-password?token=%s", m.appURL, token)
	return Message{
		To:      to,
		Subject: "Reset your password",
		Text:    "Reset your password: " + link,
		HTML:    render(linkTmpl, map[string]string{"Intro": "Someone asked to reset your password.", "Link": link, "Action": "Reset password"}),
	}
}

func (m *Mailer) TwoFactorCode(to, code string) Message {
	return Message{
		To:      to,
		Subject: "Your two-factor code",
		Text:    "Your two-factor code is " + code,
		HTML:    render(codeTmpl, code),
	}
}

// OrderLine is the part of an order item shown in the confirmation.
type OrderLine struct {
	Name     string
	Color    string
	Size     string
	Quantity int
	Amount   decimal.Decimal
}

func (m *Mailer) OrderConfirmation(to string, orderID uint, lines []OrderLine, total decimal.Decimal) Message {
	link := fmt.Sprintf("%s/orders/%d", m.appURL, orderID)
	var text strings.Builder
	fmt.Fprintf(&text, "Thank you for your order #%d\n", orderID)
	for _, l := range lines {
		fmt.Fprintf(&text, "- %s (%s / %s) x%d: %s\n", l.Name, l.Color, l.Size, l.Quantity, l.Amount.StringFixed(2))
	}
	fmt.Fprintf(&text, "Total: %s\n%s\n", total.StringFixed(2), link)

	return Message{
		To:      to,
		Subject: fmt.Sprintf("Order #%d confirmed", orderID),
		Text:    text.String(),
		HTML: render(orderTmpl, map[string]any{
			"ID":    orderID,
			"Lines": lines,
			"Total": total.StringFixed(2),
			"Link":  link,
		}),
	}
}

// Deliver sends msg and only logs a failure.
func (m *Mailer) Deliver(ctx context.Context, msg Message) {
	if err := m.sender.Send(ctx, msg); err != nil {
		log.Errorw("mail delivery failed", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}
