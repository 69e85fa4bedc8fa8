package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	emailAdapter "spark/internal/adapters/email"
	"spark/internal/domain/contact"
	"spark/internal/domain/outbox"
	"spark/internal/domain/payment"
	"spark/internal/domain/sponsor"
	"spark/internal/domain/team"
)

// OutboxEnqueuer is the slice of the outbox store the mailer needs.
type OutboxEnqueuer interface {
	Save(ctx context.Context, e outbox.Entry) error
}

// Mailer builds and dispatches the transactional emails. Every send is
// best-effort with a bounded timeout; failures are logged and the request is
// queued in the outbox for replay, never surfaced to the caller.
type Mailer struct {
	Sender       emailAdapter.Sender
	Outbox       OutboxEnqueuer
	From         string
	ReplyTo      string
	AdminAddress string
	SendTimeout  time.Duration
	GenerateID   func() string
	Now          func() time.Time
}

var teamConfirmationTmpl = template.Must(template.New("teamConfirmation").Parse(`
<h2>Registration received</h2>
<p>Salaam {{.CoachName}},</p>
<p>Your team <strong>{{.TeamName}}</strong> ({{.TierName}}) is registered for
Alhuda SPARK with {{.PlayerCount}} players. Your payment reference is
<strong>{{.ReferenceID}}</strong>.</p>
{{if .Instructions}}
<h3>{{.Instructions.Title}} — {{.Instructions.Amount}}</h3>
<ol>{{range .Instructions.Steps}}<li>{{.}}</li>{{end}}</ol>
<p><strong>Pay to:</strong> {{.Instructions.PayTo}}<br>
<strong>Memo:</strong> {{.Instructions.Memo}}</p>
{{else}}
<p>Complete your payment of {{.Amount}} through the payment link you were
redirected to. Your registration stays reserved while the payment processes.</p>
{{end}}
<p>We will email you once your registration is reviewed.</p>
`))

var teamAdminAlertTmpl = template.Must(template.New("teamAdminAlert").Parse(`
<h2>New team registration</h2>
<ul>
<li><strong>Team:</strong> {{.TeamName}} ({{.Tier}}, {{.Gender}})</li>
<li><strong>Organization:</strong> {{.Organization}}, {{.City}}</li>
<li><strong>Coach:</strong> {{.CoachName}} &lt;{{.CoachEmail}}&gt; {{.CoachPhone}}</li>
<li><strong>Players:</strong> {{.PlayerCount}}</li>
<li><strong>Fee:</strong> {{.Amount}} via {{.PaymentMethod}}</li>
</ul>
{{if .SpecialRequirements}}<p><strong>Special requirements:</strong> {{.SpecialRequirements}}</p>{{end}}
`))

var sponsorConfirmationTmpl = template.Must(template.New("sponsorConfirmation").Parse(`
<h2>Thank you for sponsoring Alhuda SPARK</h2>
<p>Salaam {{.ContactName}},</p>
<p><strong>{{.CompanyName}}</strong> is confirmed as a {{.Level}} sponsor
({{.Amount}}). Your reference is <strong>{{.ReferenceID}}</strong>.</p>
{{if .Instructions}}
<h3>{{.Instructions.Title}} — {{.Instructions.Amount}}</h3>
<ol>{{range .Instructions.Steps}}<li>{{.}}</li>{{end}}</ol>
<p><strong>Pay to:</strong> {{.Instructions.PayTo}}<br>
<strong>Memo:</strong> {{.Instructions.Memo}}</p>
{{end}}
`))

var sponsorAdminAlertTmpl = template.Must(template.New("sponsorAdminAlert").Parse(`
<h2>New sponsor registration</h2>
<ul>
<li><strong>Company:</strong> {{.CompanyName}}</li>
<li><strong>Contact:</strong> {{.ContactName}} &lt;{{.ContactEmail}}&gt; {{.ContactPhone}}</li>
<li><strong>Level:</strong> {{.Level}} ({{.Amount}})</li>
<li><strong>Method:</strong> {{.PaymentMethod}}</li>
</ul>
`))

var contactAdminAlertTmpl = template.Must(template.New("contactAdminAlert").Parse(`
<h2>New contact message</h2>
<p><strong>From:</strong> {{.Name}} &lt;{{.Email}}&gt;</p>
<p><strong>Subject:</strong> {{.Subject}}</p>
<p>{{.Body}}</p>
`))

// TeamConfirmation emails the coach their registration summary and payment
// instructions.
// PRE: t was just persisted
// POST: Email sent or queued in the outbox; never returns an error
func (m *Mailer) TeamConfirmation(ctx context.Context, t team.Team, instructions *payment.Instructions) {
	refID := "SPARK-" + shortIDUpper(t.ID)
	body, err := render(teamConfirmationTmpl, map[string]any{
		"CoachName":    t.CoachName,
		"TeamName":     t.TeamName,
		"TierName":     t.Tier,
		"PlayerCount":  len(t.Players),
		"ReferenceID":  refID,
		"Instructions": instructions,
		"Amount":       payment.FormatAmount(t.RegistrationFee),
	})
	if err != nil {
		slog.Error("email_render_failed", "template", "team_confirmation", "error", err.Error())
		return
	}
	m.dispatch(ctx, "team_confirmation", emailAdapter.SendRequest{
		To:      []string{t.CoachEmail},
		From:    m.From,
		Subject: fmt.Sprintf("Alhuda SPARK: %s is registered", t.TeamName),
		HTML:    body,
		ReplyTo: m.ReplyTo,
	})
}

// TeamAdminAlert notifies staff of a new team registration.
// PRE: t was just persisted
// POST: Email sent or queued in the outbox; never returns an error
func (m *Mailer) TeamAdminAlert(ctx context.Context, t team.Team) {
	body, err := render(teamAdminAlertTmpl, map[string]any{
		"TeamName":            t.TeamName,
		"Tier":                t.Tier,
		"Gender":              t.Gender,
		"Organization":        t.Organization,
		"City":                t.City,
		"CoachName":           t.CoachName,
		"CoachEmail":          t.CoachEmail,
		"CoachPhone":          t.CoachPhone,
		"PlayerCount":         len(t.Players),
		"Amount":              payment.FormatAmount(t.RegistrationFee),
		"PaymentMethod":       t.PaymentMethod,
		"SpecialRequirements": t.SpecialRequirements,
	})
	if err != nil {
		slog.Error("email_render_failed", "template", "team_admin_alert", "error", err.Error())
		return
	}
	m.dispatch(ctx, "team_admin_alert", emailAdapter.SendRequest{
		To:      []string{m.AdminAddress},
		From:    m.From,
		Subject: fmt.Sprintf("New team registration: %s", t.TeamName),
		HTML:    body,
	})
}

// SponsorConfirmation emails the sponsor contact their confirmation.
// PRE: s was just persisted
// POST: Email sent or queued in the outbox; never returns an error
func (m *Mailer) SponsorConfirmation(ctx context.Context, s sponsor.Sponsor, instructions *payment.Instructions) {
	refID := "SPARK-" + shortIDUpper(s.ID)
	body, err := render(sponsorConfirmationTmpl, map[string]any{
		"ContactName":  s.ContactName,
		"CompanyName":  s.CompanyName,
		"Level":        s.Level,
		"Amount":       payment.FormatAmount(s.AmountCents),
		"ReferenceID":  refID,
		"Instructions": instructions,
	})
	if err != nil {
		slog.Error("email_render_failed", "template", "sponsor_confirmation", "error", err.Error())
		return
	}
	m.dispatch(ctx, "sponsor_confirmation", emailAdapter.SendRequest{
		To:      []string{s.ContactEmail},
		From:    m.From,
		Subject: fmt.Sprintf("Alhuda SPARK sponsorship confirmed: %s", s.CompanyName),
		HTML:    body,
		ReplyTo: m.ReplyTo,
	})
}

// SponsorAdminAlert notifies staff of a new sponsor.
// PRE: s was just persisted
// POST: Email sent or queued in the outbox; never returns an error
func (m *Mailer) SponsorAdminAlert(ctx context.Context, s sponsor.Sponsor) {
	body, err := render(sponsorAdminAlertTmpl, map[string]any{
		"CompanyName":   s.CompanyName,
		"ContactName":   s.ContactName,
		"ContactEmail":  s.ContactEmail,
		"ContactPhone":  s.ContactPhone,
		"Level":         s.Level,
		"Amount":        payment.FormatAmount(s.AmountCents),
		"PaymentMethod": s.PaymentMethod,
	})
	if err != nil {
		slog.Error("email_render_failed", "template", "sponsor_admin_alert", "error", err.Error())
		return
	}
	m.dispatch(ctx, "sponsor_admin_alert", emailAdapter.SendRequest{
		To:      []string{m.AdminAddress},
		From:    m.From,
		Subject: fmt.Sprintf("New sponsor: %s (%s)", s.CompanyName, s.Level),
		HTML:    body,
	})
}

// ContactAdminAlert forwards a contact-form message to staff.
// PRE: msg was just persisted
// POST: Email sent or queued in the outbox; never returns an error
func (m *Mailer) ContactAdminAlert(ctx context.Context, msg contact.Message) {
	body, err := render(contactAdminAlertTmpl, map[string]any{
		"Name":    msg.Name,
		"Email":   msg.Email,
		"Subject": msg.Subject,
		"Body":    msg.Body,
	})
	if err != nil {
		slog.Error("email_render_failed", "template", "contact_admin_alert", "error", err.Error())
		return
	}
	m.dispatch(ctx, "contact_admin_alert", emailAdapter.SendRequest{
		To:      []string{m.AdminAddress},
		From:    m.From,
		Subject: fmt.Sprintf("Contact form: %s", msg.Subject),
		HTML:    body,
		ReplyTo: msg.Email,
	})
}

// dispatch sends one email with a bounded timeout. On failure the request is
// recorded in the outbox for later replay.
func (m *Mailer) dispatch(ctx context.Context, kind string, req emailAdapter.SendRequest) {
	timeout := m.SendTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	sendCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := m.Sender.Send(sendCtx, req)
	if err == nil {
		slog.Info("email_event", "event", "email_sent", "kind", kind, "message_id", result.MessageID)
		return
	}

	slog.Warn("email_event", "event", "email_send_failed", "kind", kind, "error", err.Error())

	payload, marshalErr := json.Marshal(req)
	if marshalErr != nil {
		slog.Error("email_event", "event", "outbox_marshal_failed", "kind", kind, "error", marshalErr.Error())
		return
	}
	entry := outbox.Entry{
		ID:           m.GenerateID(),
		ActionType:   outbox.ActionTypeEmail,
		Payload:      string(payload),
		Status:       outbox.StatusPending,
		MaxAttempts:  5,
		CreatedAt:    m.Now(),
		ErrorMessage: err.Error(),
	}
	if saveErr := m.Outbox.Save(ctx, entry); saveErr != nil {
		slog.Error("email_event", "event", "outbox_enqueue_failed", "kind", kind, "error", saveErr.Error())
		return
	}
	slog.Info("email_event", "event", "email_queued_for_retry", "kind", kind, "entry_id", entry.ID)
}

// render executes a template into a string.
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// shortIDUpper is the uppercase short form of an ID used in references.
func shortIDUpper(id string) string {
	return strings.ToUpper(shortID(id))
}
