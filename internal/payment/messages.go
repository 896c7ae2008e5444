package payment

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/xtesports/xtesports/internal/notify"
	"github.com/xtesports/xtesports/internal/tournament"
)

var mailTemplates = template.Must(template.New("mail").Parse(`
{{define "hosted_admin"}}<p>Participant <strong>{{.P.TeamName}}</strong> has completed payment for <strong>{{.T.Name}}</strong>.</p>
<p>Leader: {{.P.LeaderName}} ({{.P.LeaderEmail}} / {{.P.LeaderPhone}})</p>
<p>Check admin panel: <a href="{{.AdminURL}}">Registrations</a></p>{{end}}

{{define "hosted_participant"}}<p>Hi {{.P.LeaderName}},</p>
<p>Your registration for <strong>{{.T.Name}}</strong> is confirmed. Team: <strong>{{.P.TeamName}}</strong>. In-game: <strong>{{if .P.InGame}}{{.P.InGame}}{{else}}-{{end}}</strong>.</p>
{{if .CommunityURL}}<p>Join tournament updates: <a href="{{.CommunityURL}}">community group</a>.</p>{{end}}{{end}}

{{define "manual_admin"}}<p>Participant <strong>{{.P.TeamName}}</strong> uploaded a payment proof for <strong>{{.T.Name}}</strong>.</p>
<p>Leader: {{.P.LeaderName}} ({{.P.LeaderEmail}} / {{.P.LeaderPhone}})</p>
<p>View proof: {{if .ProofURL}}<a href="{{.ProofURL}}">{{.ProofURL}}</a>{{else}}No file{{end}}</p>
<p><a href="{{.AdminURL}}">Open participants (admin)</a></p>{{end}}

{{define "manual_participant"}}<p>Hi {{.P.LeaderName}},</p>
<p>We received your payment proof for <strong>{{.T.Name}}</strong>. Our admin will verify and confirm your registration shortly.</p>
{{if .CommunityURL}}<p>Join updates: <a href="{{.CommunityURL}}">community group</a>.</p>{{end}}{{end}}
`))

type mailData struct {
	P            tournament.Participant
	T            tournament.Tournament
	AdminURL     string
	ProofURL     string
	CommunityURL string
}

func renderMail(name string, d mailData) (string, error) {
	var b bytes.Buffer
	if err := mailTemplates.ExecuteTemplate(&b, name, d); err != nil {
		return "", fmt.Errorf("render mail %v: %w", name, err)
	}
	return strings.TrimSpace(b.String()), nil
}

type mailKind struct {
	adminTmpl, participantTmpl       string
	adminSubject, participantSubject string
}

var (
	hostedMails = mailKind{
		adminTmpl:          "hosted_admin",
		participantTmpl:    "hosted_participant",
		adminSubject:       "New registration paid — %v",
		participantSubject: "Registration confirmed — %v",
	}
	manualMails = mailKind{
		adminTmpl:          "manual_admin",
		participantTmpl:    "manual_participant",
		adminSubject:       "Payment proof uploaded — %v",
		participantSubject: "Payment proof received — %v",
	}
)

// buildMails returns the admin and participant notifications. Recipients that are unknown are
// skipped.
func buildMails(k mailKind, adminEmail string, d mailData) ([]notify.Message, error) {
	var msgs []notify.Message
	if adminEmail != "" {
		body, err := renderMail(k.adminTmpl, d)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, notify.Message{
			To:      []string{adminEmail},
			Subject: fmt.Sprintf(k.adminSubject, d.T.Name),
			HTML:    body,
		})
	}
	if d.P.LeaderEmail != "" {
		body, err := renderMail(k.participantTmpl, d)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, notify.Message{
			To:      []string{d.P.LeaderEmail},
			Subject: fmt.Sprintf(k.participantSubject, d.T.Name),
			HTML:    body,
		})
	}
	return msgs, nil
}
