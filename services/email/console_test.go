package emailsvc

import (
	"bytes"
	"log"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fitsenior/backend/core"
	logsvc "github.com/fitsenior/backend/services/logger"
)

var testConf = &core.Config{
	Env:              "TEST",
	AppName:          "FitSenior",
	Debug:            true,
	TestMode:         true,
	FrontendBaseURL:  "http://localhost:5173",
	DefaultFromEmail: mail.Address{Name: "FitSenior", Address: "noreply@fitsenior.test"},
}

func TestServiceMock_SendMessages(t *testing.T) {
	core.ParseEmailTemplates(logsvc.NewRollbarLogger(log.New(new(bytes.Buffer), "", 0), testConf), true)
	svc := NewServiceMock(testConf)

	to := []mail.Address{{Name: "Maria", Address: "maria@test.test"}}
	svc.SendMessages(
		&core.EmailMessage{
			To:           to,
			Subject:      "Enrollment confirmed",
			TemplateName: "enrollment_confirmation",
			TemplateData: map[string]string{
				"Name":       "Maria",
				"ClassTitle": "Yoga",
				"Date":       "04/03/2024 09:00",
				"Schedule":   "Mon/Wed",
				"Location":   "Praça da Sé",
			},
		},
		&core.EmailMessage{To: to, Subject: "plain", BodyStr: "hello"},
		&core.EmailMessage{Subject: "no recipient", BodyStr: "dropped"},
		&core.EmailMessage{To: to, Subject: "no content"},
	)

	sent := svc.Sent()
	require.Len(t, sent, 2)

	assert.Contains(t, sent[0].TextContent, `Your enrollment in "Yoga" is confirmed.`)
	assert.Contains(t, sent[0].TextContent, "When: 04/03/2024 09:00 (Mon/Wed)")
	assert.Contains(t, sent[0].TextContent, "Where: Praça da Sé")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(sent[0].TextContent), "http://localhost:5173"))
	assert.Contains(t, sent[0].HTMLContent, "Yoga")

	assert.Equal(t, "hello", sent[1].TextContent)

	svc.Reset()
	assert.Empty(t, svc.Sent())
}

func TestConsoleService_send(t *testing.T) {
	svc := consoleService{
		defaultFromEmail: testConf.DefaultFromEmail,
		subjPrefix:       "[FitSenior] ",
		disableOutput:    true,
	}
	msg := core.EmailMessage{
		To:          []mail.Address{{Address: "a@test.test"}},
		Subject:     "report",
		TextContent: "see attached",
	}
	require.NoError(t, msg.Attach(strings.NewReader("a,b\n1,2\n"), "report.csv", "text/csv"))
	assert.NoError(t, svc.send(msg))
}

func TestNew(t *testing.T) {
	conf := *testConf
	_, isConsole := New(&conf, nil).(*consoleService)
	assert.True(t, isConsole)

	conf.Debug = false
	conf.SendgridApiKey = "SG.key"
	_, isSendgrid := New(&conf, nil).(*sendgridService)
	assert.True(t, isSendgrid)
}

func TestSendgridService_prepare(t *testing.T) {
	svc := NewSendgridService(testConf, nil).(*sendgridService)
	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Maria", Address: "maria@test.test"}},
		Bcc:         []mail.Address{{Address: "audit@test.test"}},
		Subject:     "Enrollment confirmed",
		TextContent: "text",
	})

	require.Len(t, m.Personalizations, 1)
	p := m.Personalizations[0]
	assert.Equal(t, "[FitSenior] Enrollment confirmed", p.Subject)
	require.Len(t, p.To, 1)
	assert.Equal(t, "maria@test.test", p.To[0].Address)
	require.Len(t, p.BCC, 1)
	require.Len(t, m.Content, 1)
	assert.Equal(t, "text/plain", m.Content[0].Type)
	assert.Equal(t, "noreply@fitsenior.test", m.From.Address)
}
