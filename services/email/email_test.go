package emailsvc

import (
	"bytes"
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/mahudhurio/core"
	"github.com/trezcool/mahudhurio/tests"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	ClearSentMessages()
	conf := testutil.NewConfig("http://backend.test")
	logger := new(testutil.Logger)
	svc := NewConsoleServiceMock(conf, logger)

	withAttachment := &core.EmailMessage{
		To:      []mail.Address{{Name: "Student", Address: "student@test.test"}},
		Subject: "Report",
		BodyStr: "see attached",
	}
	require.NoError(t, withAttachment.Attach(strings.NewReader("a,b\n1,2\n"), "report.csv", "text/csv"))

	noRecipient := &core.EmailMessage{Subject: "lost", BodyStr: "nobody"}

	svc.SendMessages(withAttachment, noRecipient)

	require.Len(t, SentMessages, 1)
	sent, ok := LastSentMessage()
	require.True(t, ok)
	assert.Equal(t, "Report", sent.Subject)
	assert.Equal(t, "see attached", sent.TextContent)
	require.Len(t, sent.Attachments, 1)
	assert.Equal(t, "YSxiCjEsMgo=", sent.Attachments[0].Content.String())
	assert.Empty(t, logger.Entries("error"))
}

func TestConsoleService_send(t *testing.T) {
	svc := consoleService{
		appName:          "Mahudhurio",
		defaultFromEmail: mail.Address{Name: "Mahudhurio", Address: "noreply@localhost"},
		subjPrefix:       "[Mahudhurio] ",
		disableOutput:    true,
	}
	msg := core.EmailMessage{
		To:          []mail.Address{{Address: "student@test.test"}},
		Subject:     "Weekly",
		TextContent: "hello",
		HTMLContent: "<p>hello</p>",
	}
	assert.NoError(t, svc.send(msg))

	msg.Attachments = []core.Attachment{{Content: bytes.NewBufferString("AAAA"), ContentType: "text/plain", Filename: "a.txt"}}
	assert.NoError(t, svc.send(msg))
}

func TestSendgridService_prepare(t *testing.T) {
	conf := testutil.NewConfig("http://backend.test")
	svc := NewSendgridService(conf, new(testutil.Logger)).(*sendgridService)

	m := svc.prepare(core.EmailMessage{
		To:          []mail.Address{{Name: "Student", Address: "student@test.test"}},
		Subject:     "Weekly",
		TextContent: "hello",
		Attachments: []core.Attachment{{Content: bytes.NewBufferString("AAAA"), ContentType: "text/plain", Filename: "a.txt"}},
	})

	require.Len(t, m.Personalizations, 1)
	assert.Equal(t, "[Mahudhurio] Weekly", m.Personalizations[0].Subject)
	require.Len(t, m.Personalizations[0].To, 1)
	assert.Equal(t, "student@test.test", m.Personalizations[0].To[0].Address)
	require.Len(t, m.Content, 1, "no html part without html content")
	assert.Equal(t, "text/plain", m.Content[0].Type)
	require.Len(t, m.Attachments, 1)
	assert.Equal(t, "attachment", m.Attachments[0].Disposition)
}
