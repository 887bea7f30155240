package services

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/btechub/portal-backend/internal/config"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMailer_Selection(t *testing.T) {
	assert.IsType(t, logMailer{}, NewMailer(&config.Config{}))
	assert.IsType(t, &smtpMailer{}, NewMailer(&config.Config{SMTPHost: "smtp.local", SMTPPort: "25"}))
	assert.IsType(t, &sendGridMailer{}, NewMailer(&config.Config{SendGridAPIKey: "SG.key", SMTPHost: "smtp.local"}))
	assert.False(t, NewMailer(&config.Config{}).Live())
}

func TestSendGridMailer_Send(t *testing.T) {
	var got map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/mail/send", r.URL.Path)
		assert.Equal(t, "Bearer SG.key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := &sendGridMailer{key: "SG.key", host: srv.URL, from: sgmail.NewEmail("BTEC Hub", "no-reply@btechub.app")}
	require.NoError(t, m.Send(context.Background(), "student@school.edu", "Your code", "123456"))

	personalizations := got["personalizations"].([]interface{})
	to := personalizations[0].(map[string]interface{})["to"].([]interface{})
	assert.Equal(t, "student@school.edu", to[0].(map[string]interface{})["email"])
}

func TestSendGridMailer_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	m := &sendGridMailer{key: "bad", host: srv.URL, from: sgmail.NewEmail("", "a@b.c")}
	err := m.Send(context.Background(), "x@y.z", "s", "b")
	assert.ErrorContains(t, err, "401")
}

func TestSMTPMessage_EncodesSubject(t *testing.T) {
	msg := string(smtpMessage("noreply@btechub.test", "a@b.co", "رمز التحقق الخاص بك", "الرمز: 123456"))

	headers, body, ok := strings.Cut(msg, "\r\n\r\n")
	require.True(t, ok)
	assert.Equal(t, "الرمز: 123456", body)

	var subject string
	for _, line := range strings.Split(headers, "\r\n") {
		if v, found := strings.CutPrefix(line, "Subject: "); found {
			subject = v
		}
	}
	require.NotEmpty(t, subject)
	assert.True(t, strings.HasPrefix(subject, "=?utf-8?q?"))
	for _, r := range subject {
		assert.Less(t, r, rune(128), "subject header must be ASCII")
	}

	decoded, err := new(mime.WordDecoder).DecodeHeader(subject)
	require.NoError(t, err)
	assert.Equal(t, "رمز التحقق الخاص بك", decoded)

	plain := string(smtpMessage("noreply@btechub.test", "a@b.co", "Your code", "x"))
	assert.Contains(t, plain, "Subject: Your code\r\n")
}
