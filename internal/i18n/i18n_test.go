package i18n

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Lang
	}{
		{"", Arabic},
		{"en", English},
		{"en-GB,en;q=0.9", English},
		{"ar-JO", Arabic},
		{"fr-FR", Arabic},
		{"fr;q=0.9, en;q=0.8", English},
		{"!!garbage", Arabic},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestT(t *testing.T) {
	assert.Equal(t, "Message cannot be empty", T(English, "chat.empty"))
	assert.Equal(t, "لا يمكن إرسال رسالة فارغة", T(Arabic, "chat.empty"))
	assert.Equal(t, "no.such.key", T(English, "no.such.key"))
	assert.Equal(t, "Incorrect code, 3 attempts remaining", Tf(English, "otp.mismatch", 3))
}

func TestCatalog_EveryEntryHasBothLanguages(t *testing.T) {
	for key, m := range catalog {
		assert.NotEmpty(t, m.ar, key)
		assert.NotEmpty(t, m.en, key)
	}
}

func TestFromRequest_QueryWins(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(string(FromRequest(c)))
	})

	req := httptest.NewRequest("GET", "/?lang=en", nil)
	req.Header.Set("Accept-Language", "ar")
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "en", string(body))

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept-Language", "en-US")
	resp, err = app.Test(req)
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)
	assert.Equal(t, "en", string(body))
}
