package handlers

import (
	"html"
	"strings"

	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/gofiber/fiber/v2"
)

type legalSection struct {
	heading string
	body    string
}

type legalPage struct {
	title    string
	updated  string
	sections []legalSection
}

var privacyPages = map[i18n.Lang]legalPage{
	i18n.Arabic: {
		title:   "سياسة الخصوصية",
		updated: "آخر تحديث: أكتوبر 2026",
		sections: []legalSection{
			{"البيانات التي نجمعها", "نجمع بريدك الإلكتروني واسمك المعروض ورسائلك في قنوات الدردشة وتقدمك في الإنجازات لتشغيل المنصة."},
			{"استخدام البيانات", "تُستخدم بياناتك فقط لتشغيل BTEC Hub والتحقق من حسابك والإشراف على المحتوى."},
			{"أدوات الذكاء الاصطناعي", "النصوص والصور التي ترسلها إلى أدوات الذكاء الاصطناعي تُمرر إلى مزودي خدمة خارجيين لمعالجتها ولا نحتفظ بها."},
			{"حذف الحساب", "يمكنك حذف حسابك وجميع بياناتك المرتبطة به في أي وقت من الإعدادات."},
			{"التواصل", "لأي استفسار حول هذه السياسة راسلنا على support@btechub.app"},
		},
	},
	i18n.English: {
		title:   "Privacy Policy",
		updated: "Last updated: October 2026",
		sections: []legalSection{
			{"Information We Collect", "We collect your email address, display name, chat messages and achievement progress to operate the portal."},
			{"How We Use Your Information", "Your data is used solely to operate BTEC Hub, authenticate your account and moderate content."},
			{"AI Tools", "Text and images you send to the AI tools are forwarded to third-party providers for processing and are not stored by us."},
			{"Account Deletion", "You can delete your account and all associated data at any time from the settings."},
			{"Contact", "For questions about this policy, contact us at support@btechub.app"},
		},
	},
}

var termsPages = map[i18n.Lang]legalPage{
	i18n.Arabic: {
		title:   "شروط الاستخدام",
		updated: "آخر تحديث: أكتوبر 2026",
		sections: []legalSection{
			{"القبول", "باستخدامك BTEC Hub فإنك توافق على هذه الشروط."},
			{"السلوك في الدردشة", "يُمنع استخدام الألفاظ المسيئة. أي مخالفة تؤدي إلى إيقافك عن الكتابة لمدة 5 دقائق."},
			{"النزاهة الأكاديمية", "أدوات الذكاء الاصطناعي مخصصة للمساعدة في التعلم وليست بديلاً عن عملك الخاص."},
			{"إنهاء الحساب", "يحق لنا تعليق الحسابات التي تخالف هذه الشروط."},
		},
	},
	i18n.English: {
		title:   "Terms of Service",
		updated: "Last updated: October 2026",
		sections: []legalSection{
			{"Acceptance", "By using BTEC Hub, you agree to these terms."},
			{"Chat Conduct", "Offensive language is not allowed. Each violation blocks you from sending messages for 5 minutes."},
			{"Academic Integrity", "The AI tools are meant to support learning, not to replace your own work."},
			{"Termination", "We may suspend accounts that violate these terms."},
		},
	},
}

type LegalHandler struct{}

func NewLegalHandler() *LegalHandler {
	return &LegalHandler{}
}

func (h *LegalHandler) PrivacyPolicy(c *fiber.Ctx) error {
	lang := i18n.FromRequest(c)
	return c.Type("html").SendString(renderLegal(lang, privacyPages[lang]))
}

func (h *LegalHandler) TermsOfService(c *fiber.Ctx) error {
	lang := i18n.FromRequest(c)
	return c.Type("html").SendString(renderLegal(lang, termsPages[lang]))
}

func renderLegal(lang i18n.Lang, page legalPage) string {
	dir := "ltr"
	if lang == i18n.Arabic {
		dir = "rtl"
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html lang="` + string(lang) + `" dir="` + dir + `"><head><meta charset="utf-8"><title>` + html.EscapeString(page.title) + ` - BTEC Hub</title>
<meta name="viewport" content="width=device-width, initial-scale=1">
<style>body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Tahoma,sans-serif;max-width:800px;margin:0 auto;padding:20px;color:#333}h1{color:#1a1a1a}h2{color:#444;margin-top:30px}</style>
</head><body>
<h1>` + html.EscapeString(page.title) + `</h1>
<p>` + html.EscapeString(page.updated) + `</p>
`)
	for _, s := range page.sections {
		b.WriteString("<h2>" + html.EscapeString(s.heading) + "</h2>\n<p>" + html.EscapeString(s.body) + "</p>\n")
	}
	b.WriteString("</body></html>")
	return b.String()
}
