package achievements

import "github.com/btechub/portal-backend/internal/i18n"

const (
	FirstMessage   = "first_message"
	Chatterbox     = "chatterbox"
	FirstResource  = "first_resource"
	Bookworm       = "bookworm"
	AIExplorer     = "ai_explorer"
	Detective      = "detective"
	Artist         = "artist"
	VerifiedEmail  = "verified_email"
	InterviewReady = "interview_ready"
)

// XPPerLevel is the derived-XP width of one level.
const XPPerLevel = 500

type Achievement struct {
	ID            string `json:"id"`
	TitleAR       string `json:"title_ar"`
	TitleEN       string `json:"title_en"`
	DescriptionAR string `json:"description_ar"`
	DescriptionEN string `json:"description_en"`
	Icon          string `json:"icon"`
	MaxProgress   int    `json:"max_progress"`
	XP            int    `json:"xp"`
}

func (a Achievement) Title(lang i18n.Lang) string {
	if lang == i18n.English {
		return a.TitleEN
	}
	return a.TitleAR
}

func (a Achievement) Description(lang i18n.Lang) string {
	if lang == i18n.English {
		return a.DescriptionEN
	}
	return a.DescriptionAR
}

// Catalog is static; order is the display order.
var Catalog = []Achievement{
	{FirstMessage, "أول رسالة", "First Message", "أرسل أول رسالة في الدردشة", "Send your first chat message", "💬", 1, 10},
	{Chatterbox, "كثير الكلام", "Chatterbox", "أرسل 100 رسالة", "Send 100 chat messages", "🗣️", 100, 100},
	{FirstResource, "أول مصدر", "First Resource", "حمّل أول مصدر تعليمي", "Download your first study resource", "📄", 1, 10},
	{Bookworm, "دودة الكتب", "Bookworm", "حمّل 20 مصدراً تعليمياً", "Download 20 study resources", "📚", 20, 75},
	{AIExplorer, "مستكشف الذكاء الاصطناعي", "AI Explorer", "استخدم المساعد الذكي 10 مرات", "Use the AI assistant 10 times", "🤖", 10, 50},
	{Detective, "المحقق", "Detective", "افحص 5 نصوص بكاشف الذكاء الاصطناعي", "Check 5 texts with the AI detector", "🔍", 5, 30},
	{Artist, "الفنان", "Artist", "أنشئ 5 صور بالذكاء الاصطناعي", "Generate 5 AI images", "🎨", 5, 30},
	{VerifiedEmail, "حساب موثق", "Verified", "وثّق بريدك الإلكتروني", "Verify your email address", "✅", 1, 20},
	{InterviewReady, "جاهز للمقابلة", "Interview Ready", "أكمل 5 جلسات تدريب على المقابلات", "Complete 5 interview practice sessions", "🎤", 5, 60},
}

var byID = func() map[string]Achievement {
	m := make(map[string]Achievement, len(Catalog))
	for _, a := range Catalog {
		m[a.ID] = a
	}
	return m
}()

func Lookup(id string) (Achievement, bool) {
	a, ok := byID[id]
	return a, ok
}

// Level derives the level from total XP: floor(total/500) + 1.
func Level(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return totalXP/XPPerLevel + 1
}
