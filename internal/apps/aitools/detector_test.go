package aitools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const englishSample = "Furthermore, it is important to note that technology plays a vital role in education. " +
	"Moreover, students benefit from comprehensive digital resources. In conclusion, schools should invest more."

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, i18n.Arabic, DetectLanguage("هذا نص عربي بالكامل"))
	assert.Equal(t, i18n.English, DetectLanguage("This is English text"))
	// 4 Arabic letters of 12 is above the threshold
	assert.Equal(t, i18n.Arabic, DetectLanguage("abcdefgh مرحب"))
	assert.Equal(t, i18n.English, DetectLanguage("abcdefghijklmnopqrst مر"))
	assert.Equal(t, i18n.English, DetectLanguage("1234567890"))
}

func TestDetect_TooShort(t *testing.T) {
	d := NewDetector(&config.Config{})
	_, err := d.Detect(context.Background(), "   short    ")
	assert.ErrorIs(t, err, ErrTextTooShort)

	_, err = d.Detect(context.Background(), "مرحبا بكم")
	assert.ErrorIs(t, err, ErrTextTooShort)
}

func TestDetect_ClassifierUsedForEnglish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/detector", r.URL.Path)
		assert.Equal(t, "Bearer hf", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[[{"label":"Fake","score":0.82},{"label":"Real","score":0.18}]]`))
	}))
	defer srv.Close()

	d := NewDetector(&config.Config{HFAPIURL: srv.URL + "/", HFAPIKey: "hf", HFDetectorModel: "detector"})
	res, err := d.Detect(context.Background(), englishSample)
	require.NoError(t, err)
	assert.Equal(t, 82, res.AIScore)
	assert.Equal(t, 18, res.HumanScore)
	assert.Equal(t, "detector", res.ModelUsed)
	assert.False(t, res.Fallback)
	assert.Equal(t, "en", res.TextLanguage)
	assert.Equal(t, "Likely AI-generated", res.VerdictEn)
	assert.NotEmpty(t, res.Sentences)
}

func TestDetect_FallsBackOnClassifierFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	d := NewDetector(&config.Config{HFAPIURL: srv.URL + "/", HFAPIKey: "hf", HFDetectorModel: "detector"})
	res, err := d.Detect(context.Background(), englishSample)
	require.NoError(t, err)
	assert.True(t, res.Fallback)
	assert.Equal(t, heuristicModel, res.ModelUsed)
	assert.Equal(t, 100, res.AIScore+res.HumanScore)
}

func TestDetect_ArabicAlwaysHeuristic(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	d := NewDetector(&config.Config{HFAPIURL: srv.URL + "/", HFAPIKey: "hf", HFDetectorModel: "detector"})
	res, err := d.Detect(context.Background(), "بالإضافة إلى ذلك، يعتبر التعليم مهماً. علاوة على ذلك، في الختام نقول إن التقنية مفيدة.")
	require.NoError(t, err)
	assert.False(t, called)
	assert.False(t, res.Fallback)
	assert.Equal(t, "ar", res.TextLanguage)
	assert.Equal(t, 100, res.AIScore+res.HumanScore)
	assert.Greater(t, res.AIScore, 40)
}

func TestHeuristic_HumanishTextScoresLow(t *testing.T) {
	d := NewDetector(&config.Config{})
	res, err := d.Detect(context.Background(), "lol i forgot my homework again. my dog literally ate it?! no joke")
	require.NoError(t, err)
	assert.Less(t, res.AIScore, 40)
	assert.Equal(t, "Likely human-written", res.VerdictEn)
	for _, s := range res.Sentences {
		assert.True(t, s.AIScore >= 0 && s.AIScore <= 100)
	}
}

func TestParseClassifierScore(t *testing.T) {
	score, err := parseClassifierScore([]byte(`[{"label":"Real","score":0.9}]`))
	require.NoError(t, err)
	assert.Equal(t, 10, score)

	_, err = parseClassifierScore([]byte(`{"error":"loading"}`))
	assert.Error(t, err)

	_, err = parseClassifierScore([]byte(`[{"label":"other","score":0.9}]`))
	assert.Error(t, err)
}

func TestVerdictAndConfidence(t *testing.T) {
	assert.Equal(t, "detect.ai", verdictKey(70))
	assert.Equal(t, "detect.mixed", verdictKey(69))
	assert.Equal(t, "detect.mixed", verdictKey(40))
	assert.Equal(t, "detect.human", verdictKey(39))
	assert.Equal(t, "high", confidence(95))
	assert.Equal(t, "medium", confidence(30))
	assert.Equal(t, "low", confidence(55))
}

func TestSplitSentences(t *testing.T) {
	got := splitSentences("One. Two!  Three?\nأربعة؟ ")
	assert.Equal(t, []string{"One", "Two", "Three", "أربعة"}, got)
	assert.Empty(t, splitSentences(strings.Repeat(".", 5)))
}
