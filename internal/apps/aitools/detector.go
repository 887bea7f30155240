package aitools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/btechub/portal-backend/internal/config"
	"github.com/btechub/portal-backend/internal/i18n"
)

const (
	minDetectRunes    = 10
	arabicThreshold   = 0.3
	heuristicModel    = "heuristic-v1"
	aiVerdictScore    = 70
	mixedVerdictScore = 40
)

var ErrTextTooShort = errors.New("text is too short to analyse")

// errClassifierUnavailable marks a classifier failure the heuristic can cover.
var errClassifierUnavailable = errors.New("classifier unavailable")

type SentenceScore struct {
	Text    string `json:"text"`
	AIScore int    `json:"aiScore"`
}

type DetectionResult struct {
	AIScore      int             `json:"aiScore"`
	HumanScore   int             `json:"humanScore"`
	Verdict      string          `json:"verdict"`
	VerdictEn    string          `json:"verdictEn"`
	Sentences    []SentenceScore `json:"sentences"`
	ModelUsed    string          `json:"modelUsed"`
	Fallback     bool            `json:"fallback"`
	Confidence   string          `json:"confidence"`
	TextLanguage string          `json:"textLanguage"`
}

// Detector scores how likely a text is machine-written. English goes to a
// hosted classifier first; Arabic and any classifier failure use the local
// keyword heuristic.
type Detector struct {
	url    string
	key    string
	model  string
	client *http.Client
}

func NewDetector(cfg *config.Config) *Detector {
	timeout := cfg.DetectorTimeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Detector{
		url:    cfg.HFAPIURL,
		key:    cfg.HFAPIKey,
		model:  cfg.HFDetectorModel,
		client: &http.Client{Timeout: timeout},
	}
}

func (d *Detector) Detect(ctx context.Context, text string) (*DetectionResult, error) {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minDetectRunes {
		return nil, ErrTextTooShort
	}

	lang := DetectLanguage(text)
	sentences := scoreSentences(text, lang)

	if lang == i18n.English {
		if score, err := d.classify(ctx, text); err == nil {
			return buildResult(score, sentences, d.model, false, lang), nil
		}
	}

	score := heuristicScore(sentences)
	return buildResult(score, sentences, heuristicModel, lang == i18n.English, lang), nil
}

// DetectLanguage returns Arabic when at least 30% of the letters are Arabic.
func DetectLanguage(text string) i18n.Lang {
	var letters, arabic int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Arabic, r) {
			arabic++
		}
	}
	if letters > 0 && float64(arabic)/float64(letters) >= arabicThreshold {
		return i18n.Arabic
	}
	return i18n.English
}

type hfLabel struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// classify returns the machine-written probability as 0..100.
func (d *Detector) classify(ctx context.Context, text string) (int, error) {
	if d.key == "" || d.model == "" {
		return 0, errClassifierUnavailable
	}

	body, err := json.Marshal(map[string]interface{}{
		"inputs":  text,
		"options": map[string]bool{"wait_for_model": false},
	})
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url+d.model, bytes.NewBuffer(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.key)

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errClassifierUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", errClassifierUnavailable, resp.StatusCode)
	}
	return parseClassifierScore(raw)
}

// parseClassifierScore accepts both [[{label,score}]] and [{label,score}].
func parseClassifierScore(raw []byte) (int, error) {
	var nested [][]hfLabel
	var labels []hfLabel
	if err := json.Unmarshal(raw, &nested); err == nil && len(nested) > 0 {
		labels = nested[0]
	} else if err := json.Unmarshal(raw, &labels); err != nil {
		return 0, fmt.Errorf("decode classifier response: %w", err)
	}

	for _, l := range labels {
		switch strings.ToLower(l.Label) {
		case "fake", "ai", "machine", "label_1", "chatgpt":
			return clampScore(int(math.Round(l.Score * 100))), nil
		case "real", "human", "label_0":
			return clampScore(100 - int(math.Round(l.Score*100))), nil
		}
	}
	return 0, errors.New("classifier returned no usable label")
}

var aiMarkers = map[i18n.Lang][]string{
	i18n.English: {
		"furthermore", "moreover", "in conclusion", "additionally", "it is important to note",
		"overall", "delve", "in summary", "crucial", "comprehensive", "plays a vital role",
		"in today's", "a testament to", "navigating", "landscape", "pivotal", "seamless",
		"it is worth noting", "on the other hand", "ultimately",
	},
	i18n.Arabic: {
		"بالإضافة إلى ذلك", "علاوة على ذلك", "في الختام", "من المهم", "وبالتالي", "بشكل عام",
		"يعتبر", "حيث أن", "من ناحية أخرى", "في هذا السياق", "تجدر الإشارة", "بشكل كبير",
		"يلعب دوراً", "في عالمنا اليوم", "لا شك أن", "مما يساهم",
	},
}

func sentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '؟' || r == '\n' || r == '。'
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, sentenceEnd)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// scoreSentences gives each sentence a keyword score, nudged up when
// sentence lengths are suspiciously uniform.
func scoreSentences(text string, lang i18n.Lang) []SentenceScore {
	sentences := splitSentences(text)
	markers := aiMarkers[lang]
	uniform := uniformityBonus(sentences)

	out := make([]SentenceScore, len(sentences))
	for i, s := range sentences {
		lowered := strings.ToLower(s)
		score := 20 + uniform
		for _, m := range markers {
			if strings.Contains(lowered, m) {
				score += 25
			}
		}
		words := len(strings.Fields(s))
		if words >= 18 && words <= 35 {
			score += 10
		}
		out[i] = SentenceScore{Text: s, AIScore: clampScore(score)}
	}
	return out
}

func uniformityBonus(sentences []string) int {
	if len(sentences) < 3 {
		return 0
	}
	lengths := make([]float64, len(sentences))
	var sum float64
	for i, s := range sentences {
		lengths[i] = float64(len(strings.Fields(s)))
		sum += lengths[i]
	}
	mean := sum / float64(len(lengths))
	if mean == 0 {
		return 0
	}
	var variance float64
	for _, l := range lengths {
		variance += (l - mean) * (l - mean)
	}
	cv := math.Sqrt(variance/float64(len(lengths))) / mean
	switch {
	case cv < 0.2:
		return 20
	case cv < 0.35:
		return 10
	}
	return 0
}

// heuristicScore is the word-weighted mean of the sentence scores.
func heuristicScore(sentences []SentenceScore) int {
	var total, weight float64
	for _, s := range sentences {
		w := float64(len(strings.Fields(s.Text)))
		if w == 0 {
			w = 1
		}
		total += float64(s.AIScore) * w
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return clampScore(int(math.Round(total / weight)))
}

func buildResult(aiScore int, sentences []SentenceScore, model string, fallback bool, lang i18n.Lang) *DetectionResult {
	aiScore = clampScore(aiScore)
	key := verdictKey(aiScore)
	if sentences == nil {
		sentences = []SentenceScore{}
	}
	return &DetectionResult{
		AIScore:      aiScore,
		HumanScore:   100 - aiScore,
		Verdict:      i18n.T(i18n.Arabic, key),
		VerdictEn:    i18n.T(i18n.English, key),
		Sentences:    sentences,
		ModelUsed:    model,
		Fallback:     fallback,
		Confidence:   confidence(aiScore),
		TextLanguage: string(lang),
	}
}

func verdictKey(aiScore int) string {
	switch {
	case aiScore >= aiVerdictScore:
		return "detect.ai"
	case aiScore >= mixedVerdictScore:
		return "detect.mixed"
	}
	return "detect.human"
}

func confidence(aiScore int) string {
	distance := aiScore - 50
	if distance < 0 {
		distance = -distance
	}
	switch {
	case distance >= 30:
		return "high"
	case distance >= 15:
		return "medium"
	}
	return "low"
}

func clampScore(n int) int {
	return min(max(n, 0), 100)
}
