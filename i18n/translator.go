// Package i18n renders human-readable messages for validation issue codes.
package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes. data provides
// optional details to embed in the message (for example "expected", "key"
// or "tag").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":          "invalid type: expected {expected}",
		"overflow":              "number out of range for {expected}",
		"invalid_format":        "invalid {expected} format",
		"invalid_enum":          "value is not one of the allowed values",
		"required":              "required property {key} missing",
		"unknown_key":           "unknown key {key}",
		"discriminator_missing": "discriminator {key} missing",
		"discriminator_unknown": "unknown discriminator value {tag}",
		"duplicate_key":         "duplicate key {key}",
		"parse_error":           "parse error",
	},
	"ja": {
		"invalid_type":          "型が不正です（期待: {expected}）",
		"overflow":              "{expected} の範囲外の数値です",
		"invalid_format":        "{expected} の形式が不正です",
		"invalid_enum":          "許可された値ではありません",
		"required":              "必須プロパティ {key} が不足しています",
		"unknown_key":           "未知のキー {key} です",
		"discriminator_missing": "判別キー {key} がありません",
		"discriminator_unknown": "未知の判別値 {tag} です",
		"duplicate_key":         "キー {key} が重複しています",
		"parse_error":           "解析エラー",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return fill(tmpl, data)
}

// fill substitutes {name} placeholders. A placeholder without data is
// dropped together with one preceding space.
func fill(tmpl string, data map[string]string) string {
	b := &strings.Builder{}
	for {
		open := strings.IndexByte(tmpl, '{')
		if open < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end := strings.IndexByte(tmpl[open:], '}')
		if end < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		name := tmpl[open+1 : open+end]
		if v, ok := data[name]; ok {
			b.WriteString(tmpl[:open])
			b.WriteString(v)
		} else {
			b.WriteString(strings.TrimSuffix(tmpl[:open], " "))
		}
		tmpl = tmpl[open+end+1:]
	}
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation; nil restores the
// English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
