package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// register はtagとその基底言語の両方に文言を登録する。
func register(tag language.Tag, messages map[string]string) {
	tags := []language.Tag{tag}
	if base, _ := tag.Base(); base.String() != tag.String() {
		tags = append(tags, language.Make(base.String()))
	}
	for key, msg := range messages {
		for _, t := range tags {
			if err := message.SetString(t, key, msg); err != nil {
				panic(err)
			}
		}
	}
}

func init() {
	register(language.AmericanEnglish, messagesEN)
	register(language.EuropeanSpanish, messagesES)
}
