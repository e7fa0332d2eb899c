package agent

import (
	"fmt"
	"strings"
)

// Topic 问题分类标签（封闭枚举）
type Topic string

const (
	TopicTriage     Topic = "triage"
	TopicVisa       Topic = "visa"
	TopicHousing    Topic = "housing"
	TopicTax        Topic = "tax"
	TopicHealthcare Topic = "healthcare"
)

// Topics 全部分类，顺序即展示顺序
var Topics = []Topic{TopicTriage, TopicVisa, TopicHousing, TopicTax, TopicHealthcare}

// Valid 是否为已定义的分类
func (t Topic) Valid() bool {
	switch t {
	case TopicTriage, TopicVisa, TopicHousing, TopicTax, TopicHealthcare:
		return true
	}
	return false
}

func (t Topic) String() string { return string(t) }

// ParseTopic 解析分类名称（大小写不敏感）
func ParseTopic(s string) (Topic, bool) {
	t := Topic(strings.ToLower(strings.TrimSpace(s)))
	return t, t.Valid()
}

// Language 回答语言
type Language string

const (
	LanguageKorean  Language = "ko"
	LanguageEnglish Language = "en"
)

// DefaultLanguage 未指定语言时使用韩语
const DefaultLanguage = LanguageKorean

// ParseLanguage 解析语言提示，空值返回默认语言
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultLanguage, nil
	case LanguageKorean:
		return LanguageKorean, nil
	case LanguageEnglish:
		return LanguageEnglish, nil
	}
	return "", fmt.Errorf("unsupported language %q", s)
}
