package agent

// Persona 分类对应的专家角色
type Persona struct {
	Topic       Topic
	Name        string
	Emoji       string
	Description string

	instructions map[Language]string
}

// Instructions 返回指定语言的系统提示词，未知语言回退到默认语言
func (p Persona) Instructions(lang Language) string {
	if text, ok := p.instructions[lang]; ok {
		return text
	}
	return p.instructions[DefaultLanguage]
}

// personas 启动时构建，之后只读
var personas = map[Topic]Persona{
	TopicTriage: {
		Topic:       TopicTriage,
		Name:        "Admin Guide",
		Emoji:       "🎯",
		Description: "질문을 분류하고 적절한 전문가에게 연결합니다",
		instructions: map[Language]string{
			LanguageKorean:  triageKo,
			LanguageEnglish: triageEn,
		},
	},
	TopicVisa: {
		Topic:       TopicVisa,
		Name:        "Visa Expert",
		Emoji:       "🛂",
		Description: "비자, 체류자격, 출입국 관련 전문",
		instructions: map[Language]string{
			LanguageKorean:  visaKo,
			LanguageEnglish: visaEn,
		},
	},
	TopicHousing: {
		Topic:       TopicHousing,
		Name:        "Housing Expert",
		Emoji:       "🏠",
		Description: "전입신고, 임대차, 주민등록 전문",
		instructions: map[Language]string{
			LanguageKorean:  housingKo,
			LanguageEnglish: housingEn,
		},
	},
	TopicTax: {
		Topic:       TopicTax,
		Name:        "Tax Expert",
		Emoji:       "💰",
		Description: "세금, 연말정산, 홈택스 전문",
		instructions: map[Language]string{
			LanguageKorean:  taxKo,
			LanguageEnglish: taxEn,
		},
	},
	TopicHealthcare: {
		Topic:       TopicHealthcare,
		Name:        "Healthcare Expert",
		Emoji:       "🏥",
		Description: "건강보험, 의료 서비스 전문",
		instructions: map[Language]string{
			LanguageKorean:  healthcareKo,
			LanguageEnglish: healthcareEn,
		},
	},
}

// Lookup 按分类查找角色，未知分类返回 triage
func Lookup(t Topic) Persona {
	if p, ok := personas[t]; ok {
		return p
	}
	return personas[TopicTriage]
}

// All 按 Topics 顺序返回全部角色
func All() []Persona {
	list := make([]Persona, 0, len(Topics))
	for _, t := range Topics {
		list = append(list, personas[t])
	}
	return list
}
