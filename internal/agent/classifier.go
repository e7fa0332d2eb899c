package agent

import "regexp"

// rule 单个分类的关键词匹配规则
type rule struct {
	topic   Topic
	pattern *regexp.Regexp
}

// rules 按优先级排列：visa > housing > tax > healthcare
// 同时命中多个分类时取第一个匹配项
var rules = []rule{
	{
		topic:   TopicVisa,
		pattern: regexp.MustCompile(`(?i)비자|visa|체류|외국인등록|입국|출국|귀화|여권|passport|f-4|f-6|e-7|d-2|immigration`),
	},
	{
		topic:   TopicHousing,
		pattern: regexp.MustCompile(`(?i)이사|전입|등본|초본|주민등록|전세|월세|계약|부동산|housing|move|rent|lease`),
	},
	{
		topic:   TopicTax,
		pattern: regexp.MustCompile(`(?i)세금|tax|연말정산|소득세|홈택스|납세|부가세|재산세|위택스`),
	},
	{
		topic:   TopicHealthcare,
		pattern: regexp.MustCompile(`(?i)건강보험|병원|의료|보험료|건강검진|국민건강|healthcare|hospital|insurance`),
	},
}

// Classify 根据关键词将问题归类，未命中时返回 triage
func Classify(text string) Topic {
	for _, r := range rules {
		if r.pattern.MatchString(text) {
			return r.topic
		}
	}
	return TopicTriage
}
