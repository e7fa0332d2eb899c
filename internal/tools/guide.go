package tools

import (
	"context"
	"fmt"
	"strings"
)

// 工具名称
const (
	SearchGovernmentInfo      = "search_government_info"
	GetTerminologyExplanation = "get_terminology_explanation"
)

const generalCategory = "general"

// officialSites 分类对应的官方网站
var officialSites = map[string][]string{
	"visa": {
		"https://www.hikorea.go.kr - 하이코리아 (출입국외국인정책본부)",
		"https://www.immigration.go.kr - 출입국관리사무소",
	},
	"housing": {
		"https://www.gov.kr - 정부24",
		"https://www.easylaw.go.kr - 찾기쉬운생활법령정보",
	},
	"tax": {
		"https://www.nts.go.kr - 국세청",
		"https://www.hometax.go.kr - 홈택스",
		"https://www.wetax.go.kr - 위택스 (지방세)",
	},
	"healthcare": {
		"https://www.nhis.or.kr - 국민건강보험공단",
		"https://www.mohw.go.kr - 보건복지부",
	},
	generalCategory: {
		"https://www.gov.kr - 정부24",
		"https://www.korean.go.kr - 국립국어원 (행정용어 순화)",
		"https://www.minwon.go.kr - 민원24",
	},
}

// Term 行政用语解释
type Term struct {
	Plain       string
	Explanation string
	English     string
}

// terminology 常见行政用语（国立国语院简化用语）
var terminology = map[string]Term{
	"전입신고": {"이사 신고", "새로운 주소지로 이사했을 때 동주민센터에 알리는 것", "Moving-in report / Address change notification"},
	"등본":   {"증명서 사본", "공식 문서의 내용을 그대로 옮겨 적은 증명서", "Certified copy"},
	"초본":   {"요약 증명서", "공식 문서에서 필요한 부분만 뽑아 적은 증명서", "Abstract / Extract"},
	"인감증명": {"도장 확인서", "관공서에 미리 등록한 도장이 본인 것임을 증명하는 서류", "Seal certificate"},
	"주민등록": {"주민 신고", "대한민국 국민이 어디에 사는지 나라에 알리고 등록하는 제도", "Resident registration"},
	"체류자격": {"비자 종류", "외국인이 한국에 머물 수 있는 자격/이유 (예: 취업, 유학, 결혼 등)", "Status of stay / Visa type"},
	"재외동포": {"해외 거주 한국인", "외국 국적을 가졌지만 한국계인 사람, 또는 외국에 오래 사는 한국인", "Overseas Korean"},
	"귀화":   {"국적 바꾸기", "외국인이 한국 국적을 취득하는 것", "Naturalization"},
}

// LookupTerm 查询行政用语
func LookupTerm(term string) (Term, bool) {
	t, ok := terminology[strings.TrimSpace(term)]
	return t, ok
}

// OfficialSites 返回分类对应的网站，未知分类使用 general
func OfficialSites(category string) []string {
	if sites, ok := officialSites[category]; ok {
		return sites
	}
	return officialSites[generalCategory]
}

// RegisterGuideTools 注册行政指南工具
func RegisterGuideTools(registry *Registry) error {
	guideTools := []*Tool{
		{
			Name:        SearchGovernmentInfo,
			Description: "한국 정부 공식 정보를 검색합니다.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]Property{
					"query": {
						Type:        "string",
						Description: "검색할 내용 (예: \"외국인등록증 갱신\", \"전입신고 방법\")",
					},
					"category": {
						Type:        "string",
						Description: "검색 카테고리 (visa, housing, tax, healthcare, general)",
						Default:     generalCategory,
					},
				},
				Required: []string{"query"},
			},
			Handler: searchGovernmentInfo,
		},
		{
			Name:        GetTerminologyExplanation,
			Description: "어려운 행정 용어를 쉬운 말로 설명합니다.",
			Parameters: ParameterSchema{
				Type: "object",
				Properties: map[string]Property{
					"term": {
						Type:        "string",
						Description: "설명이 필요한 행정 용어 (예: \"전입신고\", \"등본\", \"인감증명\")",
					},
				},
				Required: []string{"term"},
			},
			Handler: getTerminologyExplanation,
		},
	}

	for _, tool := range guideTools {
		if err := registry.Register(tool); err != nil {
			return err
		}
	}
	return nil
}

func searchGovernmentInfo(_ context.Context, params map[string]string) (string, error) {
	query := params["query"]
	category := params["category"]

	var b strings.Builder
	fmt.Fprintf(&b, "[검색 쿼리]: %s\n", query)
	fmt.Fprintf(&b, "[카테고리]: %s\n\n", category)
	b.WriteString("[추천 공식 사이트]:\n")
	for _, site := range OfficialSites(category) {
		fmt.Fprintf(&b, "- %s\n", site)
	}
	b.WriteString("\n[안내]\n")
	fmt.Fprintf(&b, "위 공식 사이트에서 \"%s\"를 검색하시면 정확한 정보를 확인할 수 있습니다.\n", query)
	return b.String(), nil
}

func getTerminologyExplanation(_ context.Context, params map[string]string) (string, error) {
	term := params["term"]
	info, ok := LookupTerm(term)
	if !ok {
		return fmt.Sprintf("[용어]: %s\n[안내]: 이 용어에 대한 정보가 사전에 없습니다.\n"+
			"더 정확한 정보는 국립국어원(korean.go.kr)의 '알기 쉬운 행정용어'를 참고해주세요.\n", term), nil
	}
	return fmt.Sprintf("[용어]: %s\n[쉬운 말]: %s\n[설명]: %s\n[영어]: %s\n",
		term, info.Plain, info.Explanation, info.English), nil
}
