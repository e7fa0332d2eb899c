package handler

import (
	"errors"
	"net/http"

	"github.com/adminguide/adminguide-go/internal/agent"
	"github.com/adminguide/adminguide-go/internal/client"
	"github.com/adminguide/adminguide-go/internal/service"
)

// localizedMessages 返回给调用方的错误文案，内部细节只写日志
type localizedMessages struct {
	messageRequired  string
	messagesRequired string
	badRequest       string
	apiKeyRequired   string
	tooManyRequests  string
	serverError      string
	emptyReply       string
}

var messages = map[agent.Language]localizedMessages{
	agent.LanguageKorean: {
		messageRequired:  "메시지가 필요합니다",
		messagesRequired: "메시지가 필요합니다",
		badRequest:       "잘못된 요청입니다",
		apiKeyRequired:   "API 키가 필요합니다",
		tooManyRequests:  "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
		serverError:      "서버 오류가 발생했습니다",
		emptyReply:       "응답을 생성할 수 없습니다.",
	},
	agent.LanguageEnglish: {
		messageRequired:  "Message is required",
		messagesRequired: "Messages are required",
		badRequest:       "Invalid request",
		apiKeyRequired:   "API key is required",
		tooManyRequests:  "Too many requests. Please try again later.",
		serverError:      "An error occurred on the server",
		emptyReply:       "Unable to generate a response.",
	},
}

func localized(lang agent.Language) localizedMessages {
	if m, ok := messages[lang]; ok {
		return m
	}
	return messages[agent.DefaultLanguage]
}

// ErrorStatus 将中转错误映射为 HTTP 状态码和本地化文案
func ErrorStatus(err error, lang agent.Language) (int, string) {
	msg := localized(lang)
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, msg.messagesRequired
	case errors.Is(err, service.ErrMissingCredential):
		return http.StatusUnauthorized, msg.apiKeyRequired
	case client.IsRateLimited(err):
		return http.StatusTooManyRequests, msg.tooManyRequests
	}
	return http.StatusInternalServerError, msg.serverError
}
