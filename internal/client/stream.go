package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"sync"

	"github.com/openai/openai-go/packages/ssestream"
)

var sseDone = []byte("[DONE]")

type streamChunk struct {
	Model   string `json:"model"`
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Stream 上游流式响应
// 片段序列只能消费一次；Close 会释放底层连接
type Stream struct {
	decoder ssestream.Decoder
	model   string
	usage   *Usage

	mu        sync.Mutex
	consumed  bool
	closeOnce sync.Once
	closeErr  error
}

// NewStream 包装上游 SSE 响应体
func NewStream(body io.ReadCloser, model string) *Stream {
	decoder := ssestream.NewDecoder(&http.Response{
		Header: http.Header{"Content-Type": []string{"text/event-stream"}},
		Body:   body,
	})
	return &Stream{decoder: decoder, model: model}
}

// Model 上游报告的模型名称（首个数据块之前为请求的模型）
func (s *Stream) Model() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Usage 上游在最后一个数据块中报告的用量，可能为 nil
func (s *Stream) Usage() *Usage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usage
}

// Close 关闭上游响应体，可重复调用
func (s *Stream) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.decoder.Close()
	})
	return s.closeErr
}

// Fragments 按上游顺序产出文本片段
// 读到 [DONE] 正常结束；出错时产出一次非 nil error 后结束
func (s *Stream) Fragments() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		s.mu.Lock()
		if s.consumed {
			s.mu.Unlock()
			return
		}
		s.consumed = true
		s.mu.Unlock()

		for s.decoder.Next() {
			data := bytes.TrimSpace(s.decoder.Event().Data)
			if len(data) == 0 {
				continue
			}
			if bytes.Equal(data, sseDone) {
				return
			}

			var chunk streamChunk
			if err := json.Unmarshal(data, &chunk); err != nil {
				yield("", &ProviderError{Status: http.StatusOK, Message: "解析流式数据失败", Err: fmt.Errorf("%w: %w", ErrMalformedResponse, err)})
				return
			}
			if chunk.Error != nil {
				yield("", &ProviderError{Status: http.StatusOK, Message: chunk.Error.Message, Err: ErrStreamAborted})
				return
			}

			s.mu.Lock()
			if chunk.Model != "" {
				s.model = chunk.Model
			}
			if chunk.Usage != nil {
				s.usage = chunk.Usage
			}
			s.mu.Unlock()

			for _, choice := range chunk.Choices {
				if choice.Delta.Content == "" {
					continue
				}
				if !yield(choice.Delta.Content, nil) {
					return
				}
			}
		}

		if err := s.decoder.Err(); err != nil {
			yield("", transportError("读取流式响应失败", err))
			return
		}
		yield("", &ProviderError{Status: http.StatusOK, Message: "流在 [DONE] 之前结束", Err: fmt.Errorf("%w: %w", ErrMalformedResponse, io.ErrUnexpectedEOF)})
	}
}
