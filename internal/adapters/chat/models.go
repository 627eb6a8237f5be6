package chat

import (
	json "encoding/json/v2"
	"io"
	"net/http"
	"strconv"
	"time"
)

// sendMessageReq is the sendMessage call payload
type sendMessageReq struct {
	ChatID int64  `json:"chat_id"`
	Text   string `json:"text"`
}

// apiResponse is the envelope every Bot API call returns
type apiResponse struct {
	OK          bool                `json:"ok"`
	Description string              `json:"description"`
	ErrorCode   int                 `json:"error_code"`
	Parameters  *responseParameters `json:"parameters"`
}

// responseParameters carries rate limit hints on 429s
type responseParameters struct {
	RetryAfter int `json:"retry_after"`
}

func decodeResponse(r io.Reader) (apiResponse, error) {
	var out apiResponse
	b, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, err
	}
	return out, nil
}

// retryAfter prefers the API's retry_after parameter over the Retry-After header
func retryAfter(h http.Header, api apiResponse) time.Duration {
	if api.Parameters != nil && api.Parameters.RetryAfter > 0 {
		return time.Duration(api.Parameters.RetryAfter) * time.Second
	}
	if s := h.Get("Retry-After"); s != "" {
		if sec, err := strconv.Atoi(s); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
	}
	return 0
}
