package test

import (
	"encoding/json"
	"strings"
	"testing"

	"project-portal/internal/global/response"

	"github.com/stretchr/testify/require"
)

// ErrorEqual 比较错误码，消息可以带 WithTips 附加的提示
func ErrorEqual(t *testing.T, expected *response.Error, resp response.ResponseBody) {
	t.Helper()
	require.Equal(t, expected.Code, resp.Code, resp.Msg)
	require.True(t, strings.HasPrefix(resp.Msg, expected.Message), resp.Msg)
}

func NoError(t *testing.T, resp response.ResponseBody) {
	t.Helper()
	require.Equal(t, int32(200), resp.Code, resp.Msg+" "+resp.Origin)
}

// Data 把响应中的 data 解析为 T
func Data[T any](t *testing.T, resp response.ResponseBody) T {
	t.Helper()
	NoError(t, resp)
	raw, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}
