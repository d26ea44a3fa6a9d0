// 聊天机器人 - 外部 NLP 协作方调用
package upstream

import "context"

// Ask 把用户问题转发给 NLP 后端，返回纯文本回答
func (c *Client) Ask(ctx context.Context, question string) (string, error) {
	body := map[string]string{"question": question}
	var env struct {
		Answer string `json:"answer"`
	}
	if err := c.post(ctx, "/chatbot", body, &env); err != nil {
		return "", err
	}
	return env.Answer, nil
}
