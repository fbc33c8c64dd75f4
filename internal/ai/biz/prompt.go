package biz

import (
	"context"
	"time"
)

// SavedPrompt 用户保存的提示词
type SavedPrompt struct {
	Name      string    `json:"name"`
	Prompt    string    `json:"prompt"`
	IsGlobal  bool      `json:"is_global"`
	RavenBot  string    `json:"raven_bot"`
	Owner     string    `json:"owner"`
	CreatedAt time.Time `json:"creation"`
}

// PromptRepo 提示词存储
type PromptRepo interface {
	// ListVisible 返回全局提示词和 owner 自己的提示词
	ListVisible(ctx context.Context, owner string) ([]*SavedPrompt, error)
	Create(ctx context.Context, prompt *SavedPrompt) error
}

// OrderPromptsForBot 稳定排序：属于 bot 的提示词在前，其余保持原有顺序
func OrderPromptsForBot(prompts []*SavedPrompt, bot string) []*SavedPrompt {
	ordered := make([]*SavedPrompt, 0, len(prompts))
	for _, p := range prompts {
		if p.RavenBot == bot {
			ordered = append(ordered, p)
		}
	}
	for _, p := range prompts {
		if p.RavenBot != bot {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
