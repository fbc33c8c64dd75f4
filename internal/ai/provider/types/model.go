package types

import (
	"encoding/json"
	"strings"
)

var (
	// DefaultAllowPrefixes 可供助手使用的模型前缀
	DefaultAllowPrefixes = []string{"gpt-4", "gpt-3.5", "o1", "o3-mini"}
	// DefaultDenySubstrings 模型 ID 中不允许出现的关键字
	DefaultDenySubstrings = []string{"realtime", "transcribe", "search", "audio"}
)

// ModelRef 连通性检查返回的模型摘要
type ModelRef struct {
	ID      string `json:"id"`
	Object  string `json:"object,omitempty"`
	OwnedBy string `json:"owned_by,omitempty"`

	// Raw 服务端返回的原始条目，非空时按原样输出
	Raw json.RawMessage `json:"-"`
}

// MarshalJSON Raw 非空时输出原始条目
func (m ModelRef) MarshalJSON() ([]byte, error) {
	if len(m.Raw) > 0 {
		return m.Raw, nil
	}
	type plain ModelRef
	return json.Marshal(plain(m))
}

// FilterCompatibleModels 保留以任一 allow 前缀开头且不含任何 deny 子串的模型，保持输入顺序
func FilterCompatibleModels(models, allowPrefixes, denySubstrings []string) []string {
	compatible := make([]string, 0, len(models))
	for _, id := range models {
		if !hasAnyPrefix(id, allowPrefixes) {
			continue
		}
		if containsAny(id, denySubstrings) {
			continue
		}
		compatible = append(compatible, id)
	}
	return compatible
}

// ModelRefs 将模型 ID 转为摘要列表，limit <= 0 表示不限制
func ModelRefs(ids []string, limit int) []ModelRef {
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	refs := make([]ModelRef, len(ids))
	for i, id := range ids {
		refs[i] = ModelRef{ID: id}
	}
	return refs
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
