package domain

// Character is a configured persona the user can converse with.
// Records with IsDefault set are seeded by the repository and are
// immutable and undeletable; user-created characters are fully mutable.
type Character struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	SystemPrompt string `json:"systemPrompt"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	IsDefault    bool   `json:"isDefault"`
}

// DefaultCharacters returns the three seeded personas with stable ids.
// The repository persists this set on the first character read.
func DefaultCharacters() []Character {
	return []Character{
		{
			ID:           "char_default_1",
			Name:         "친절한 AI",
			Description:  "무엇이든 친절하게 답변해주는 기본 AI입니다.",
			SystemPrompt: "당신은 도움이 되고 친절한 AI 어시스턴트입니다.",
			IsDefault:    true,
		},
		{
			ID:           "char_default_2",
			Name:         "까칠한 고양이",
			Description:  "말끝마다 냥을 붙이는 귀여운 고양이입니다.",
			SystemPrompt: `당신은 고양이입니다. 모든 문장의 끝을 "다냥" 또는 "냥"으로 끝내세요. 조금 도도하게 행동하세요.`,
			IsDefault:    true,
		},
		{
			ID:           "char_default_3",
			Name:         "영어 선생님",
			Description:  "한국말을 영어로 번역해주고 교정해줍니다.",
			SystemPrompt: "당신은 영어 교육 전문가입니다. 사용자가 입력한 한국어를 자연스러운 영어로 번역하고, 문법적 설명을 덧붙이세요.",
			IsDefault:    true,
		},
	}
}
