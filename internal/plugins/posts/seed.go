package posts

import (
	"time"

	"github.com/google/uuid"
)

// demoPosts is the feed a fresh install starts with.
func demoPosts() []Post {
	msk := time.FixedZone("MSK", 3*60*60)
	at := func(day, hour, minute int) time.Time {
		return time.Date(2026, time.February, day, hour, minute, 0, 0, msk).UTC()
	}
	avatar := func(user string) string {
		return "https://i.pravatar.cc/150?u=" + user
	}
	counts := func(like, heart, fire, laugh, wow int) []Reaction {
		r := DefaultReactions()
		for i, n := range []int{like, heart, fire, laugh, wow} {
			r[i].Count = n
		}
		return r
	}

	return []Post{
		{
			ID:     uuid.NewString(),
			Author: Author{Name: "Анна Иванова", Avatar: avatar("anna")},
			Date:   at(25, 10, 30),
			Text:   "Запускаем **весеннюю распродажу**! Скидки до 50% на все категории. Подробности: https://example.com/sale",
			Images: []string{
				"https://images.unsplash.com/photo-1607082349566-187342175e2f?w=400&h=300&fit=crop",
				"https://images.unsplash.com/photo-1556742049-0cfed4f6a45d?w=400&h=300&fit=crop",
			},
			Reactions: counts(24, 12, 8, 0, 3),
			Comments: []Comment{
				{ID: uuid.NewString(), Author: Author{Name: "Пётр Сидоров", Avatar: avatar("petr")}, Date: at(25, 11, 0), Text: "Отличная новость! Давно ждали!"},
				{ID: uuid.NewString(), Author: Author{Name: "Мария Козлова", Avatar: avatar("maria")}, Date: at(25, 12, 15), Text: "А на электронику тоже скидки?"},
			},
			Status: StatusPublished,
		},
		{
			ID:        uuid.NewString(),
			Author:    Author{Name: "Дмитрий Петров", Avatar: avatar("dmitry")},
			Date:      at(24, 15, 0),
			Text:      "Новая коллекция **летней обуви** уже доступна. Более 200 моделей от лучших брендов.",
			Images:    []string{"https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=400&h=300&fit=crop"},
			Reactions: counts(15, 7, 2, 0, 0)[:3],
			Comments:  []Comment{},
			Status:    StatusPublished,
		},
		{
			ID:        uuid.NewString(),
			Author:    Author{Name: "Анна Иванова", Avatar: avatar("anna")},
			Date:      at(23, 9, 0),
			Text:      "Планируем обновление системы лояльности. Черновик, пока не публикуем.",
			Images:    []string{},
			Reactions: DefaultReactions(),
			Comments:  []Comment{},
			Status:    StatusDraft,
		},
	}
}
