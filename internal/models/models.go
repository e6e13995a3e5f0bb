package models

import (
	// Стандартные библиотеки
	"encoding/json" // Для ручной нормализации "уткотипных" полей ответа бэкенда
	"time"
)

// Все сущности этого пакета - временные копии данных бэкенда.
// Источник истины всегда на сервере: после любой мутации представление
// перезапрашивает данные, а не правит локальную копию.
// Бэкенд отдаёт идентификаторы в стиле MongoDB ("_id", строка).

// User представляет пользователя системы.
// Пароль никогда не приходит в ответах бэкенда и нигде локально не хранится.
type User struct {
	ID          string `json:"_id"`        // Уникальный идентификатор пользователя
	LoginName   string `json:"login_name"` // Логин (уникален среди пользователей)
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Occupation  string `json:"occupation"`
}

// DisplayName возвращает отображаемое имя пользователя ("Имя Фамилия").
// Получатель-значение: шаблоны вызывают метод и на элементах срезов.
func (u User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}

// Initials возвращает инициалы для аватара в списке пользователей.
func (u User) Initials() string {
	var s string
	if u.FirstName != "" {
		s += string([]rune(u.FirstName)[0:1])
	}
	if u.LastName != "" {
		s += string([]rune(u.LastName)[0:1])
	}
	return s
}

// UserListEntry - элемент справочника пользователей.
// Счётчики фотографий и комментариев считает бэкенд (/user/list),
// локально они никогда не пересчитываются.
type UserListEntry struct {
	User
	PhotoCount   int `json:"photo_count"`
	CommentCount int `json:"comment_count"`
}

// UserRef - нормализованная ссылка на пользователя (автор комментария,
// поставивший лайк). Бэкенд в разных местах отдаёт либо вложенный объект,
// либо голый id; сюда всё приводится к одной форме.
type UserRef struct {
	ID        string `json:"_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// DisplayName возвращает имя автора или заглушку, если бэкенд
// прислал только id без вложенного пользователя.
func (r UserRef) DisplayName() string {
	if r.FirstName == "" && r.LastName == "" {
		return "Неизвестный пользователь"
	}
	return r.FirstName + " " + r.LastName
}

// LikeRef - один элемент множества лайков фотографии.
// Бэкенд присылает либо строку-id, либо объект пользователя,
// поэтому форма нормализуется прямо при декодировании JSON.
type LikeRef struct {
	UserRef
}

// UnmarshalJSON принимает обе формы элемента лайка: "abc123" или
// {"_id": "abc123", ...}. Ветвление по форме живёт только здесь,
// представления всегда видят готовый UserRef.
func (l *LikeRef) UnmarshalJSON(data []byte) error {
	// Сначала пробуем голую строку-id.
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		l.UserRef = UserRef{ID: id}
		return nil
	}
	// Иначе это вложенный объект пользователя.
	var ref UserRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return err
	}
	l.UserRef = ref
	return nil
}

// Comment представляет комментарий к фотографии.
// Комментарий принадлежит ровно одной фотографии; авторство неизменяемо
// (редактирование меняет только текст).
type Comment struct {
	ID       string    `json:"_id"`
	Comment  string    `json:"comment"`
	DateTime time.Time `json:"date_time"`
	// Бэкенд отдаёт автора либо вложенным объектом (user),
	// либо голым id (user_id). Наружу выдаётся только Author().
	User   *UserRef `json:"user"`
	UserID string   `json:"user_id"`
}

// Author возвращает единую нормализованную ссылку на автора комментария.
func (c *Comment) Author() UserRef {
	if c.User != nil {
		return *c.User
	}
	return UserRef{ID: c.UserID}
}

// Photo представляет фотографию с вложенными комментариями и лайками.
// Фотография принадлежит ровно одному пользователю (UserID).
type Photo struct {
	ID       string    `json:"_id"`
	UserID   string    `json:"user_id"` // Владелец фотографии
	FileName string    `json:"file_name"`
	DateTime time.Time `json:"date_time"`
	Comments []Comment `json:"comments"`
	Likes    []LikeRef `json:"likes"`
}

// IsLikedBy проверяет, есть ли пользователь во множестве лайков фотографии.
func (p *Photo) IsLikedBy(userID string) bool {
	if userID == "" {
		return false
	}
	for _, l := range p.Likes {
		if l.ID == userID {
			return true
		}
	}
	return false
}

// LikeCount возвращает число лайков фотографии.
func (p *Photo) LikeCount() int {
	return len(p.Likes)
}

// CommentCount возвращает число комментариев фотографии.
func (p *Photo) CommentCount() int {
	return len(p.Comments)
}
