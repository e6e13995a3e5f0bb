package state

import (
	"net/http"
	"sync"

	"github.com/google/uuid"

	"photoweb/internal/models"
)

// DefaultHeading - начальное значение строки контекста в шапке.
const DefaultHeading = "Home"

// Session - локальное состояние одного вошедшего браузера: текущий
// пользователь, cookie сессии бэкенда и строка контекста для шапки.
// Создаётся при успешном входе, уничтожается при выходе. Никуда не
// сохраняется: перезапуск процесса требует повторного входа - это
// осознанное решение, а не недоработка.
type Session struct {
	ID      string
	Cookies []*http.Cookie // Учётные данные сессии на стороне бэкенда

	mu      sync.RWMutex
	user    *models.User
	heading string
}

// SetHeading устанавливает строку контекста в шапке.
// Побеждает последняя запись; уход со страницы значение не сбрасывает.
func (s *Session) SetHeading(h string) {
	s.mu.Lock()
	s.heading = h
	s.mu.Unlock()
}

// Heading возвращает текущую строку контекста.
func (s *Session) Heading() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.heading
}

// User возвращает локальную копию текущего пользователя.
// Запись заменяется целиком (SetUser), поэтому полученный указатель
// можно читать без дальнейшей синхронизации.
func (s *Session) User() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// SetUser заменяет локальную копию пользователя (например, обновлённой
// записью, которую вернул бэкенд после редактирования профиля).
func (s *Session) SetUser(u *models.User) {
	s.mu.Lock()
	s.user = u
	s.mu.Unlock()
}

// Store - реестр активных сессий в памяти процесса.
// Cookie браузера несёт только идентификатор; сами данные живут здесь.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore создает пустой реестр сессий.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// New регистрирует сессию для только что вошедшего пользователя.
func (st *Store) New(user *models.User, cookies []*http.Cookie) *Session {
	s := &Session{
		ID:      uuid.NewString(),
		Cookies: cookies,
		user:    user,
		heading: DefaultHeading,
	}
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get возвращает сессию по идентификатору из cookie.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete удаляет сессию. Вызывается при любом намерении выйти,
// даже если запрос выхода к бэкенду не удался: лучше потерять сессию,
// чем застрять в наполовину аутентифицированном состоянии.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len возвращает число активных сессий.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
