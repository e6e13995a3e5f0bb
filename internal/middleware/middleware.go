package middleware

import (
	// Стандартные библиотеки
	"log"      // Для логирования
	"net/http" // Для кодов статуса HTTP (StatusFound)

	// Сторонние библиотеки
	"github.com/gin-contrib/sessions" // Для работы с cookie сессий
	"github.com/gin-gonic/gin"        // Основной фреймворк

	// Внутренние пакеты
	"photoweb/internal/state"
)

// SessionKey - ключ, под которым *state.Session кладётся в контекст Gin.
const SessionKey = "session"

// AuthRequired - это Gin middleware, которое проверяет аутентификацию
// пользователя. Оно навешивается один раз на всю защищённую группу
// маршрутов, а не на каждый маршрут по отдельности.
//
// Cookie браузера содержит только идентификатор сессии; сами данные
// (пользователь, cookie бэкенда) живут в реестре sessions в памяти.
// Нет записи в реестре - нет сессии, и пользователь уходит на /login.
func AuthRequired(store *state.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Получаем текущую cookie-сессию для данного запроса.
		session := sessions.Default(c)

		sidRaw := session.Get("sid")
		if sidRaw == nil {
			// Идентификатора нет - пользователь не аутентифицирован.
			log.Printf("Доступ запрещен (не аутентифицирован) к %s с IP %s", c.Request.URL.Path, c.ClientIP())
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		sid, ok := sidRaw.(string)
		if !ok {
			// Некорректный тип в cookie - данные повреждены, чистим и на логин.
			log.Printf("ОШИБКА ТИПА ДАННЫХ СЕССИИ: некорректный тип sid (%T) для IP %s. Cookie будет очищена.", sidRaw, c.ClientIP())
			clearCookie(session)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		sess, found := store.Get(sid)
		if !found {
			// Идентификатор есть, но в реестре записи нет: процесс перезапускался
			// или пользователь вышел в другой вкладке. Чистим устаревшую cookie.
			log.Printf("Сессия %s не найдена в реестре (IP %s), требуется повторный вход.", sid, c.ClientIP())
			clearCookie(session)
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		// Пользователь аутентифицирован. Кладём сессию в контекст Gin,
		// чтобы обработчики получали её через c.Get(SessionKey).
		c.Set(SessionKey, sess)

		c.Next()
	}
}

// CurrentSession достаёт *state.Session из контекста Gin.
// Возвращает nil вне защищённой группы или до AuthRequired.
func CurrentSession(c *gin.Context) *state.Session {
	v, exists := c.Get(SessionKey)
	if !exists {
		return nil
	}
	sess, ok := v.(*state.Session)
	if !ok {
		return nil
	}
	return sess
}

// clearCookie удаляет данные сессии из cookie и помечает её истёкшей.
func clearCookie(session sessions.Session) {
	session.Delete("sid")
	session.Options(sessions.Options{MaxAge: -1})
	if err := session.Save(); err != nil {
		log.Printf("Ошибка сохранения cookie при очистке сессии: %v", err)
	}
}
